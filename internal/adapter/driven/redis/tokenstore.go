// Package redis implements the TokenStore port on Redis, for deployments where
// the bridge runs without a writable local disk.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the single-slot access token under one Redis key.
type TokenStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

type tokenRecord struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewClient parses a redis:// URL and returns a connected client. The
// connection is verified with PING so a bad URL fails at startup.
func NewClient(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewTokenStore creates a TokenStore writing to "<prefix>:token".
func NewTokenStore(client *goredis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix, now: time.Now}
}

func (s *TokenStore) key() string {
	return s.prefix + ":token"
}

// Save replaces the stored token. The key has no TTL since expiry is not tracked.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	data, err := json.Marshal(tokenRecord{AccessToken: token, SavedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load returns the stored token, or ("", nil) when the key does not exist.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	var rec tokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("unmarshal token: %w", err)
	}
	return rec.AccessToken, nil
}
