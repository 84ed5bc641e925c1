// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
)

// ErrMissingSubdomain is returned by Load when PIKE13BRIDGE_SUBDOMAIN is unset.
// Every remote host is derived from it, so the server refuses to start without it.
var ErrMissingSubdomain = errors.New("PIKE13BRIDGE_SUBDOMAIN is required")

// Token backends accepted by PIKE13BRIDGE_TOKEN_BACKEND.
const (
	TokenBackendSQLite = "sqlite"
	TokenBackendRedis  = "redis"
)

// Config holds the application configuration loaded from environment variables.
// It is built once at startup and shared by reference; nothing mutates it afterwards.
type Config struct {
	Subdomain    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	FieldName    string // Preferred exact display name of the membership field; empty means heuristic only.
	Port         int
	ListenAddr   string
	APIBaseURL   string
	OAuthBaseURL string
	DBPath       string
	SecretKey    []byte // 32 bytes, or nil when PIKE13BRIDGE_SECRET_KEY is unset.
	TokenBackend string
	RedisURL     string
	LogLevel     slog.Level
}

// HasSecretKey reports whether a persistent secret key was configured. Without one
// sessions do not survive restarts and the durable token is stored unencrypted.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// AuthorizeURL returns the provider's OAuth authorization endpoint.
func (c *Config) AuthorizeURL() string {
	return c.OAuthBaseURL + "/oauth/authorize"
}

// TokenURL returns the provider's OAuth token exchange endpoint.
func (c *Config) TokenURL() string {
	return c.OAuthBaseURL + "/oauth/token"
}

// Load reads configuration from environment variables and returns a validated Config.
// Required: PIKE13BRIDGE_SUBDOMAIN, PIKE13BRIDGE_CLIENT_ID, PIKE13BRIDGE_CLIENT_SECRET.
// Optional variables with defaults: PIKE13BRIDGE_PORT (3000),
// PIKE13BRIDGE_LISTEN_ADDR (127.0.0.1:<port>), PIKE13BRIDGE_REDIRECT_URI
// (http://localhost:<port>/auth/callback), PIKE13BRIDGE_DB_PATH (pike13bridge.db),
// PIKE13BRIDGE_TOKEN_BACKEND (sqlite), PIKE13BRIDGE_LOG_LEVEL (info).
func Load() (*Config, error) {
	subdomain := strings.TrimSpace(os.Getenv("PIKE13BRIDGE_SUBDOMAIN"))
	if subdomain == "" {
		return nil, ErrMissingSubdomain
	}

	clientID := os.Getenv("PIKE13BRIDGE_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("PIKE13BRIDGE_CLIENT_ID is required")
	}
	clientSecret := os.Getenv("PIKE13BRIDGE_CLIENT_SECRET")
	if clientSecret == "" {
		return nil, fmt.Errorf("PIKE13BRIDGE_CLIENT_SECRET is required")
	}

	port := 3000
	if v, ok := os.LookupEnv("PIKE13BRIDGE_PORT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return nil, fmt.Errorf("PIKE13BRIDGE_PORT has invalid value %q", v)
		}
		port = parsed
	}

	listenAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	if v, ok := os.LookupEnv("PIKE13BRIDGE_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	redirectURI := fmt.Sprintf("http://localhost:%d/auth/callback", port)
	if v, ok := os.LookupEnv("PIKE13BRIDGE_REDIRECT_URI"); ok && v != "" {
		redirectURI = v
	}

	apiBaseURL := fmt.Sprintf("https://%s.pike13.com", subdomain)
	if v, ok := os.LookupEnv("PIKE13BRIDGE_API_BASE_URL"); ok && v != "" {
		apiBaseURL = strings.TrimRight(v, "/")
	}

	oauthBaseURL := "https://pike13.com"
	if v, ok := os.LookupEnv("PIKE13BRIDGE_OAUTH_BASE_URL"); ok && v != "" {
		oauthBaseURL = strings.TrimRight(v, "/")
	}

	dbPath := "pike13bridge.db"
	if v, ok := os.LookupEnv("PIKE13BRIDGE_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	secretKey, err := parseSecretKey(os.Getenv("PIKE13BRIDGE_SECRET_KEY"))
	if err != nil {
		return nil, err
	}

	backend := TokenBackendSQLite
	if v, ok := os.LookupEnv("PIKE13BRIDGE_TOKEN_BACKEND"); ok && v != "" {
		backend = strings.ToLower(v)
	}
	if backend != TokenBackendSQLite && backend != TokenBackendRedis {
		return nil, fmt.Errorf("PIKE13BRIDGE_TOKEN_BACKEND must be %q or %q, got %q", TokenBackendSQLite, TokenBackendRedis, backend)
	}

	redisURL := "redis://localhost:6379/0"
	if v, ok := os.LookupEnv("PIKE13BRIDGE_REDIS_URL"); ok && v != "" {
		redisURL = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("PIKE13BRIDGE_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PIKE13BRIDGE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		Subdomain:    subdomain,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		FieldName:    os.Getenv("PIKE13BRIDGE_FIELD_NAME"),
		Port:         port,
		ListenAddr:   listenAddr,
		APIBaseURL:   apiBaseURL,
		OAuthBaseURL: oauthBaseURL,
		DBPath:       dbPath,
		SecretKey:    secretKey,
		TokenBackend: backend,
		RedisURL:     redisURL,
		LogLevel:     logLevel,
	}, nil
}

// parseSecretKey decodes a 64-character hex string into a 32-byte AES-256 key.
// An empty string yields a nil key.
func parseSecretKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("PIKE13BRIDGE_SECRET_KEY must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("PIKE13BRIDGE_SECRET_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
