package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// ErrEncryptionKeyNotSet is returned by Load when the stored token was written
// encrypted but the repo was constructed without a key.
var ErrEncryptionKeyNotSet = errors.New("stored token is encrypted but no secret key is configured")

// tokenService is the credentials row holding the single-slot access token.
const tokenService = "pike13"

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the TokenStore port interface.
// With a key, values are encrypted with AES-256-GCM before write and decrypted
// after read; without one they are stored as-is.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores plaintext.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for AES-256-GCM, or nil.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Save replaces the stored access token.
func (r *CredentialRepo) Save(ctx context.Context, token string) error {
	value := token
	encrypted := false
	if r.key != nil {
		var err error
		value, err = r.encrypt(token)
		if err != nil {
			return err
		}
		encrypted = true
	}

	const query = `INSERT OR REPLACE INTO credentials (service, value, encrypted, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, tokenService, value, encrypted); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load returns the stored access token, or ("", nil) if none has been saved.
func (r *CredentialRepo) Load(ctx context.Context) (string, error) {
	const query = `SELECT value, encrypted FROM credentials WHERE service = ?`

	var value string
	var encrypted bool
	err := r.db.Reader.QueryRowContext(ctx, query, tokenService).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	if !encrypted {
		return value, nil
	}
	if r.key == nil {
		return "", ErrEncryptionKeyNotSet
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return plaintext, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
