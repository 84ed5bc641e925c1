package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func TestCredentialRepo_LoadEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)

	val, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_SaveAndLoad_Encrypted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "at-abc123"))

	val, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-abc123", val)

	var raw string
	var encrypted bool
	err = db.Reader.QueryRowContext(ctx, `SELECT value, encrypted FROM credentials WHERE service = ?`, tokenService).Scan(&raw, &encrypted)
	require.NoError(t, err)
	assert.True(t, encrypted)
	assert.NotContains(t, raw, "at-abc123", "token must not be stored in plaintext when a key is set")
}

func TestCredentialRepo_SaveAndLoad_Plaintext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "at-plain"))

	val, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-plain", val)
}

func TestCredentialRepo_SaveOverwritesSingleSlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "old-token"))
	require.NoError(t, repo.Save(ctx, "new-token"))

	val, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-token", val)

	var count int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCredentialRepo_EncryptedWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey).Save(ctx, "secret"))

	_, err := NewCredentialRepo(db, nil).Load(ctx)
	require.ErrorIs(t, err, ErrEncryptionKeyNotSet)
}

func TestCredentialRepo_WrongKeyFailsDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey).Save(ctx, "secret"))

	otherKey := bytes.Repeat([]byte{0x07}, 32)
	_, err := NewCredentialRepo(db, otherKey).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt token")
}

func TestNewDB_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	require.NoError(t, RunMigrations(db.Writer), "second run must be a no-op")
	assert.Equal(t, path, db.Path())

	repo := NewCredentialRepo(db, nil)
	require.NoError(t, repo.Save(context.Background(), "persisted"))
	val, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", val)
}
