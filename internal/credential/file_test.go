package credential

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	record := &Record{
		RefreshToken: "refresh-1",
		AccessToken:  "access-1",
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(55 * time.Minute).UTC().Truncate(time.Second),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Save(t.Context(), record))

	loaded, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, record.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, record.AccessToken, loaded.AccessToken)
	assert.Equal(t, record.TokenType, loaded.TokenType)
	assert.True(t, record.ExpiresAt.Equal(loaded.ExpiresAt))
	assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	_, err = store.Load(t.Context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(t.Context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreLoadRecordWithoutRefreshToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"a"}`), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(t.Context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreLoadRejectsInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"refresh_token":"r"}`), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(t.Context())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(t.Context(), &Record{RefreshToken: "old", AccessToken: "old-access"}))
	require.NoError(t, store.Save(t.Context(), &Record{RefreshToken: "new"}))

	loaded, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.RefreshToken)
	assert.Empty(t, loaded.AccessToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
