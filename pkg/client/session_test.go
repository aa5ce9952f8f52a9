package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktrack/marktrack-api/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	session := &Session{
		Token:    "tok",
		Identity: models.UserInfo{ID: "u1", Email: "u1@example.com", Role: models.RoleStudent, Status: models.StatusActive},
	}
	require.NoError(t, store.Save(session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.Token, loaded.Token)
	assert.Equal(t, session.Identity, loaded.Identity)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStoreMissingFileLoadsAsLoggedOut(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing an absent session is a no-op, not an error.
	assert.NoError(t, store.Clear())
}

func TestFileStoreCorruptFileLoadsAsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStoreRejectsPartialSession(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	assert.Error(t, store.Save(&Session{Token: "tok"}))
	assert.Error(t, store.Save(&Session{Identity: models.UserInfo{ID: "u1"}}))
}

func TestMemoryStoreCopiesOnLoad(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{Token: "tok", Identity: models.UserInfo{ID: "u1"}}))

	first, err := store.Load()
	require.NoError(t, err)
	first.Token = "mutated"

	second, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", second.Token)
}
