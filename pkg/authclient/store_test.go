package authclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		Token:        "access-token",
		RefreshToken: "refresh-token",
		User: &Profile{
			ID:       1,
			Email:    "test@example.com",
			FullName: "Test User",
			Role:     "user",
			IsActive: true,
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	saved := testSession()
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, saved.Token, loaded.Token)
	assert.Equal(t, saved.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, *saved.User, *loaded.User)
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileStore_CorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestFileStore_PartialDataIsCorrupt(t *testing.T) {
	// A token without a profile must not load as a session.
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"t1"}`), 0o600))

	store := NewFileStore(path)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestFileStore_RejectsPartialSave(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	assert.Error(t, store.Save(&Session{Token: "t1"}))
	assert.Error(t, store.Save(&Session{User: &Profile{ID: 1}}))
}

func TestFileStore_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(testSession()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	saved := testSession()
	require.NoError(t, store.Save(saved))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *saved.User, *loaded.User)

	// Mutating the loaded copy must not affect the store
	loaded.User.FullName = "Changed"
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Test User", again.User.FullName)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
