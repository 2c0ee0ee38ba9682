package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemory()

	_, ok := store.Get(KeyToken)
	assert.False(t, ok)

	store.Set(KeyToken, "T1")
	v, ok := store.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "T1", v)

	store.Delete(KeyToken)
	_, ok = store.Get(KeyToken)
	assert.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFile(path, "secret")
	require.NoError(t, err)
	store.Set(KeyToken, "T1")
	store.Set(KeyUser, `{"id":1,"name":"张三"}`)

	// A fresh instance reading the same file sees the same values.
	reopened, err := NewFile(path, "secret")
	require.NoError(t, err)
	v, ok := reopened.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "T1", v)
	v, ok = reopened.Get(KeyUser)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1,"name":"张三"}`, v)
}

func TestFileStoreValuesEncryptedAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFile(path, "secret")
	require.NoError(t, err)
	store.Set(KeyToken, "plaintext-token")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plaintext-token")
}

func TestFileStoreWrongSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFile(path, "secret")
	require.NoError(t, err)
	store.Set(KeyToken, "T1")

	// Undecryptable values read as absent, not as errors.
	reopened, err := NewFile(path, "other-secret")
	require.NoError(t, err)
	_, ok := reopened.Get(KeyToken)
	assert.False(t, ok)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store, err := NewFile(path, "secret")
	require.NoError(t, err)
	_, ok := store.Get(KeyToken)
	assert.False(t, ok)

	// The store still accepts writes after starting empty.
	store.Set(KeyToken, "T1")
	v, ok := store.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "T1", v)
}

func TestFileStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFile(path, "secret")
	require.NoError(t, err)
	store.Set(KeyToken, "T1")
	store.Delete(KeyToken)

	reopened, err := NewFile(path, "secret")
	require.NoError(t, err)
	_, ok := reopened.Get(KeyToken)
	assert.False(t, ok)
}
