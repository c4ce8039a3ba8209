package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.db")

	store, err := Open(path)
	require.NoError(t, err)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("ghp_first"))
	require.NoError(t, store.Save("ghp_second"))
	require.NoError(t, store.Close())

	// the token survives a restart
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_second", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
