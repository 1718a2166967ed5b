package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_StartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("sources.weather.api_key"))
	assert.Equal(t, 0, store.GetInt("pipeline.workers"))
}

func TestSet_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("sources.weather.api_key", "secret"))
	require.NoError(t, store.Set("pipeline.workers", 4))
	require.NoError(t, store.Set("pipeline.verbose", true))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret", reopened.GetString("sources.weather.api_key"))
	assert.Equal(t, 4, reopened.GetInt("pipeline.workers"))
	assert.True(t, reopened.GetBool("pipeline.verbose"))
}

func TestLoad_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[pipeline]
workers = 3
zscore_band = 2.5

[sources.market]
symbol = "ACME"
api_key = "k"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, store.GetInt("pipeline.workers"))
	assert.Equal(t, 2.5, store.GetFloat("pipeline.zscore_band"))
	assert.Equal(t, "ACME", store.GetString("sources.market.symbol"))
	assert.Equal(t, "k", store.GetString("sources.market.api_key"))
}

func TestGetFloat_CoercesIntegers(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("pipeline.timeout_seconds", int64(30)))

	assert.Equal(t, 30.0, store.GetFloat("pipeline.timeout_seconds"))
}

func TestTypedGetters_WrongTypeReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "text"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
}

func TestConfigFile_RestrictedPermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("sources.market.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
