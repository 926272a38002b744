package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[vector]
provider = "upstash"
dimension = 1024

[migration]
batch_size = 50
dry_run = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "upstash", store.GetString(KeyVectorProvider))
	assert.Equal(t, 1024, store.GetInt(KeyVectorDimension))
	assert.Equal(t, 50, store.GetInt(KeyBatchSize))
	assert.True(t, store.GetBool("migration.dry_run"))
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", 42))
	assert.Equal(t, "", store.GetString("k"))
	assert.False(t, store.GetBool("k"))
	assert.Equal(t, 42, store.GetInt("k"))

	require.NoError(t, store.Set("f", 3.0))
	assert.Equal(t, 3, store.GetInt("f"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_SetDoesNotPersistUntilSave(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyVectorProvider, "chromem"))
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Save())
	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "chromem", reloaded.GetString(KeyVectorProvider))
}

func TestConfigStore_SaveWritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyVectorProvider, "upstash"))
	require.NoError(t, store.Set(KeyBatchSize, 25))
	require.NoError(t, store.Save())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vector]")
	assert.Contains(t, string(data), "[migration]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyBatchSize, KeyVectorProvider}, reloaded.Keys())
	assert.Equal(t, 25, reloaded.GetInt(KeyBatchSize))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyVectorToken, "secret"))
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(KeyHarnessWorkers, i)
			_ = store.GetInt(KeyHarnessWorkers)
		}()
	}
	wg.Wait()

	_, ok := store.Get(KeyHarnessWorkers)
	assert.True(t, ok)
}

func TestFlattenAndNest(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, nestMap(flat))
}
