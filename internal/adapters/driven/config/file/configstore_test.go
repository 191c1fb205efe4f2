package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docindex", "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	store, err := NewConfigStore(dir)

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "parse")
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("name", "docs"))
	require.NoError(t, store.Set("size", 500))
	require.NoError(t, store.Set("rate", 0.25))
	require.NoError(t, store.Set("enabled", true))
	require.NoError(t, store.Set("list", []string{"chunker"}))

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "docs", store.GetString("name"))
		assert.Empty(t, store.GetString("size"))
		assert.Empty(t, store.GetString("missing"))
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 500, store.GetInt("size"))
		assert.Zero(t, store.GetInt("name"))
	})

	t.Run("float", func(t *testing.T) {
		assert.InDelta(t, 0.25, store.GetFloat("rate"), 1e-9)
		assert.InDelta(t, 500.0, store.GetFloat("size"), 1e-9)
		assert.Zero(t, store.GetFloat("name"))
	})

	t.Run("bool", func(t *testing.T) {
		assert.True(t, store.GetBool("enabled"))
		assert.False(t, store.GetBool("name"))
	})

	t.Run("string slice", func(t *testing.T) {
		assert.Equal(t, []string{"chunker"}, store.GetStringSlice("list"))
		assert.Nil(t, store.GetStringSlice("name"))
	})
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	val, ok := store.Get("nonexistent")

	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("storage.backend", "memory"))
	require.NoError(t, store1.Set("pipeline.chunker.chunk_size", 800))
	require.NoError(t, store1.Set("tracing.sample_rate", 0.5))
	require.NoError(t, store1.Set("verbose", true))

	store2, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", store2.GetString("storage.backend"))
	assert.Equal(t, 800, store2.GetInt("pipeline.chunker.chunk_size"))
	assert.InDelta(t, 0.5, store2.GetFloat("tracing.sample_rate"), 1e-9)
	assert.True(t, store2.GetBool("verbose"))
}

func TestConfigStore_SavesNestedTables(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("storage.backend", "sqlite"))
	require.NoError(t, store.Set("storage.collection", "documents"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[storage]")
	assert.Contains(t, content, "backend = ")
	assert.Contains(t, content, "sqlite")
	assert.NotContains(t, content, "storage.backend")
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "[embedding]\nprovider = \"hashing\"\n\n[files]\nmax_bytes = 2048\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "hashing", store.GetString("embedding.provider"))
	assert.Equal(t, 2048, store.GetInt("files.max_bytes"))
	assert.Equal(t, []string{"embedding.provider", "files.max_bytes"}, store.Keys())
}

func TestConfigStore_Set_ConflictingKeys(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("storage", "sqlite"))

	err := store.Set("storage.backend", "memory")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicts")
	_, ok := store.Get("storage.backend")
	assert.False(t, ok, "failed set should be rolled back")
	assert.Equal(t, "sqlite", store.GetString("storage"))
}

func TestConfigStore_Set_WriteFailureRestoresValue(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("storage.backend", "sqlite"))

	store.filePath = filepath.Join(t.TempDir(), "missing", "config.toml")
	err := store.Set("storage.backend", "memory")

	require.Error(t, err)
	assert.Equal(t, "sqlite", store.GetString("storage.backend"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save())

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "worker.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap(t *testing.T) {
	t.Run("round trips with flatten", func(t *testing.T) {
		flat := map[string]any{"a.b": 1, "a.c": "x", "d": true}

		nested, err := nestMap(flat)

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": "x"}, "d": true}, nested)
		assert.Equal(t, flat, flattenMap(nested, ""))
	})

	t.Run("value under existing leaf", func(t *testing.T) {
		_, err := nestMap(map[string]any{"a": 1, "a.b": 2})
		assert.Error(t, err)
	})
}
