package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "cache.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsRecordedOnce(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var count int
	row := second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}

func TestEmbeddingCache_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	err := cache.SaveEmbeddings(ctx, "bge-m3", map[string][]float32{
		"a": {0.1, 0.2, 0.3},
		"b": {-1, 0, 1},
	})
	require.NoError(t, err)

	got, err := cache.GetEmbeddings(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got["a"])
	assert.Equal(t, []float32{-1, 0, 1}, got["b"])
	_, ok := got["missing"]
	assert.False(t, ok)
}

func TestEmbeddingCache_Overwrite(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.SaveEmbeddings(ctx, "m1", map[string][]float32{"k": {1}}))
	require.NoError(t, cache.SaveEmbeddings(ctx, "m2", map[string][]float32{"k": {2, 3}}))

	got, err := cache.GetEmbeddings(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, got["k"])

	var model string
	var dims int
	row := store.db.QueryRow("SELECT model, dimensions FROM embeddings WHERE key = ?", "k")
	require.NoError(t, row.Scan(&model, &dims))
	assert.Equal(t, "m2", model)
	assert.Equal(t, 2, dims)
}

func TestEmbeddingCache_ManyKeys(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	entries := make(map[string][]float32)
	keys := make([]string, 0, 1200)
	for i := 0; i < 1200; i++ {
		key := fmt.Sprintf("key-%04d", i)
		entries[key] = []float32{float32(i)}
		keys = append(keys, key)
	}
	require.NoError(t, cache.SaveEmbeddings(ctx, "m", entries))

	got, err := cache.GetEmbeddings(ctx, keys)
	require.NoError(t, err)
	assert.Len(t, got, 1200)
}

func TestEmbeddingCache_EmptyInputs(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.SaveEmbeddings(ctx, "m", nil))
	got, err := cache.GetEmbeddings(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddingCache_CloseClosesStore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.EmbeddingCache().Close())
	assert.Error(t, store.db.Ping())
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Empty(t, bytesToFloat32Slice(nil))
}
