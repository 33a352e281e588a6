package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	data, err = Encode([]domain.GalaxyPoint{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode([]domain.GalaxyPoint{{
		Title:   "Café <notes> & more",
		Slug:    "2024/cafe",
		Date:    "2024-01-02",
		Cluster: 1,
		X:       -1,
		Y:       0.5,
	}})
	require.NoError(t, err)

	want := `[
  {
    "title": "Café <notes> & more",
    "slug": "2024/cafe",
    "date": "2024-01-02",
    "cluster": 1,
    "x": -1,
    "y": 0.5
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestWrite_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "data", "clusters.json")
	w, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	points := []domain.GalaxyPoint{{Title: "A", Slug: "a", Cluster: 0}}
	require.NoError(t, w.Write(context.Background(), points))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []domain.GalaxyPoint
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, points, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestWrite_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusters.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	w, err := New(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_CancelledContextKeepsOldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := Builder(path)
	require.NoError(t, err)
	assert.ErrorIs(t, w.Write(ctx, nil), context.Canceled)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(raw))
}
