package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_WriteAndExists(t *testing.T) {
	fs := NewFileStorage(memfs.New())
	require.NoError(t, fs.MkdirAll("/out"))

	name := fs.Join("/out", "1.png")
	exists, err := fs.Exists(name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.WriteFile(name, []byte("hello world")))

	exists, err = fs.Exists(name)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := fs.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestFileStorage_WriteLeavesNoTempFiles(t *testing.T) {
	mem := memfs.New()
	fs := NewFileStorage(mem)
	require.NoError(t, fs.MkdirAll("/out"))

	require.NoError(t, fs.WriteFile("/out/2.jpg", []byte("data")))

	entries, err := mem.ReadDir("/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2.jpg", entries[0].Name())
}

func TestFileStorage_WriteOverwrites(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "/out/3.txt", []byte("old"), 0o644))

	fs := NewFileStorage(mem)
	require.NoError(t, fs.WriteFile("/out/3.txt", []byte("new")))

	data, err := fs.ReadFile("/out/3.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestOSFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dest")
	fs := NewOSFileStorage()

	require.NoError(t, fs.MkdirAll(dir))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, "4.png"), []byte("png")))

	data, err := os.ReadFile(filepath.Join(dir, "4.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	exists, err := fs.Exists(filepath.Join(dir, "missing.png"))
	require.NoError(t, err)
	assert.False(t, exists)
}
