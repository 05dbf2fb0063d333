package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRequest_Array(t *testing.T) {
	path := writeFile(t, `[{"id": 1, "resource_url": "https://cdn.example.com/1.png", "tags": ["a_b"]}, {"id": 2}]`)

	req, err := readRequest(path)
	require.NoError(t, err)
	require.Len(t, req.Posts, 2)
	assert.Equal(t, int64(1), req.Posts[0].ID)
	assert.Equal(t, []string{"a_b"}, req.Posts[0].Tags)
	assert.False(t, req.Posts[1].Downloadable())
}

func TestReadRequest_Object(t *testing.T) {
	path := writeFile(t, `{"destination": "/tmp/x", "save_tags": false, "posts": [{"id": 5}]}`)

	req, err := readRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", req.Destination)
	require.NotNil(t, req.SaveTags)
	assert.False(t, *req.SaveTags)
	require.Len(t, req.Posts, 1)
}

func TestReadRequest_Invalid(t *testing.T) {
	_, err := readRequest(writeFile(t, `not json`))
	assert.Error(t, err)

	_, err = readRequest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
