package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/post-downloader/internal/domain"
	"github.com/veranemoloko/post-downloader/internal/fetcher"
	"github.com/veranemoloko/post-downloader/internal/retry"
	"github.com/veranemoloko/post-downloader/internal/storage"
	"github.com/veranemoloko/post-downloader/internal/worker"
)

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) inc(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[path]++
	return h.hits[path]
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func newOSCoordinator(t *testing.T, policy retry.Policy) (*Coordinator, *recorder) {
	t.Helper()
	logger := newTestLogger()
	fileStorage := storage.NewOSFileStorage()
	f := fetcher.NewHTTPFetcher(time.Second, 1<<20, "test", logger)
	c := NewCoordinator(worker.NewPostWorker(f, fileStorage, policy, logger), fileStorage, 0, logger)

	rec := &recorder{}
	c.Subscribe(rec.handle)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c, rec
}

func TestBatch_EndToEnd(t *testing.T) {
	hits := &hitCounter{hits: map[string]int{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.inc(r.URL.Path)
		switch r.URL.Path {
		case "/c.png":
			if n < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("image c"))
		default:
			http.Error(w, "broken", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.png"), []byte("local a"), 0o644))

	c, rec := newOSCoordinator(t, retry.Policy{Retries: 8, Delay: time.Millisecond})

	batch := []domain.Post{
		{ID: 1, ResourceURL: server.URL + "/a.png", Tags: []string{"tag_a"}},
		{ID: 2, ResourceURL: server.URL + "/b.png", Tags: []string{"tag_b"}},
		{ID: 3, ResourceURL: server.URL + "/c.png", Tags: []string{"tag_c", "(x)"}},
	}
	settings := domain.Settings{SaveTags: true, RemoveTagUnderscores: true, EscapeTagParentheses: true}

	b, err := c.Start(batch, dir, settings)
	require.NoError(t, err)
	waitBatch(t, b)

	assert.Equal(t, domain.DownloadStatusComplete, c.State().Status)
	assert.Equal(t, 0, hits.get("/a.png"))
	assert.Equal(t, 9, hits.get("/b.png"))
	assert.Equal(t, 3, hits.get("/c.png"))

	a, err := os.ReadFile(filepath.Join(dir, "1.png"))
	require.NoError(t, err)
	assert.Equal(t, "local a", string(a))

	_, err = os.Stat(filepath.Join(dir, "2.png"))
	assert.True(t, os.IsNotExist(err))

	cImg, err := os.ReadFile(filepath.Join(dir, "3.png"))
	require.NoError(t, err)
	assert.Equal(t, "image c", string(cImg))

	for id, want := range map[string]string{"1": "tag a", "2": "tag b", "3": `tag c, \(x\)`} {
		got, err := os.ReadFile(filepath.Join(dir, id+".txt"))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	progress := rec.ofType(domain.EventPostFinished)
	require.Len(t, progress, 3)
	assert.Equal(t, 1, progress[2].State.Downloaded)
	assert.Equal(t, 1, progress[2].State.Total)

	outcomes := map[int64]domain.Outcome{}
	for _, ev := range progress {
		outcomes[ev.Result.PostID] = ev.Result.Outcome
	}
	assert.Equal(t, domain.OutcomeSkipped, outcomes[1])
	assert.Equal(t, domain.OutcomeFailed, outcomes[2])
	assert.Equal(t, domain.OutcomeDownloaded, outcomes[3])
}

func TestBatch_CancelImmediately(t *testing.T) {
	hits := &hitCounter{hits: map[string]int{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.inc(r.URL.Path)
		w.Write([]byte("image"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dest")
	c, rec := newOSCoordinator(t, retry.Default())

	batch := make([]domain.Post, 5)
	for i := range batch {
		batch[i] = domain.Post{ID: int64(i + 1), ResourceURL: server.URL + "/img.png", Tags: []string{"t"}}
	}

	b, err := c.Start(batch, dir, domain.Settings{SaveTags: true})
	require.NoError(t, err)
	require.True(t, c.Cancel())
	assert.Equal(t, domain.DownloadStatusComplete, c.State().Status)

	waitBatch(t, b)

	assert.Equal(t, domain.DownloadStatusComplete, c.State().Status)
	assert.Zero(t, hits.get("/img.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Len(t, rec.ofType(domain.EventBatchCancelled), 1)
	assert.Empty(t, rec.ofType(domain.EventPostFinished))
}

func TestBatch_DestinationCreateFailure(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))

	c, _ := newOSCoordinator(t, retry.Default())

	_, err := c.Start([]domain.Post{{ID: 1}}, filepath.Join(blocked, "dest"), domain.Settings{})
	require.Error(t, err)
	assert.False(t, c.State().Downloading())
}
