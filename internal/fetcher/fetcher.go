package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veranemoloko/post-downloader/internal/domain"
	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
	"github.com/veranemoloko/post-downloader/internal/metrics"
)

// Fetcher performs a single attempt to retrieve the bytes of a post.
// Every returned error is considered transient.
type Fetcher interface {
	Fetch(ctx context.Context, post domain.Post) ([]byte, error)
}

// HTTPFetcher fetches post resources over HTTP.
type HTTPFetcher struct {
	client      *http.Client
	maxFileSize int64
	userAgent   string
	logger      *slog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. Each attempt is bounded by timeout and
// responses larger than maxFileSize are rejected.
func NewHTTPFetcher(timeout time.Duration, maxFileSize int64, userAgent string, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:      &http.Client{Timeout: timeout},
		maxFileSize: maxFileSize,
		userAgent:   userAgent,
		logger:      logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, post domain.Post) ([]byte, error) {
	if !post.Downloadable() {
		return nil, errpkg.ErrNoResourceURL
	}

	metrics.FetchAttempts.Inc()
	startTime := time.Now()

	data, err := f.get(ctx, post.ResourceURL)
	if err != nil {
		metrics.FetchFailures.Inc()
		f.logger.Debug("fetch failed", "post_id", post.ID, "url", post.ResourceURL, "error", err)
		return nil, err
	}

	metrics.FetchDuration.Observe(time.Since(startTime).Seconds())
	metrics.FetchBytes.Add(float64(len(data)))

	f.logger.Debug("fetch completed", "post_id", post.ID, "bytes", len(data))
	return data, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	limitedReader := &io.LimitedReader{R: resp.Body, N: f.maxFileSize + 1}
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxFileSize {
		return nil, fmt.Errorf("file size exceeds limit: %d bytes", f.maxFileSize)
	}

	return data, nil
}
