package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"github.com/veranemoloko/post-downloader/internal/domain"
	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
	"github.com/veranemoloko/post-downloader/internal/fetcher"
	"github.com/veranemoloko/post-downloader/internal/imaging"
	"github.com/veranemoloko/post-downloader/internal/retry"
	"github.com/veranemoloko/post-downloader/internal/sidecar"
	"github.com/veranemoloko/post-downloader/internal/storage"
	"github.com/veranemoloko/post-downloader/internal/token"
)

// Job is one post of a batch together with the batch's shared token and the
// stamp captured when the batch started.
type Job struct {
	Post     domain.Post
	Dir      string
	Settings domain.Settings
	Token    *token.Token
	Initial  token.Stamp
}

// PostWorker downloads a single post: existence check, fetch with retries,
// optional letterboxing, write, then the tag sidecar.
type PostWorker struct {
	fetcher   fetcher.Fetcher
	storage   *storage.FileStorage
	policy    retry.Policy
	letterbox func([]byte) ([]byte, error)
	logger    *slog.Logger
}

// NewPostWorker creates a PostWorker writing through fileStorage.
func NewPostWorker(f fetcher.Fetcher, fileStorage *storage.FileStorage, policy retry.Policy, logger *slog.Logger) *PostWorker {
	return &PostWorker{
		fetcher:   f,
		storage:   fileStorage,
		policy:    policy,
		letterbox: imaging.Letterbox,
		logger:    logger,
	}
}

// Run executes job and returns its single terminal result. It never panics on
// filesystem or decode failures; those become OutcomeFailed.
func (w *PostWorker) Run(ctx context.Context, job Job) domain.PostResult {
	post := job.Post
	result := domain.PostResult{PostID: post.ID}

	if !post.Downloadable() {
		w.logger.Debug("post has no resource url, skipping", "post_id", post.ID)
		result.Outcome = domain.OutcomeSkipped
		result.Error = errpkg.ErrNoResourceURL.Error()
		return result
	}

	file, err := w.downloadImage(ctx, job)
	switch {
	case err == nil:
		result.Outcome = domain.OutcomeDownloaded
		result.File = file
	case errors.Is(err, errpkg.ErrFileExists):
		result.Outcome = domain.OutcomeSkipped
		result.File = file
	case errors.Is(err, errpkg.ErrCancelled), errors.Is(err, context.Canceled):
		w.logger.Info("download of post canceled, aborting", "post_id", post.ID)
		result.Outcome = domain.OutcomeCancelled
		return result
	default:
		w.logger.Error("could not download post", "post_id", post.ID, "error", err)
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
	}

	if job.Settings.SaveTags {
		writer := sidecar.NewWriter(w.storage, sidecar.OptionsFrom(job.Settings))
		sidecarPath, err := writer.Write(job.Dir, post)
		if err != nil {
			w.logger.Error("failed to write tag sidecar", "post_id", post.ID, "error", err)
		}
		result.Sidecar = sidecarPath
	}

	return result
}

func (w *PostWorker) downloadImage(ctx context.Context, job Job) (string, error) {
	post := job.Post
	imgPath := w.storage.Join(job.Dir, ImageFileName(post))

	exists, err := w.storage.Exists(imgPath)
	if err != nil {
		return "", err
	}
	if exists {
		w.logger.Debug("image already exists, skipping", "post_id", post.ID, "file_path", imgPath)
		return imgPath, errpkg.ErrFileExists
	}

	checkpoint := func() error {
		if !job.Token.Valid(job.Initial) {
			return errpkg.ErrCancelled
		}
		return nil
	}

	var data []byte
	err = w.policy.Do(ctx, checkpoint, func(int) error {
		var fetchErr error
		data, fetchErr = w.fetcher.Fetch(ctx, post)
		return fetchErr
	}, func(attempt int, err error) {
		w.logger.Warn("failed downloading post",
			"post_id", post.ID,
			"retry", attempt,
			"max_retries", w.policy.Retries,
			"error", err,
		)
	})
	if err != nil {
		return "", err
	}

	if err := checkpoint(); err != nil {
		return "", err
	}

	if job.Settings.ApplyLetterboxing {
		data, err = w.letterbox(data)
		if err != nil {
			return "", fmt.Errorf("letterbox post %d: %w", post.ID, err)
		}
	}

	if err := w.storage.WriteFile(imgPath, data); err != nil {
		return "", fmt.Errorf("save post %d: %w", post.ID, err)
	}

	w.logger.Debug("post downloaded", "post_id", post.ID, "bytes", len(data), "file_path", imgPath)
	return imgPath, nil
}

// ImageFileName returns "<post id><ext>", where ext comes from the resource
// URL path. URLs without an extension get ".bin".
func ImageFileName(post domain.Post) string {
	ext := ""
	if u, err := url.Parse(post.ResourceURL); err == nil {
		ext = path.Ext(u.Path)
	}
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%d%s", post.ID, ext)
}
