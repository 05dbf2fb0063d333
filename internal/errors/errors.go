package errors

import "errors"

var (
	ErrNoResourceURL    = errors.New("post has no resource url")
	ErrFileExists       = errors.New("file already exists")
	ErrCancelled        = errors.New("batch cancelled")
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrBatchInProgress  = errors.New("a batch is already downloading")
	ErrDecodeImage      = errors.New("failed to decode image")
	ErrShuttingDown     = errors.New("service is shutting down")
)
