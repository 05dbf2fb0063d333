package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/post-downloader/internal/domain"
	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
	"github.com/veranemoloko/post-downloader/internal/metrics"
	"github.com/veranemoloko/post-downloader/internal/storage"
	"github.com/veranemoloko/post-downloader/internal/token"
	"github.com/veranemoloko/post-downloader/internal/worker"
)

// PostRunner downloads one post and reports its terminal result.
type PostRunner interface {
	Run(ctx context.Context, job worker.Job) domain.PostResult
}

type taskResult struct {
	batchID uuid.UUID
	result  domain.PostResult
}

// Coordinator owns the download state and the cancellation token of the single
// live batch. Task results are funneled through one channel drained by a
// single goroutine, which is the only writer of the progress counters.
type Coordinator struct {
	runner      PostRunner
	storage     *storage.FileStorage
	maxParallel int
	logger      *slog.Logger

	mu       sync.Mutex
	state    domain.DownloadState
	token    *token.Token
	batch    *Batch
	handlers []domain.EventHandler
	closed   bool

	results     chan taskResult
	ctx         context.Context
	cancelTasks context.CancelFunc
	tasksWG     sync.WaitGroup
	processorWG sync.WaitGroup
}

// NewCoordinator creates a Coordinator and starts its result processor.
// maxParallel caps concurrently running tasks; 0 runs one goroutine per post.
func NewCoordinator(runner PostRunner, fileStorage *storage.FileStorage, maxParallel int, logger *slog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		runner:      runner,
		storage:     fileStorage,
		maxParallel: maxParallel,
		logger:      logger,
		state:       domain.DownloadState{Status: domain.DownloadStatusComplete},
		results:     make(chan taskResult, 100),
		ctx:         ctx,
		cancelTasks: cancel,
	}

	c.processorWG.Add(1)
	go c.resultProcessor()

	return c
}

// Subscribe registers h for every subsequent event. Handlers are called
// outside the coordinator lock and must not block.
func (c *Coordinator) Subscribe(h domain.EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// State returns a snapshot of the download state.
func (c *Coordinator) State() domain.DownloadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins downloading posts into destination, creating it if needed.
// An empty batch completes immediately. Only one batch may be downloading.
func (c *Coordinator) Start(posts []domain.Post, destination string, settings domain.Settings) (*Batch, error) {
	dir, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, errpkg.ErrShuttingDown
	}
	if c.state.Downloading() {
		c.mu.Unlock()
		return nil, errpkg.ErrBatchInProgress
	}

	if err := c.storage.MkdirAll(dir); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create destination: %w", err)
	}

	batch := newBatch(len(posts))
	tok := token.New()
	initial := tok.Stamp()

	c.token = tok
	c.batch = batch
	c.state = domain.DownloadState{
		Status:    domain.DownloadStatusDownloading,
		BatchID:   batch.ID,
		Total:     len(posts),
		StartedAt: initial.At,
	}
	started := domain.Event{Type: domain.EventBatchStarted, BatchID: batch.ID, State: c.state}

	events := []domain.Event{started}
	finished := len(posts) == 0
	if finished {
		c.finishLocked()
		events = append(events, domain.Event{Type: domain.EventBatchFinished, BatchID: batch.ID, State: c.state})
	}
	handlers := c.handlersLocked()
	c.tasksWG.Add(1)
	c.mu.Unlock()

	metrics.BatchesStarted.Inc()
	c.logger.Info("batch started", "batch_id", batch.ID, "posts", len(posts), "destination", dir)

	jobs := make([]worker.Job, len(posts))
	for i, post := range posts {
		jobs[i] = worker.Job{Post: post, Dir: dir, Settings: settings, Token: tok, Initial: initial}
	}
	go c.runBatch(batch, jobs)

	emit(handlers, events)
	if finished {
		metrics.BatchesCompleted.Inc()
		close(batch.done)
	}

	return batch, nil
}

// Cancel invalidates every in-flight task of the active batch and returns the
// state to complete immediately. It reports whether a batch was cancelled;
// calling it with no active batch is a no-op.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	if !c.state.Downloading() {
		c.mu.Unlock()
		return false
	}

	c.token.Renew()
	batch := c.batch
	c.finishLocked()
	event := domain.Event{Type: domain.EventBatchCancelled, BatchID: batch.ID, State: c.state}
	handlers := c.handlersLocked()
	c.mu.Unlock()

	metrics.BatchesCancelled.Inc()
	c.logger.Info("download canceled", "batch_id", batch.ID)

	emit(handlers, []domain.Event{event})
	close(batch.done)
	return true
}

// Shutdown cancels the active batch, stops its tasks and waits for the result
// processor to drain.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.logger.Info("shutting down coordinator")

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Cancel()
	c.cancelTasks()

	done := make(chan struct{})
	go func() {
		c.tasksWG.Wait()
		close(c.results)
		c.processorWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator shutdown completed")
		return nil
	case <-ctx.Done():
		c.logger.Warn("coordinator shutdown timed out")
		return ctx.Err()
	}
}

func (c *Coordinator) runBatch(batch *Batch, jobs []worker.Job) {
	defer c.tasksWG.Done()
	defer close(batch.tasksDone)

	g := new(errgroup.Group)
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			res := c.runner.Run(c.ctx, job)
			c.results <- taskResult{batchID: batch.ID, result: res}
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Coordinator) resultProcessor() {
	defer c.processorWG.Done()

	for r := range c.results {
		c.applyResult(r)
	}
}

// applyResult folds one task result into the counters. Results of a batch
// that is no longer the active one are discarded.
func (c *Coordinator) applyResult(r taskResult) {
	metrics.PostOutcomes.WithLabelValues(string(r.result.Outcome)).Inc()
	if r.result.Sidecar != "" {
		metrics.SidecarsWritten.Inc()
	}

	c.mu.Lock()
	if !c.state.Downloading() || c.state.BatchID != r.batchID {
		c.mu.Unlock()
		c.logger.Debug("discarding result of inactive batch",
			"batch_id", r.batchID,
			"post_id", r.result.PostID,
			"outcome", r.result.Outcome,
		)
		return
	}

	if r.result.Outcome.Success() {
		c.state.Downloaded++
	} else {
		c.state.Total--
	}

	result := r.result
	events := []domain.Event{{Type: domain.EventPostFinished, BatchID: r.batchID, State: c.state, Result: &result}}

	var finished *Batch
	if c.state.Downloaded == c.state.Total {
		c.logger.Info("batch completed",
			"batch_id", r.batchID,
			"downloaded", c.state.Downloaded,
			"elapsed", time.Since(c.state.StartedAt),
		)
		finished = c.batch
		c.finishLocked()
		events = append(events, domain.Event{Type: domain.EventBatchFinished, BatchID: r.batchID, State: c.state})
	}
	handlers := c.handlersLocked()
	c.mu.Unlock()

	emit(handlers, events)
	if finished != nil {
		metrics.BatchesCompleted.Inc()
		close(finished.done)
	}
}

func (c *Coordinator) finishLocked() {
	c.state = domain.DownloadState{Status: domain.DownloadStatusComplete}
	c.batch = nil
}

func (c *Coordinator) handlersLocked() []domain.EventHandler {
	return append([]domain.EventHandler(nil), c.handlers...)
}

func emit(handlers []domain.EventHandler, events []domain.Event) {
	for _, ev := range events {
		for _, h := range handlers {
			h(ev)
		}
	}
}
