package service

import (
	"context"

	"github.com/google/uuid"
)

// Batch is a handle on one started batch. The coordinator owns its state; the
// handle only lets callers wait for it.
type Batch struct {
	ID    uuid.UUID
	Total int

	done      chan struct{}
	tasksDone chan struct{}
}

func newBatch(total int) *Batch {
	return &Batch{
		ID:        uuid.New(),
		Total:     total,
		done:      make(chan struct{}),
		tasksDone: make(chan struct{}),
	}
}

// Done is closed once the batch leaves the downloading state, either because
// its counters converged or because it was cancelled.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until every task of the batch has returned and the batch is no
// longer downloading.
func (b *Batch) Wait(ctx context.Context) error {
	for _, ch := range []chan struct{}{b.tasksDone, b.done} {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
