package domain

import "github.com/google/uuid"

type EventType string

const (
	EventBatchStarted   EventType = "batch_started"
	EventPostFinished   EventType = "post_finished"
	EventBatchFinished  EventType = "batch_finished"
	EventBatchCancelled EventType = "batch_cancelled"
)

// Event is emitted to presentation subscribers. Result is set only for
// EventPostFinished.
type Event struct {
	Type    EventType
	BatchID uuid.UUID
	State   DownloadState
	Result  *PostResult
}

// EventHandler receives coordinator events. Handlers must not block.
type EventHandler func(Event)
