package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus is the tag of DownloadState.
type DownloadStatus string

const (
	DownloadStatusComplete    DownloadStatus = "complete"
	DownloadStatusDownloading DownloadStatus = "downloading"
)

// DownloadState is the process-wide download progress. Total and Downloaded
// are only meaningful while Status is DownloadStatusDownloading.
type DownloadState struct {
	Status     DownloadStatus `json:"status"`
	BatchID    uuid.UUID      `json:"batch_id"`
	Total      int            `json:"total"`
	Downloaded int            `json:"downloaded"`
	StartedAt  time.Time      `json:"started_at"`
}

// Downloading reports whether a batch is active.
func (s DownloadState) Downloading() bool {
	return s.Status == DownloadStatusDownloading
}

// Outcome is the single terminal result a task reports for its image.
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeFailed     Outcome = "failed"
)

// Success reports whether the outcome advances the downloaded counter.
func (o Outcome) Success() bool {
	return o == OutcomeDownloaded
}

// PostResult is what a task hands back to the coordinator.
type PostResult struct {
	PostID  int64   `json:"post_id"`
	Outcome Outcome `json:"outcome"`
	File    string  `json:"file,omitempty"`
	Sidecar string  `json:"sidecar,omitempty"`
	Error   string  `json:"error,omitempty"`
}
