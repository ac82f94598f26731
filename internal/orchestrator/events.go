package orchestrator

import (
	"time"
)

// EventType represents the type of dispatch event.
type EventType string

const (
	// EventTaskSubmitted indicates a task was handed to the worker pool.
	EventTaskSubmitted EventType = "task_submitted"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventIndexFinished indicates one indexer finished with a URI.
	EventIndexFinished EventType = "index_finished"
	// EventUnindex indicates a URI was removed from the indexers.
	EventUnindex EventType = "unindex"
)

// Event represents something that happened during dispatch.
// Subscribers (CLI progress, watch, TUI) read them from the emitter.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// TaskName is the name of the related task, if applicable.
	TaskName string
	// Provider is the provider involved, if any.
	Provider string
	// URI is the identifier involved, if any.
	URI string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
