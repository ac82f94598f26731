package models

// TaskState represents the lifecycle state of a dispatched task.
type TaskState string

const (
	// TaskStatePending indicates the task has not started.
	TaskStatePending TaskState = "pending"
	// TaskStateRunning indicates a worker is executing the task body.
	TaskStateRunning TaskState = "running"
	// TaskStateCompleted indicates the task produced a result.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed indicates the task produced an error.
	TaskStateFailed TaskState = "failed"
)

// Valid returns true if the state is a known value.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStatePending, TaskStateRunning, TaskStateCompleted, TaskStateFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true once no further transition is possible.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed
}
