package orchestrator

import (
	"github.com/ShayCichocki/switchyard/internal/registry"
	"github.com/ShayCichocki/switchyard/internal/task"
)

// DefaultQueryLimit is applied to queries that do not set a limit.
const DefaultQueryLimit = 20

// RequiredConfig contains the minimal required configuration for a Controller.
// All fields are required and have no defaults.
type RequiredConfig struct {
	// Registry holds the provider groups.
	Registry *registry.Registry
	// Tasks is the worker pool executing dispatched tasks.
	Tasks *task.Manager
}

// Option configures a Controller. Use With* functions to create Options.
type Option func(*controllerOptions)

// controllerOptions holds all optional configuration.
type controllerOptions struct {
	events       *EventEmitter
	logger       *DebugLogger
	defaultLimit int
}

// WithEventEmitter sets the emitter that receives dispatch events.
func WithEventEmitter(e *EventEmitter) Option {
	return func(o *controllerOptions) { o.events = e }
}

// WithDebugLogger sets the file logger for task lifecycle traces.
func WithDebugLogger(l *DebugLogger) Option {
	return func(o *controllerOptions) { o.logger = l }
}

// WithDefaultLimit sets the limit applied to queries without one.
func WithDefaultLimit(n int) Option {
	return func(o *controllerOptions) {
		if n > 0 {
			o.defaultLimit = n
		}
	}
}
