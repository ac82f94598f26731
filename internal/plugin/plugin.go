// Package plugin defines the contracts between the core and capability
// providers: storage backends, indexers and query engines, bundled into
// groups.
//
// Providers only implement their capability interface. Optional group-level
// hooks are declared explicitly through [Extensions] and read once when the
// group is registered.
package plugin

import (
	"io"
	"net/url"
	"sync/atomic"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Provider is implemented by every capability provider.
type Provider interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
}

// Stream is a readable resource returned by a Storage provider.
type Stream interface {
	URI() *url.URL
	// Size returns the content length, or -1 if unknown.
	Size() int64
	Open() (io.ReadCloser, error)
}

// Storage resolves identifiers to streams.
type Storage interface {
	Provider
	// Scheme is the URI scheme this storage primarily serves.
	Scheme() string
	Handles(uri *url.URL) bool
	At(uri *url.URL) ([]Stream, error)
}

// Indexer builds an index from streams.
type Indexer interface {
	Provider
	Handles(uri *url.URL) bool
	// Index returns a task that has not been submitted yet.
	Index(streams []Stream) *task.Task[*models.Report]
	Unindex(uri *url.URL) error
}

// Query answers queries against a provider's index.
type Query interface {
	Provider
	Query(text string, params models.QueryParams) (*models.Report, error)
}

// Toggle carries a provider's name and a race-free enabled flag.
// Embed a *Toggle to satisfy the Provider interface.
type Toggle struct {
	name     string
	disabled atomic.Bool
}

// NewToggle returns an enabled toggle named name.
func NewToggle(name string) *Toggle {
	return &Toggle{name: name}
}

// Name returns the provider name.
func (t *Toggle) Name() string { return t.name }

// Enabled reports whether the provider is enabled.
func (t *Toggle) Enabled() bool { return !t.disabled.Load() }

// SetEnabled flips the enabled flag.
func (t *Toggle) SetEnabled(enabled bool) { t.disabled.Store(!enabled) }
