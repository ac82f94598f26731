package orchestrator

import (
	"context"
	"errors"
	"log"
	"net/url"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/registry"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Controller is the facade over the registry and the worker pool.
type Controller struct {
	registry     *registry.Registry
	tasks        *task.Manager
	events       *EventEmitter
	logger       *DebugLogger
	defaultLimit int
}

// New creates a Controller with required config and optional settings.
//
// Required: cfg.Registry and cfg.Tasks must be set.
// Optional: use With* functions to attach an event emitter or debug logger.
//
// Groups that declare the platform hook receive the controller's Platform
// view before New returns.
func New(cfg RequiredConfig, opts ...Option) *Controller {
	o := &controllerOptions{defaultLimit: DefaultQueryLimit}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = NopLogger()
	}

	c := &Controller{
		registry:     cfg.Registry,
		tasks:        cfg.Tasks,
		events:       o.events,
		logger:       o.logger,
		defaultLimit: o.defaultLimit,
	}
	c.registry.AttachPlatform(c.Platform())
	return c
}

// Registry returns the underlying registry.
func (c *Controller) Registry() *registry.Registry { return c.registry }

// Tasks returns the worker pool.
func (c *Controller) Tasks() *task.Manager { return c.tasks }

// Events returns the attached emitter, which may be nil.
func (c *Controller) Events() *EventEmitter { return c.events }

// Resolve returns the streams for uri, or an empty slice.
func (c *Controller) Resolve(uri *url.URL) []plugin.Stream {
	return c.registry.Resolve(uri)
}

// StorageFor returns the first enabled storage that handles uri.
func (c *Controller) StorageFor(uri *url.URL) (plugin.Storage, bool) {
	return c.registry.StorageFor(uri)
}

// ListProviders returns the providers of kind in registry order.
func (c *Controller) ListProviders(kind models.Kind, onlyEnabled bool) []plugin.Provider {
	return c.registry.Providers(kind, onlyEnabled)
}

// ProviderNames returns every registered name of kind.
func (c *Controller) ProviderNames(kind models.Kind) []string {
	return c.registry.Names(kind, false)
}

// SetEnabled toggles the provider of kind named name.
func (c *Controller) SetEnabled(kind models.Kind, name string, enabled bool) error {
	return c.registry.SetEnabled(kind, name, enabled)
}

// Shutdown drains the worker pool and then runs the groups' shutdown hooks.
func (c *Controller) Shutdown(ctx context.Context) error {
	poolErr := c.tasks.Shutdown(ctx)
	hookErr := c.registry.Shutdown()
	return errors.Join(poolErr, hookErr)
}

// submitReport hands t to the pool and records its lifecycle.
func (c *Controller) submitReport(t *task.Task[*models.Report]) {
	if t.State() != models.TaskStatePending {
		return
	}
	t.OnCompletion(func(done *task.Task[*models.Report]) {
		c.logger.Transition(done.ID(), done.Name(), models.TaskStateRunning, done.State(), done.Err())
		if err := done.Err(); err != nil {
			c.events.Emit(Event{Type: EventTaskFailed, TaskID: done.ID(), TaskName: done.Name(), Error: err})
			return
		}
		c.events.Emit(Event{Type: EventTaskCompleted, TaskID: done.ID(), TaskName: done.Name()})
	})
	c.logger.Record("submit", "task", t.ID(), "name", t.Name())
	c.events.Emit(Event{Type: EventTaskSubmitted, TaskID: t.ID(), TaskName: t.Name()})
	c.tasks.Submit(t)
}

func logTaskOutcome(prefix string, t *task.Task[*models.Report]) {
	if err := t.Err(); err != nil {
		log.Printf("[%s] task %s failed: %v", prefix, t.Name(), err)
		return
	}
	log.Printf("[%s] task %s accomplished", prefix, t.Name())
}
