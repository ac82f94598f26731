package orchestrator

import (
	"fmt"
	"log"
	"net/url"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// indexAllJob is the input of an index-all task.
type indexAllJob struct {
	uri      *url.URL
	storage  plugin.Storage
	indexers func() []plugin.Indexer
	submit   func(*task.Task[*models.Report])
	// onDone observes each indexer's subtask when it reaches a terminal state.
	onDone func(indexer string, t *task.Task[*models.Report])
}

// runIndexAll hands fresh streams to every indexer that handles the URI and
// merges their reports in registry order.
func runIndexAll(job indexAllJob) (*models.Report, error) {
	type dispatched struct {
		indexer string
		task    *task.Task[*models.Report]
	}
	var subtasks []dispatched

	for _, x := range job.indexers() {
		if !x.Handles(job.uri) {
			continue
		}
		streams, err := job.storage.At(job.uri)
		if err != nil {
			return nil, fmt.Errorf("storage %s at %s: %w", job.storage.Name(), job.uri, err)
		}
		name := x.Name()
		t := x.Index(streams)
		if t == nil {
			t = task.Failed[*models.Report]("index:"+name, fmt.Errorf("indexer %s returned no task", name))
		}
		if job.onDone != nil {
			t.OnCompletion(func(done *task.Task[*models.Report]) { job.onDone(name, done) })
		}
		job.submit(t)
		subtasks = append(subtasks, dispatched{indexer: name, task: t})
	}

	merged := models.NewReport(nil)
	for _, d := range subtasks {
		r, err := d.task.Get()
		if err != nil {
			return nil, fmt.Errorf("indexer %s: %w", d.indexer, err)
		}
		merged.AddChild(r)
	}
	return merged, nil
}

// BuildIndexAllTask returns an unsubmitted task indexing uri with every
// enabled indexer that handles it. Without a storage provider for uri the
// task is already Failed with ErrNoStorage.
func (c *Controller) BuildIndexAllTask(uri *url.URL) *task.Task[*models.Report] {
	name := fmt.Sprintf("index all -> %s", uri)
	storage, ok := c.registry.StorageFor(uri)
	if !ok {
		return task.Failed[*models.Report](name, fmt.Errorf("%w: %s", ErrNoStorage, uri))
	}

	job := indexAllJob{
		uri:     uri,
		storage: storage,
		indexers: func() []plugin.Indexer {
			return c.registry.Indexers(true)
		},
		submit: c.submitReport,
		onDone: func(indexer string, t *task.Task[*models.Report]) {
			logTaskOutcome("index", t)
			c.events.Emit(Event{
				Type:     EventIndexFinished,
				TaskID:   t.ID(),
				TaskName: t.Name(),
				Provider: indexer,
				URI:      uri.String(),
				Error:    t.Err(),
			})
		},
	}
	return task.New(name, func() (*models.Report, error) {
		return runIndexAll(job)
	})
}

// DispatchIndexAll submits an index-all task for uri.
func (c *Controller) DispatchIndexAll(uri *url.URL) *task.Task[*models.Report] {
	t := c.BuildIndexAllTask(uri)
	c.submitReport(t)
	return t
}

// BuildIndexTask returns the named indexer's task for uri.
//
// The result is already terminal when no storage handles uri (Failed with
// ErrNoStorage), when no enabled indexer is named name (Failed with a
// lookup error listing known indexers), or when the indexer does not handle
// uri (Completed with an error report).
func (c *Controller) BuildIndexTask(name string, uri *url.URL) *task.Task[*models.Report] {
	taskName := fmt.Sprintf("index:%s -> %s", name, uri)
	storage, ok := c.registry.StorageFor(uri)
	if !ok {
		return task.Failed[*models.Report](taskName, fmt.Errorf("%w: %s", ErrNoStorage, uri))
	}
	x, ok := c.registry.IndexerByName(name, true)
	if !ok {
		return task.Failed[*models.Report](taskName, c.registry.NotFound(models.KindIndexer, name))
	}
	if !x.Handles(uri) {
		msg := fmt.Errorf("%s: %w by %s", uri, ErrPathNotHandled, x.Name()).Error()
		return task.Completed(taskName, models.ErrorReport(msg))
	}
	streams, err := storage.At(uri)
	if err != nil {
		return task.Failed[*models.Report](taskName, fmt.Errorf("storage %s at %s: %w", storage.Name(), uri, err))
	}
	t := x.Index(streams)
	if t == nil {
		return task.Failed[*models.Report](taskName, fmt.Errorf("indexer %s returned no task", x.Name()))
	}
	t.OnCompletion(func(done *task.Task[*models.Report]) {
		logTaskOutcome("index", done)
		c.events.Emit(Event{
			Type:     EventIndexFinished,
			TaskID:   done.ID(),
			TaskName: done.Name(),
			Provider: x.Name(),
			URI:      uri.String(),
			Error:    done.Err(),
		})
	})
	return t
}

// DispatchIndex submits the named indexer's task for uri. Terminal tasks
// are returned without being submitted.
func (c *Controller) DispatchIndex(name string, uri *url.URL) *task.Task[*models.Report] {
	t := c.BuildIndexTask(name, uri)
	if t.State() != models.TaskStatePending {
		log.Printf("[index] %s: %s", t.Name(), t.State())
	}
	c.submitReport(t)
	return t
}
