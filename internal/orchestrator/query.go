package orchestrator

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// queryJob is the input of a single-source query task.
type queryJob struct {
	source string
	text   string
	params models.QueryParams
	lookup func(name string) (plugin.Query, bool)
}

// runQuery executes one query. A source that is not registered, or is
// disabled, yields an empty query report rather than an error.
func runQuery(job queryJob) (*models.Report, error) {
	q, ok := job.lookup(job.source)
	if !ok {
		empty := models.EmptyQueryReport()
		empty.Source = job.source
		return empty, nil
	}
	report, err := q.Query(job.text, job.params)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Name(), err)
	}
	if report == nil {
		report = models.EmptyQueryReport()
	}
	if report.Source == "" {
		report.Source = q.Name()
	}
	return report, nil
}

// fanOutJob is the input of a multi-source query task.
type fanOutJob struct {
	jobs   []queryJob
	build  func(queryJob) *task.Task[*models.Report]
	submit func(*task.Task[*models.Report])
}

// runFanOutQuery submits one task per source, then waits for them in
// submission order so children line up with sources.
func runFanOutQuery(job fanOutJob) (*models.Report, error) {
	subtasks := make([]*task.Task[*models.Report], 0, len(job.jobs))
	for _, j := range job.jobs {
		t := job.build(j)
		job.submit(t)
		subtasks = append(subtasks, t)
	}

	merged := models.NewQueryReport()
	for i, t := range subtasks {
		r, err := t.Get()
		if err != nil {
			return nil, fmt.Errorf("query source %s: %w", job.jobs[i].source, err)
		}
		merged.AddChild(r)
	}
	return merged, nil
}

func (c *Controller) newQueryJob(source, text string, params models.QueryParams) queryJob {
	return queryJob{
		source: source,
		text:   text,
		params: params.WithDefaults(c.defaultLimit),
		lookup: func(name string) (plugin.Query, bool) {
			return c.registry.QueryByName(name, true)
		},
	}
}

func queryTask(job queryJob) *task.Task[*models.Report] {
	return task.New(fmt.Sprintf("query:%s -> %s", job.source, job.text), func() (*models.Report, error) {
		return runQuery(job)
	})
}

// BuildQueryTask returns an unsubmitted task querying source.
func (c *Controller) BuildQueryTask(source, text string, params models.QueryParams) *task.Task[*models.Report] {
	return queryTask(c.newQueryJob(source, text, params))
}

// DispatchQuery submits a query against a single source.
func (c *Controller) DispatchQuery(source, text string, params models.QueryParams) *task.Task[*models.Report] {
	t := c.BuildQueryTask(source, text, params)
	c.submitReport(t)
	return t
}

// BuildMultiQueryTask returns an unsubmitted task that queries every source
// and merges the results in the order of sources. A source appearing twice
// is queried twice.
func (c *Controller) BuildMultiQueryTask(sources []string, text string, params models.QueryParams) *task.Task[*models.Report] {
	jobs := make([]queryJob, len(sources))
	for i, s := range sources {
		jobs[i] = c.newQueryJob(s, text, params)
	}
	job := fanOutJob{
		jobs:   jobs,
		build:  queryTask,
		submit: c.submitReport,
	}
	name := fmt.Sprintf("multiple query [%s] -> %s", strings.Join(sources, ","), text)
	return task.New(name, func() (*models.Report, error) {
		return runFanOutQuery(job)
	})
}

// DispatchQueryMany submits a fan-out query over sources.
func (c *Controller) DispatchQueryMany(sources []string, text string, params models.QueryParams) *task.Task[*models.Report] {
	t := c.BuildMultiQueryTask(sources, text, params)
	c.submitReport(t)
	return t
}

// DispatchQueryAll fans out to every enabled query provider.
func (c *Controller) DispatchQueryAll(text string, params models.QueryParams) *task.Task[*models.Report] {
	return c.DispatchQueryMany(c.registry.Names(models.KindQuery, true), text, params)
}
