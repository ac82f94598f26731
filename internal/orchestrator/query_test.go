package orchestrator

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/plugin/plugintest"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

func childSources(r *models.Report) []string {
	out := make([]string, 0, r.Len())
	for _, c := range r.Children {
		out = append(out, c.Source)
	}
	return out
}

func TestDispatchQueryMany_OrderFollowsSources(t *testing.T) {
	slow, fast, mid := plugintest.NewQuery("slow"), plugintest.NewQuery("fast"), plugintest.NewQuery("mid")
	slow.Delay = 80 * time.Millisecond
	mid.Delay = 30 * time.Millisecond
	c := newTestController(t, 4, groups(plugintest.Group("G", slow, fast, mid)))

	report := getReport(t, c.DispatchQueryMany([]string{"slow", "fast", "mid"}, "x", models.QueryParams{}))

	if !report.Query {
		t.Error("merged report should be a query report")
	}
	got := childSources(report)
	want := []string{"slow", "fast", "mid"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("children = %v, want %v", got, want)
	}
	if !fast.FinishedAt().Before(slow.FinishedAt()) {
		t.Error("expected fast to finish before slow")
	}
}

func TestDispatchQueryMany_UnknownSourceYieldsEmptyChild(t *testing.T) {
	q := plugintest.NewQuery("fts")
	c := newTestController(t, 2, groups(plugintest.Group("G", q)))

	report := getReport(t, c.DispatchQueryMany([]string{"fts", "lucene"}, "x", models.QueryParams{}))

	if report.Len() != 2 {
		t.Fatalf("children = %d, want 2", report.Len())
	}
	missing := report.Children[1]
	if !missing.IsEmpty() || missing.IsError() {
		t.Errorf("missing source child = %+v, want empty", missing)
	}
	if missing.Source != "lucene" {
		t.Errorf("missing child source = %q", missing.Source)
	}
}

func TestDispatchQueryMany_DisabledSourceYieldsEmptyChild(t *testing.T) {
	q := plugintest.NewQuery("fts")
	q.SetEnabled(false)
	c := newTestController(t, 2, groups(plugintest.Group("G", q)))

	report := getReport(t, c.DispatchQueryMany([]string{"fts"}, "x", models.QueryParams{}))
	if report.Len() != 1 || !report.Children[0].IsEmpty() {
		t.Errorf("report = %+v", report)
	}
	if q.Calls.Load() != 0 {
		t.Error("disabled provider must not be queried")
	}
}

func TestDispatchQueryMany_EmptySources(t *testing.T) {
	c := newTestController(t, 1, nil)
	report := getReport(t, c.DispatchQueryMany(nil, "x", models.QueryParams{}))
	if report.Len() != 0 || !report.Query {
		t.Errorf("report = %+v, want empty query report", report)
	}
}

func TestDispatchQueryMany_DuplicateSourcesQueriedTwice(t *testing.T) {
	q := plugintest.NewQuery("fts")
	c := newTestController(t, 2, groups(plugintest.Group("G", q)))

	report := getReport(t, c.DispatchQueryMany([]string{"fts", "FTS"}, "x", models.QueryParams{}))
	if report.Len() != 2 {
		t.Errorf("children = %d, want 2", report.Len())
	}
	if q.Calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", q.Calls.Load())
	}
}

func TestDispatchQuery_CaseInsensitiveFirstWins(t *testing.T) {
	first, second := plugintest.NewQuery("Dup"), plugintest.NewQuery("dup")
	c := newTestController(t, 2, groups(
		plugintest.Group("A", first),
		plugintest.Group("B", second),
	))

	report := getReport(t, c.DispatchQuery("DUP", "x", models.QueryParams{}))
	if report.Source != "Dup" {
		t.Errorf("source = %q, want Dup", report.Source)
	}
	if first.Calls.Load() != 1 || second.Calls.Load() != 0 {
		t.Errorf("calls first=%d second=%d", first.Calls.Load(), second.Calls.Load())
	}
}

func TestDispatchQuery_ProviderErrorFailsTask(t *testing.T) {
	q := plugintest.NewQuery("fts")
	q.Err = plugintest.ErrBoom
	c := newTestController(t, 2, groups(plugintest.Group("G", q)))

	_, err := c.DispatchQuery("fts", "x", models.QueryParams{}).Get()
	if !errors.Is(err, plugintest.ErrBoom) {
		t.Errorf("err = %v, want ErrBoom", err)
	}

	_, err = c.DispatchQueryMany([]string{"fts"}, "x", models.QueryParams{}).Get()
	if !errors.Is(err, plugintest.ErrBoom) {
		t.Errorf("fan-out err = %v, want ErrBoom", err)
	}
}

func TestDispatchQuery_NilReportNormalized(t *testing.T) {
	q := plugintest.NewQuery("fts")
	q.Nil = true
	c := newTestController(t, 1, groups(plugintest.Group("G", q)))

	report := getReport(t, c.DispatchQuery("fts", "x", models.QueryParams{}))
	if report == nil || !report.Query || report.Source != "fts" {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchQueryAll_SkipsDisabled(t *testing.T) {
	a, b, d := plugintest.NewQuery("a"), plugintest.NewQuery("b"), plugintest.NewQuery("d")
	b.SetEnabled(false)
	c := newTestController(t, 3, groups(plugintest.Group("G", a, b, d)))

	report := getReport(t, c.DispatchQueryAll("x", models.QueryParams{}))
	if got := fmt.Sprint(childSources(report)); got != "[a d]" {
		t.Errorf("children = %s, want [a d]", got)
	}
}

func TestDispatchQueryMany_SmallPool(t *testing.T) {
	var providers []plugin.Provider
	var sources []string
	for i := 0; i < 8; i++ {
		q := plugintest.NewQuery(fmt.Sprintf("q%d", i))
		q.Delay = 5 * time.Millisecond
		providers = append(providers, q)
		sources = append(sources, q.Name())
	}
	c := newTestController(t, 2, groups(plugintest.Group("G", providers...)))

	report := getReport(t, c.DispatchQueryMany(sources, "x", models.QueryParams{}))
	if report.Len() != len(sources) {
		t.Errorf("children = %d, want %d", report.Len(), len(sources))
	}
}

// paramsQuery records the params it receives.
type paramsQuery struct {
	*plugin.Toggle
	mu  sync.Mutex
	got models.QueryParams
}

func (q *paramsQuery) Query(_ string, params models.QueryParams) (*models.Report, error) {
	q.mu.Lock()
	q.got = params
	q.mu.Unlock()
	return models.EmptyQueryReport(), nil
}

func TestDispatchQuery_DefaultLimit(t *testing.T) {
	q := &paramsQuery{Toggle: plugin.NewToggle("p")}
	c := newTestController(t, 1, groups(plugintest.Group("G", q)), WithDefaultLimit(7))

	for _, tc := range []struct {
		in, want int
	}{
		{in: 0, want: 7},
		{in: 3, want: 3},
	} {
		getReport(t, c.DispatchQuery("p", "x", models.QueryParams{Limit: tc.in}))
		q.mu.Lock()
		got := q.got.Limit
		q.mu.Unlock()
		if got != tc.want {
			t.Errorf("limit %d -> %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuildQueryTask_NotSubmitted(t *testing.T) {
	q := plugintest.NewQuery("fts")
	c := newTestController(t, 1, groups(plugintest.Group("G", q)))

	tk := c.BuildQueryTask("fts", "x", models.QueryParams{})
	time.Sleep(20 * time.Millisecond)
	if tk.State() != models.TaskStatePending {
		t.Fatalf("state = %s, want pending", tk.State())
	}
	tk.Run()
	if r, err := tk.Get(); err != nil || r.Source != "fts" {
		t.Errorf("inline run = %+v, %v", r, err)
	}
}

func TestRunFanOutQuery_InlineSubmit(t *testing.T) {
	lookup := func(name string) (plugin.Query, bool) {
		if name == "known" {
			return plugintest.NewQuery("known"), true
		}
		return nil, false
	}
	job := fanOutJob{
		jobs: []queryJob{
			{source: "known", text: "a", lookup: lookup},
			{source: "unknown", text: "a", lookup: lookup},
		},
		build:  queryTask,
		submit: func(t *task.Task[*models.Report]) { t.Run() },
	}

	report, err := runFanOutQuery(job)
	if err != nil {
		t.Fatalf("runFanOutQuery: %v", err)
	}
	if got := fmt.Sprint(childSources(report)); got != "[known unknown]" {
		t.Errorf("children = %s", got)
	}
}
