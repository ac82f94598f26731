package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/plugin/plugintest"
	"github.com/ShayCichocki/switchyard/internal/registry"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

func newTestController(t *testing.T, workers int, groups []plugin.Group, opts ...Option) *Controller {
	t.Helper()
	c := New(RequiredConfig{Registry: registry.New(groups...), Tasks: task.NewManager(workers)}, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func groups(gs ...plugin.Group) []plugin.Group { return gs }

func getReport(t *testing.T, tk *task.Task[*models.Report]) *models.Report {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := tk.Wait(ctx)
	if err != nil {
		t.Fatalf("task %s: %v", tk.Name(), err)
	}
	return r
}

func TestNew_AttachesPlatform(t *testing.T) {
	var got plugin.Platform
	g := plugintest.Group("G", plugintest.NewQuery("q"))
	g.Ext.Platform = func(p plugin.Platform) { got = p }

	newTestController(t, 2, groups(g))
	if got == nil {
		t.Fatal("platform hook was not called")
	}

	report := getReport(t, got.DispatchQuery([]string{"q"}, "hi", models.QueryParams{}))
	if report.Len() != 1 || report.Children[0].Source != "q" {
		t.Errorf("platform query report = %+v", report)
	}
	if _, ok := got.StorageFor(plugintest.MustURI("file:///x")); ok {
		t.Error("no storage registered, StorageFor should miss")
	}
}

func TestShutdown_RunsGroupHooks(t *testing.T) {
	called := false
	g := plugintest.Group("G")
	g.Ext.Shutdown = func() error { called = true; return nil }

	c := New(RequiredConfig{Registry: registry.New(g), Tasks: task.NewManager(1)})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !called {
		t.Error("shutdown hook not called")
	}
}

func TestListProviders(t *testing.T) {
	a, b := plugintest.NewIndexer("a"), plugintest.NewIndexer("b")
	b.SetEnabled(false)
	c := newTestController(t, 1, groups(plugintest.Group("G", a, b)))

	if got := c.ListProviders(models.KindIndexer, true); len(got) != 1 || got[0].Name() != "a" {
		t.Errorf("enabled indexers = %v", got)
	}
	if got := c.ProviderNames(models.KindIndexer); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ProviderNames = %v", got)
	}
	if err := c.SetEnabled(models.KindIndexer, "B", true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if !b.Enabled() {
		t.Error("b should be enabled")
	}
}

func TestResolve_DelegatesToStorage(t *testing.T) {
	s := plugintest.NewStorage("mem", "mem")
	s.Content["mem://a"] = []byte("hello")
	c := newTestController(t, 1, groups(plugintest.Group("G", s)))

	streams := c.Resolve(plugintest.MustURI("mem://a"))
	if len(streams) != 1 || streams[0].Size() != 5 {
		t.Errorf("Resolve = %v", streams)
	}
	if got := c.Resolve(plugintest.MustURI("s3://bucket/key")); got == nil || len(got) != 0 {
		t.Errorf("Resolve miss = %v, want empty slice", got)
	}
}

func TestDebugLogger_RecordsSubmissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dispatch.log")
	logger, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}
	defer logger.Close()

	c := newTestController(t, 2, groups(plugintest.Group("G", plugintest.NewQuery("q"))), WithDebugLogger(logger))
	getReport(t, c.DispatchQuery("q", "x", models.QueryParams{}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"] start at=", "] submit task=", `name="query:q -> x"`, "state=running->completed"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}

func TestEvents_SubmittedAndCompleted(t *testing.T) {
	em := NewEventEmitter(64)
	defer em.Close()
	c := newTestController(t, 2, groups(plugintest.Group("G", plugintest.NewQuery("q"))), WithEventEmitter(em))

	getReport(t, c.DispatchQuery("q", "x", models.QueryParams{}))

	seen := map[EventType]bool{}
	deadline := time.After(2 * time.Second)
	for !seen[EventTaskSubmitted] || !seen[EventTaskCompleted] {
		select {
		case ev := <-em.Events():
			seen[ev.Type] = true
			if ev.Timestamp.IsZero() {
				t.Error("event timestamp not set")
			}
		case <-deadline:
			t.Fatalf("events seen = %v", seen)
		}
	}
}
