package watch

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

type recorder struct {
	mu        sync.Mutex
	indexed   []string
	unindexed []string
}

func (r *recorder) DispatchIndexAll(uri *url.URL) *task.Task[*models.Report] {
	r.mu.Lock()
	r.indexed = append(r.indexed, uri.Path)
	r.mu.Unlock()
	return task.Completed("index all -> "+uri.String(), models.NewReport(nil))
}

func (r *recorder) Unindex(uri *url.URL) {
	r.mu.Lock()
	r.unindexed = append(r.unindexed, uri.Path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.indexed...), append([]string(nil), r.unindexed...)
}

func contains(list []string, suffix string) bool {
	for _, s := range list {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-tick.C:
		}
	}
}

func startWatcher(t *testing.T, dir string, rec *recorder, opts Options) *Watcher {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}
	w, err := New(rec, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func TestWatcher_IndexesWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	var indexedCalls sync.WaitGroup
	indexedCalls.Add(1)
	var once sync.Once
	startWatcher(t, dir, rec, Options{OnIndexed: func(*url.URL, *models.Report, error) {
		once.Do(indexedCalls.Done)
	}})

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "index of a.txt", func() bool {
		idx, _ := rec.snapshot()
		return contains(idx, "/a.txt")
	})
	indexedCalls.Wait()
}

func TestWatcher_UnindexesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, dir, rec, Options{})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "unindex of gone.txt", func() bool {
		_, un := rec.snapshot()
		return contains(un, "/gone.txt")
	})
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, dir, rec, Options{})

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "sub to be watched", func() bool {
		for _, p := range w.WatchList() {
			if p == sub {
				return true
			}
		}
		return false
	})

	if err := os.WriteFile(filepath.Join(sub, "b.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "index of sub/b.txt", func() bool {
		idx, _ := rec.snapshot()
		return contains(idx, "/sub/b.txt")
	})
}

func TestAdd_SkipsIgnoredAndRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(&recorder{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, p := range w.WatchList() {
		if strings.Contains(p, ".git") {
			t.Errorf("ignored directory watched: %s", p)
		}
	}
	if err := w.Add(file); err == nil {
		t.Error("Add(file) should fail")
	}
}

func TestAdd_PathPatternsRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"build/out", "src/build"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(&recorder{}, Options{Ignore: []string{"build/**"}})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}
	var sawNested bool
	for _, p := range w.WatchList() {
		if p == filepath.Join(dir, "build") || p == filepath.Join(dir, "build", "out") {
			t.Errorf("ignored directory watched: %s", p)
		}
		if p == filepath.Join(dir, "src", "build") {
			sawNested = true
		}
	}
	if !sawNested {
		t.Error("src/build should still be watched")
	}
}
