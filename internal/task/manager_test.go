package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

// newTestManager creates a manager that is shut down when the test ends.
func newTestManager(t *testing.T, workers int) *Manager {
	t.Helper()
	m := NewManager(workers)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return m
}

func TestNewManager_DefaultWorkers(t *testing.T) {
	m := newTestManager(t, 0)
	if m.Workers() != DefaultWorkers {
		t.Errorf("Workers() = %d, want %d", m.Workers(), DefaultWorkers)
	}
}

func TestManager_SubmitRuns(t *testing.T) {
	m := newTestManager(t, 2)
	tk := New("run", func() (int, error) { return 9, nil })
	m.Submit(tk)

	v, err := tk.Get()
	if err != nil || v != 9 {
		t.Fatalf("Get() = %d, %v", v, err)
	}
}

func TestManager_WorkerSurvivesCallbackPanic(t *testing.T) {
	m := newTestManager(t, 1)
	first := New("first", func() (int, error) { return 1, nil })
	first.OnCompletion(func(*Task[int]) { panic("hook failed") })
	m.Submit(first)

	second := New("second", func() (int, error) { return 2, nil })
	m.Submit(second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if v, err := second.Wait(ctx); err != nil || v != 2 {
		t.Fatalf("second task after a panicking callback: %d, %v", v, err)
	}
}

func TestManager_NoStarvation(t *testing.T) {
	const workers, tasks = 2, 50
	m := newTestManager(t, workers)

	var running, peak atomic.Int32
	all := make([]*Task[int], tasks)
	callbacks := make([]atomic.Int32, tasks)

	for i := 0; i < tasks; i++ {
		i := i
		all[i] = New("n", func() (int, error) {
			cur := running.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			return i, nil
		})
		all[i].OnCompletion(func(*Task[int]) { callbacks[i].Add(1) })
		m.Submit(all[i])
	}

	for i, tk := range all {
		select {
		case <-tk.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("task %d never reached a terminal state", i)
		}
		if v, _ := tk.Get(); v != i {
			t.Errorf("task %d returned %d", i, v)
		}
	}

	// Callbacks run after done is closed; give them a moment.
	deadline := time.Now().Add(time.Second)
	for i := range callbacks {
		for callbacks[i].Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if n := callbacks[i].Load(); n != 1 {
			t.Errorf("task %d completion callback fired %d times, want 1", i, n)
		}
	}

	if peak.Load() > workers {
		t.Errorf("observed %d concurrent bodies with %d workers", peak.Load(), workers)
	}
}

func TestManager_NestedSubmit(t *testing.T) {
	m := newTestManager(t, 2)

	parent := New("parent", func() (int, error) {
		child := New("child", func() (int, error) { return 21, nil })
		m.Submit(child)
		v, err := child.Get()
		return v * 2, err
	})
	m.Submit(parent)

	select {
	case <-parent.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("parent did not complete")
	}
	if v, err := parent.Get(); err != nil || v != 42 {
		t.Errorf("Get() = %d, %v", v, err)
	}
}

func TestManager_IgnoresTerminalTasks(t *testing.T) {
	m := newTestManager(t, 1)
	m.Submit(Failed[int]("pre", errors.New("x")))
	m.Submit(Completed("pre", 1))

	if s := m.Stats(); s.Submitted != 0 {
		t.Errorf("Submitted = %d, want 0 for terminal tasks", s.Submitted)
	}
}

func TestManager_SubmitAfterShutdown(t *testing.T) {
	m := NewManager(1)
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	tk := New("late", func() (int, error) { return 1, nil })
	m.Submit(tk)

	if _, err := tk.Get(); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Get() error = %v, want ErrManagerClosed", err)
	}
	if tk.State() != models.TaskStateFailed {
		t.Errorf("State() = %q, want failed", tk.State())
	}
}

func TestManager_ShutdownDrainsQueue(t *testing.T) {
	m := NewManager(1)
	var ran atomic.Int32
	var tasks []*Task[int]
	for i := 0; i < 5; i++ {
		tk := New("drain", func() (int, error) {
			ran.Add(1)
			return 0, nil
		})
		tasks = append(tasks, tk)
		m.Submit(tk)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if ran.Load() != 5 {
		t.Errorf("ran %d tasks before shutdown, want 5", ran.Load())
	}
}

func TestManager_ShutdownTimeout(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	m.Submit(New("blocker", func() (int, error) {
		<-release
		return 0, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
	close(release)
}

func TestManager_ConcurrentSubmit(t *testing.T) {
	m := newTestManager(t, 4)
	var wg sync.WaitGroup
	var sum atomic.Int64

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				tk := New("c", func() (int, error) { return 1, nil })
				m.Submit(tk)
				v, _ := tk.Get()
				sum.Add(int64(v))
			}
		}()
	}
	wg.Wait()

	if sum.Load() != 200 {
		t.Errorf("sum = %d, want 200", sum.Load())
	}
	if s := m.Stats(); s.Submitted != 200 {
		t.Errorf("Submitted = %d, want 200", s.Submitted)
	}
}
