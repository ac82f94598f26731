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

func TestNew_StartsPending(t *testing.T) {
	tk := New("pending", func() (int, error) { return 1, nil })

	if tk.State() != models.TaskStatePending {
		t.Errorf("State() = %q, want pending", tk.State())
	}
	if tk.ID() == "" {
		t.Error("ID should not be empty")
	}
	if tk.Name() != "pending" {
		t.Errorf("Name() = %q, want pending", tk.Name())
	}
	select {
	case <-tk.Done():
		t.Error("Done should not be closed before Run")
	default:
	}
}

func TestRun_Completes(t *testing.T) {
	tk := New("ok", func() (string, error) { return "hello", nil })
	tk.Run()

	got, err := tk.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Get() = %q, want hello", got)
	}
	if tk.State() != models.TaskStateCompleted {
		t.Errorf("State() = %q, want completed", tk.State())
	}
}

func TestRun_Fails(t *testing.T) {
	want := errors.New("provider exploded")
	tk := New("bad", func() (int, error) { return 0, want })
	tk.Run()

	_, err := tk.Get()
	if !errors.Is(err, want) {
		t.Fatalf("Get() error = %v, want %v", err, want)
	}
	if tk.State() != models.TaskStateFailed {
		t.Errorf("State() = %q, want failed", tk.State())
	}
	if !errors.Is(tk.Err(), want) {
		t.Errorf("Err() = %v", tk.Err())
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	tk := New("panics", func() (int, error) { panic("kaboom") })
	tk.Run()

	_, err := tk.Get()
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Get() error = %v, want *PanicError", err)
	}
	if pe.Value != "kaboom" {
		t.Errorf("PanicError.Value = %v", pe.Value)
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	var calls atomic.Int32
	tk := New("once", func() (int, error) { return int(calls.Add(1)), nil })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk.Run()
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("body ran %d times, want 1", calls.Load())
	}
}

func TestNilBody_CompletesWithZero(t *testing.T) {
	tk := New[*models.Report]("nil body", nil)
	tk.Run()
	got, err := tk.Get()
	if err != nil || got != nil {
		t.Errorf("Get() = %v, %v; want nil, nil", got, err)
	}
}

func TestFailed_IsTerminalWithoutRunning(t *testing.T) {
	want := errors.New("no storage")
	tk := Failed[int]("prebuilt", want)

	if tk.State() != models.TaskStateFailed {
		t.Fatalf("State() = %q, want failed", tk.State())
	}
	_, err := tk.Get()
	if !errors.Is(err, want) {
		t.Errorf("Get() error = %v", err)
	}

	// Run must not resurrect it.
	tk.Run()
	if tk.State() != models.TaskStateFailed {
		t.Errorf("Run changed state of a failed task to %q", tk.State())
	}
}

func TestCompleted_IsTerminal(t *testing.T) {
	tk := Completed("prebuilt", 7)
	got, err := tk.Get()
	if err != nil || got != 7 {
		t.Errorf("Get() = %d, %v", got, err)
	}
}

func TestGet_BlocksUntilTerminal(t *testing.T) {
	release := make(chan struct{})
	tk := New("slow", func() (int, error) {
		<-release
		return 3, nil
	})
	go tk.Run()

	got := make(chan int, 1)
	go func() {
		v, _ := tk.Get()
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("Get returned before the task finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case v := <-got:
		if v != 3 {
			t.Errorf("Get() = %d, want 3", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not return after completion")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	tk := New("never", func() (int, error) { return 0, nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tk.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
	if tk.State() != models.TaskStatePending {
		t.Errorf("Wait must not change task state, got %q", tk.State())
	}
}

func TestOnCompletion_FiresOnceAfterResult(t *testing.T) {
	tk := New("cb", func() (int, error) { return 5, nil })

	var fired atomic.Int32
	var seen int
	tk.OnCompletion(func(done *Task[int]) {
		fired.Add(1)
		seen, _ = done.Get()
	})
	tk.Run()
	tk.Run()

	if fired.Load() != 1 {
		t.Errorf("callback fired %d times, want 1", fired.Load())
	}
	if seen != 5 {
		t.Errorf("callback saw result %d, want 5", seen)
	}
}

func TestOnCompletion_AlreadyTerminalFiresImmediately(t *testing.T) {
	tk := Failed[int]("done", errors.New("x"))

	fired := false
	tk.OnCompletion(func(*Task[int]) { fired = true })
	if !fired {
		t.Error("callback on a terminal task should fire immediately")
	}
}

func TestOnCompletion_RegistrationOrder(t *testing.T) {
	tk := New("order", func() (int, error) { return 0, nil })
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		tk.OnCompletion(func(*Task[int]) { order = append(order, i) })
	}
	tk.Run()

	for i, v := range order {
		if v != i {
			t.Fatalf("callbacks ran in order %v", order)
		}
	}
}

func TestOnCompletion_PanickingCallbackIsContained(t *testing.T) {
	tk := New("cb", func() (int, error) { return 5, nil })
	var after bool
	tk.OnCompletion(func(*Task[int]) { panic("callback bug") })
	tk.OnCompletion(func(*Task[int]) { after = true })

	tk.Run()

	if !after {
		t.Error("callback after a panicking one should still run")
	}
	if v, err := tk.Get(); err != nil || v != 5 {
		t.Errorf("Get() = %d, %v; a callback panic must not change the outcome", v, err)
	}

	done := Completed("done", 1)
	done.OnCompletion(func(*Task[int]) { panic("late callback bug") })
}

func TestReject(t *testing.T) {
	tk := New("rejected", func() (int, error) {
		t.Error("body must not run")
		return 0, nil
	})
	tk.Reject(ErrManagerClosed)

	if _, err := tk.Get(); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Get() error = %v, want ErrManagerClosed", err)
	}
	tk.Run()
}
