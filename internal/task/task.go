package task

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Runnable is the type-erased view of a Task used by the Manager.
type Runnable interface {
	ID() string
	Name() string
	State() models.TaskState
	Run()
	Reject(err error)
}

// PanicError is stored as the failure of a task whose body panicked.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", e.Task, e.Value)
}

// Task is a named deferred computation producing a T.
// It is safe for concurrent use.
type Task[T any] struct {
	id   string
	name string
	body func() (T, error)

	mu        sync.Mutex
	state     models.TaskState
	result    T
	err       error
	callbacks []func(*Task[T])
	done      chan struct{}
}

// New creates a Pending task. A nil body completes with the zero value.
func New[T any](name string, body func() (T, error)) *Task[T] {
	return &Task[T]{
		id:    uuid.New().String()[:8],
		name:  name,
		body:  body,
		state: models.TaskStatePending,
		done:  make(chan struct{}),
	}
}

// Failed returns a task that is already Failed with err. It never runs.
func Failed[T any](name string, err error) *Task[T] {
	t := New[T](name, nil)
	t.state = models.TaskStateFailed
	t.err = err
	close(t.done)
	return t
}

// Completed returns a task that is already Completed with v. It never runs.
func Completed[T any](name string, v T) *Task[T] {
	t := New[T](name, nil)
	t.state = models.TaskStateCompleted
	t.result = v
	close(t.done)
	return t
}

// ID returns the short unique identifier of the task.
func (t *Task[T]) ID() string { return t.id }

// Name returns the diagnostic name of the task.
func (t *Task[T]) Name() string { return t.name }

// State returns the current lifecycle state.
func (t *Task[T]) State() models.TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel closed once the task is terminal.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Run executes the body on the calling goroutine. It does nothing unless
// the task is Pending, so a task runs at most once.
func (t *Task[T]) Run() {
	t.mu.Lock()
	if t.state != models.TaskStatePending {
		t.mu.Unlock()
		return
	}
	t.state = models.TaskStateRunning
	t.mu.Unlock()

	result, err := t.call()
	t.finish(result, err)
}

func (t *Task[T]) call() (result T, err error) {
	if t.body == nil {
		return result, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Task: t.name, Value: r, Stack: debug.Stack()}
		}
	}()
	return t.body()
}

// Reject fails a Pending task without running it.
func (t *Task[T]) Reject(err error) {
	t.mu.Lock()
	if t.state != models.TaskStatePending {
		t.mu.Unlock()
		return
	}
	t.state = models.TaskStateRunning
	t.mu.Unlock()

	var zero T
	t.finish(zero, err)
}

// finish stores the outcome, wakes waiters and runs callbacks. Callbacks are
// detached under the lock so each fires exactly once.
func (t *Task[T]) finish(result T, err error) {
	t.mu.Lock()
	if err != nil {
		t.state = models.TaskStateFailed
		t.err = err
	} else {
		t.state = models.TaskStateCompleted
		t.result = result
	}
	callbacks := t.callbacks
	t.callbacks = nil
	close(t.done)
	t.mu.Unlock()

	for _, cb := range callbacks {
		t.notify(cb)
	}
}

// notify runs one completion callback. A panicking callback is logged and
// does not stop the others or the goroutine that completed the task.
func (t *Task[T]) notify(fn func(*Task[T])) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pool] completion callback of %s panicked: %v\n%s", t.name, r, debug.Stack())
		}
	}()
	fn(t)
}

// Get blocks until the task is terminal and returns its result or error.
func (t *Task[T]) Get() (T, error) {
	<-t.done
	return t.outcome()
}

// Wait is like Get but returns ctx.Err() if ctx ends first. The task itself
// keeps running.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.outcome()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err returns the stored failure, or nil if the task has not failed.
func (t *Task[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task[T]) outcome() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// OnCompletion registers fn to run once the task is terminal. If the task
// is already terminal, fn runs immediately on the calling goroutine;
// otherwise it runs on the goroutine that completes the task.
func (t *Task[T]) OnCompletion(fn func(*Task[T])) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	if !t.state.Terminal() {
		t.callbacks = append(t.callbacks, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.notify(fn)
}

func (t *Task[T]) String() string {
	return fmt.Sprintf("%s[%s] %s", t.id, t.State(), t.name)
}
