// Package task provides deferred, single-result units of work and the
// bounded worker pool that executes them.
//
// A [Task] starts Pending, is driven to Running and then to Completed or
// Failed by whoever calls [Task.Run] (normally a [Manager] worker). Callers
// block on [Task.Get] or register [Task.OnCompletion] callbacks.
//
// Tasks may submit further tasks from inside their body and then Get them.
// This is safe as long as the pool has more workers than the nesting depth;
// there is no work stealing. The default pool size of 4 covers the fan-out
// patterns used by the orchestrator (one composite plus its children).
//
// Example usage:
//
//	mgr := task.NewManager(4)
//	defer mgr.Shutdown(context.Background())
//
//	t := task.New("answer", func() (int, error) { return 42, nil })
//	mgr.Submit(t)
//	v, err := t.Get()
package task
