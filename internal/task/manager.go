package task

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// ErrManagerClosed is the failure given to tasks submitted after Shutdown.
var ErrManagerClosed = errors.New("task manager is shut down")

// Stats is a point-in-time snapshot of the pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Queued    int
}

// Manager is a fixed-size pool of workers executing submitted tasks in FIFO
// order. The queue is unbounded so that task bodies running on a worker can
// submit children without blocking.
type Manager struct {
	workers int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Runnable
	closed bool

	submitted atomic.Uint64
	completed atomic.Uint64

	// wg tracks running workers
	wg sync.WaitGroup
}

// NewManager starts a pool with the given number of workers.
// Non-positive values use DefaultWorkers.
func NewManager(workers int) *Manager {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	m := &Manager{workers: workers}
	m.cond = sync.NewCond(&m.mu)

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.work()
	}
	return m
}

// Workers returns the pool size.
func (m *Manager) Workers() int { return m.workers }

// Submit enqueues r and returns immediately. Tasks that are already terminal
// are ignored. After Shutdown, r is rejected with ErrManagerClosed.
func (m *Manager) Submit(r Runnable) {
	if r == nil || r.State().Terminal() {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		log.Printf("[pool] rejecting %s (%s): pool closed", r.ID(), r.Name())
		r.Reject(ErrManagerClosed)
		return
	}
	m.queue = append(m.queue, r)
	m.mu.Unlock()

	m.submitted.Add(1)
	m.cond.Signal()
}

// work is the worker loop. It exits once the pool is closed and drained.
func (m *Manager) work() {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		r := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.mu.Unlock()

		r.Run()
		m.completed.Add(1)
	}
}

// Stats returns a snapshot of the pool counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	queued := len(m.queue)
	m.mu.Unlock()
	return Stats{
		Workers:   m.workers,
		Submitted: m.submitted.Load(),
		Completed: m.completed.Load(),
		Queued:    queued,
	}
}

// Shutdown stops accepting tasks, lets workers drain the queue and waits
// for them to exit or for ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
