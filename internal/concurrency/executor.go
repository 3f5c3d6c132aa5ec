// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines from a shared FIFO
// backlog. Wait joins every submitted task; Close drains the backlog and joins
// the workers so no goroutine outlives the executor.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

var _ api.Executor = (*Executor)(nil)

// Executor manages a fixed pool of worker goroutines.
type Executor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog *queue.Queue // of TaskFunc, guarded by mu
	closed  bool

	pending sync.WaitGroup
	workers sync.WaitGroup

	numWorkers int
	pin        bool
	log        *zap.Logger

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panickedTasks  atomic.Int64
	pinnedWorkers  atomic.Int64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithWorkers sets the worker count; values <= 0 mean runtime.NumCPU().
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) { e.numWorkers = n }
}

// WithPinning pins each worker's OS thread to one allowed CPU, round-robin.
func WithPinning(enabled bool) ExecutorOption {
	return func(e *Executor) { e.pin = enabled }
}

// WithLogger sets the logger used for worker diagnostics.
func WithLogger(l *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExecutor starts the workers and returns a ready executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		backlog: queue.New(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.numWorkers <= 0 {
		e.numWorkers = runtime.NumCPU()
	}
	e.cond = sync.NewCond(&e.mu)

	var cpus []int
	if e.pin {
		cpus = AllowedCPUs()
	}
	for i := 0; i < e.numWorkers; i++ {
		cpu := -1
		if len(cpus) > 0 {
			cpu = cpus[i%len(cpus)]
		}
		e.workers.Add(1)
		go e.run(i, cpu)
	}
	return e
}

// Submit enqueues a task, returning ErrExecutorClosed after Close.
// Submit must not race with Wait.
func (e *Executor) Submit(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	e.totalTasks.Add(1)
	e.pending.Add(1)
	e.backlog.Add(TaskFunc(task))
	e.cond.Signal()
	return nil
}

// Wait blocks until every task submitted so far has completed.
func (e *Executor) Wait() {
	e.pending.Wait()
}

// NumWorkers returns the number of worker goroutines.
func (e *Executor) NumWorkers() int {
	return e.numWorkers
}

// Close stops accepting tasks, lets workers drain the backlog and waits for them to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.workers.Wait()
		return
	}
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
	e.workers.Wait()
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	completed := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"panicked_tasks":  e.panickedTasks.Load(),
		"pinned_workers":  e.pinnedWorkers.Load(),
		"num_workers":     int64(e.numWorkers),
	}
}

// run is the main loop for a worker. A pinned worker keeps its OS thread
// locked until it returns, so the runtime discards the thread with its mask.
func (e *Executor) run(id, cpu int) {
	defer e.workers.Done()
	if cpu >= 0 {
		if err := PinCurrentThread(cpu); err != nil {
			e.log.Debug("worker pinning skipped", zap.Int("worker", id), zap.Int("cpu", cpu), zap.Error(err))
		} else {
			e.pinnedWorkers.Add(1)
		}
	}
	for {
		e.mu.Lock()
		for e.backlog.Length() == 0 && !e.closed {
			e.cond.Wait()
		}
		if e.backlog.Length() == 0 {
			e.mu.Unlock()
			return
		}
		task := e.backlog.Remove().(TaskFunc)
		e.mu.Unlock()

		e.execute(id, task)
	}
}

// execute runs the task and updates statistics, recovering from panics.
func (e *Executor) execute(id int, task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			e.panickedTasks.Add(1)
			e.log.Error("task panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
		e.completedTasks.Add(1)
		e.pending.Done()
	}()
	task()
}
