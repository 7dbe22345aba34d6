package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskRunner executes fire-and-forget work (asset cleanup, backlink
// reconciliation) off the request path.
type TaskRunner interface {
	// Submit schedules fn; it must not block the caller beyond queueing.
	Submit(name string, fn func(ctx context.Context))
	// Shutdown stops intake and waits for queued tasks to drain.
	Shutdown(ctx context.Context) error
}

// backgroundRunner is a bounded queue drained by a fixed pool of workers.
// When the queue is full the task runs on the caller instead of being
// dropped; secondary maintenance may be slow but must not be lost silently.
type backgroundRunner struct {
	tasks   chan task
	logger  *slog.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	timeout time.Duration
}

type task struct {
	name string
	fn   func(ctx context.Context)
}

// NewBackgroundRunner starts workers goroutines over a queue of queueSize.
func NewBackgroundRunner(workers, queueSize int, logger *slog.Logger) TaskRunner {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	r := &backgroundRunner{
		tasks:   make(chan task, queueSize),
		logger:  logger,
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

func (r *backgroundRunner) worker() {
	defer r.wg.Done()
	for t := range r.tasks {
		r.run(t)
	}
}

func (r *backgroundRunner) run(t task) {
	// Request contexts are gone by the time a task runs; each task gets its
	// own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("background task panicked", "task", t.name, "panic", rec)
		}
	}()
	t.fn(ctx)
}

func (r *backgroundRunner) Submit(name string, fn func(ctx context.Context)) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("task submitted after shutdown, running inline", "task", name)
		r.run(task{name: name, fn: fn})
		return
	}
	// The lock covers the send so Shutdown cannot close the channel
	// underneath it; the send never blocks thanks to the default branch.
	queued := false
	select {
	case r.tasks <- task{name: name, fn: fn}:
		queued = true
	default:
	}
	r.mu.Unlock()

	if !queued {
		r.logger.Warn("background queue full, running task inline", "task", name)
		r.run(task{name: name, fn: fn})
	}
}

func (r *backgroundRunner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.tasks)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// inlineRunner executes tasks synchronously; used in tests where background
// ordering would make assertions racy.
type inlineRunner struct{}

// NewInlineRunner returns a TaskRunner that runs every task on the caller.
func NewInlineRunner() TaskRunner { return inlineRunner{} }

func (inlineRunner) Submit(_ string, fn func(ctx context.Context)) { fn(context.Background()) }

func (inlineRunner) Shutdown(context.Context) error { return nil }
