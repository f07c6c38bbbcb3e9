// Package worker runs fire-and-forget background tasks on a bounded set of
// goroutines.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"NewsVerifier/internal/logging"
)

// A task's context is cancelled when the pool is closed without finishing its
// drain.
type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Pool executes submitted tasks with a fixed number of workers.
type Pool struct {
	size    int
	queue   chan task
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	start   sync.Once
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New creates a pool with the given number of workers and queue capacity.
func New(size, queueSize int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:   size,
		queue:  make(chan task, queueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logging.OrDiscard(logger),
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (p *Pool) Start() {
	p.start.Do(func() {
		for i := 0; i < p.size; i++ {
			p.workers.Add(1)
			go p.loop()
		}
	})
}

// Submit enqueues a task without blocking the caller. When the queue is full the
// task waits for capacity on its own goroutine. It reports false once the pool
// is closed.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) bool {
	if fn == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	t := task{name: name, fn: fn}
	select {
	case p.queue <- t:
		return true
	default:
	}

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		select {
		case p.queue <- t:
		case <-p.ctx.Done():
			p.logger.Warn("background task dropped", "task", name)
		}
	}()
	return true
}

// Close stops accepting tasks and waits for queued ones to finish. If ctx ends
// first, running tasks are cancelled and the context error is returned.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.Start()

	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(p.queue)
		p.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("drain worker pool: %w", ctx.Err())
	}
}

func (p *Pool) loop() {
	defer p.workers.Done()
	for t := range p.queue {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background task panicked", "task", t.name, "panic", r)
		}
	}()

	if err := t.fn(p.ctx); err != nil {
		p.logger.Warn("background task failed", "task", t.name, "error", err)
	}
}
