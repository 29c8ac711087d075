package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/touka-aoi/skirmish/domain"
)

// Handler processes fight tasks popped by the loop.
type Handler interface {
	Handle(ctx context.Context, task domain.FightTask) error
}

// Source is the blocking side of the fight queue.
type Source interface {
	Pop() (domain.FightTask, bool)
	Shutdown()
}

// Config controls the behaviour of the worker loop.
type Config struct {
	Handler Handler
	Source  Source
	Workers int
	Logger  *slog.Logger
}

// Loop delivers queued fight tasks to the handler on a fixed set of goroutines.
// Workers only exit once the source is shut down and empty.
type Loop struct {
	handler Handler
	source  Source
	workers int
	logger  *slog.Logger

	started atomic.Bool
	stopped atomic.Bool

	handled atomic.Uint64
	done    chan struct{}
}

// New creates a Loop with the supplied configuration.
func New(cfg Config) (*Loop, error) {
	if cfg.Handler == nil {
		return nil, errors.New("loop: handler is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("loop: source is required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		handler: cfg.Handler,
		source:  cfg.Source,
		workers: workers,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start launches the workers. It must be called once.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("loop: start called multiple times")
	}
	var wg sync.WaitGroup
	for i := range l.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.run(ctx, i)
		}()
	}
	go func() {
		wg.Wait()
		close(l.done)
	}()
	return nil
}

// run は ctx のキャンセルでは止まらない。停止は Source の Shutdown で行う。
func (l *Loop) run(ctx context.Context, worker int) {
	for {
		task, ok := l.source.Pop()
		if !ok {
			l.logger.DebugContext(ctx, "loop: source drained, exiting", "worker", worker)
			return
		}
		if err := l.handler.Handle(context.WithoutCancel(ctx), task); err != nil {
			l.logger.WarnContext(ctx, "loop: handler error", "worker", worker, "err", err)
		}
		l.handled.Add(1)
	}
}

// Handled returns the number of tasks processed so far.
func (l *Loop) Handled() uint64 {
	return l.handled.Load()
}

// Stop shuts the source down and waits for the workers to drain it.
func (l *Loop) Stop(ctx context.Context) error {
	if !l.started.Load() {
		return errors.New("loop: not started")
	}
	if !l.stopped.CompareAndSwap(false, true) {
		return errors.New("loop: stop called multiple times")
	}
	l.source.Shutdown()
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainTimeout shuts the source down and waits for completion with the given timeout.
func (l *Loop) DrainTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Stop(ctx)
}
