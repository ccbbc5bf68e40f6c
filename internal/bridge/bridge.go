// Package bridge hands blocking callers a way to run device operations
// on a single shared background worker. HTTP handlers each block on
// their own call while the worker drains operations one at a time, so
// two requests never drive overlapping transport sessions.
package bridge

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrStopped is returned by Do once the bridge has been stopped.
var ErrStopped = errors.New("bridge: stopped")

// Op is one device operation. It receives the submitting caller's
// context and closes over its own result values.
type Op func(ctx context.Context) error

// Options configures a Bridge.
type Options struct {
	QueueSize int // pending operations before Do blocks on enqueue
}

// Bridge owns the worker goroutine. Construct with New, then Start;
// it is injectable so tests can run against a started instance and
// production wiring owns exactly one for the process lifetime.
type Bridge struct {
	log   *zap.Logger
	tasks chan task
	stop  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

type task struct {
	ctx    context.Context
	op     Op
	result chan error
}

// New creates a stopped Bridge.
func New(log *zap.Logger, opts Options) *Bridge {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		log:   log,
		tasks: make(chan task, opts.QueueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine. Starting twice, or after Stop,
// is a no-op.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started || b.stopped {
		return
	}
	b.started = true
	go b.run()
}

// Stop shuts the worker down and waits for it. The operation in flight
// finishes; queued operations resolve with ErrStopped so no caller is
// left hanging. Safe to call on a never-started bridge and safe to
// call more than once.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.stopped {
		b.stopped = true
		close(b.stop)
		if !b.started {
			// No worker ever ran; resolve queued work here.
			b.drain()
			close(b.done)
		}
	}
	b.mu.Unlock()
	<-b.done
}

// Do submits op and blocks until it completes. Submission order is
// preserved: the worker executes operations FIFO, one at a time, which
// also serializes access to any single device. If ctx expires while op
// is queued or running, Do returns ctx.Err() and the operation still
// runs to completion on the worker; only the caller stops waiting.
func (b *Bridge) Do(ctx context.Context, op Op) error {
	t := task{ctx: ctx, op: op, result: make(chan error, 1)}

	select {
	case b.tasks <- t:
	case <-b.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		b.log.Debug("caller abandoned pending operation", zap.Error(ctx.Err()))
		return ctx.Err()
	case <-b.done:
		// The worker exited while the task sat queued. A result may
		// still have raced in just before shutdown; prefer it.
		select {
		case err := <-t.result:
			return err
		default:
			return ErrStopped
		}
	}
}

func (b *Bridge) run() {
	defer close(b.done)
	for {
		select {
		case t := <-b.tasks:
			t.result <- b.exec(t)
		case <-b.stop:
			b.drain()
			return
		}
	}
}

func (b *Bridge) exec(t task) error {
	if err := t.ctx.Err(); err != nil {
		// Caller gave up while the task was queued; nothing to do.
		return err
	}
	return t.op(t.ctx)
}

// drain resolves tasks that were queued behind the stop signal.
func (b *Bridge) drain() {
	for {
		select {
		case t := <-b.tasks:
			t.result <- ErrStopped
		default:
			return
		}
	}
}
