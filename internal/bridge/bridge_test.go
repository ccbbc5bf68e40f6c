package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStarted(t *testing.T) *Bridge {
	t.Helper()
	b := New(zap.NewNop(), Options{})
	b.Start()
	t.Cleanup(b.Stop)
	return b
}

func TestDoReturnsOpResult(t *testing.T) {
	b := newStarted(t)

	var got int
	err := b.Do(context.Background(), func(ctx context.Context) error {
		got = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	wantErr := errors.New("device unreachable")
	err = b.Do(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestDoSerializesOperations(t *testing.T) {
	b := newStarted(t)

	var inFlight, overlaps atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Do(context.Background(), func(ctx context.Context) error {
				if inFlight.Add(1) > 1 {
					overlaps.Add(1)
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load(), "operations overlapped on the worker")
}

func TestDoPreservesSubmissionOrder(t *testing.T) {
	b := New(zap.NewNop(), Options{QueueSize: 8})

	// Enqueue before starting the worker so order is fully determined.
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = b.Do(context.Background(), func(ctx context.Context) error {
				order = append(order, n)
				return nil
			})
		}(i)
		// Give each goroutine time to enqueue before the next.
		time.Sleep(5 * time.Millisecond)
	}

	b.Start()
	wg.Wait()
	b.Stop()

	require.Len(t, order, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDoAfterStop(t *testing.T) {
	b := New(zap.NewNop(), Options{})
	b.Start()
	b.Stop()

	err := b.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDoAfterStopNeverHangs(t *testing.T) {
	// The enqueue select can win the race against the stop signal and
	// park a task on the dead queue; every such call must still resolve
	// with ErrStopped even when the caller's context has no deadline.
	b := New(zap.NewNop(), Options{QueueSize: 4})
	b.Start()
	b.Stop()

	for i := 0; i < 40; i++ {
		errCh := make(chan error, 1)
		go func() {
			errCh <- b.Do(context.Background(), func(ctx context.Context) error { return nil })
		}()
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrStopped)
		case <-time.After(time.Second):
			t.Fatal("Do after Stop hung instead of returning ErrStopped")
		}
	}
}

func TestDoConcurrentWithStop(t *testing.T) {
	// Callers racing Stop itself must either get their real result or
	// ErrStopped; none may hang.
	b := New(zap.NewNop(), Options{QueueSize: 4})
	b.Start()

	var wg sync.WaitGroup
	results := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- b.Do(context.Background(), func(ctx context.Context) error { return nil })
		}()
	}
	b.Stop()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callers racing Stop were left hanging")
	}
	close(results)
	for err := range results {
		if err != nil && !errors.Is(err, ErrStopped) {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	b := New(zap.NewNop(), Options{})

	stopped := make(chan struct{})
	go func() {
		b.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop on a never-started bridge hung")
	}

	err := b.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)

	// Idempotent: a second Stop returns immediately.
	b.Stop()
}

func TestStopResolvesQueuedOperations(t *testing.T) {
	b := New(zap.NewNop(), Options{QueueSize: 4})
	// Never started: queued tasks must still resolve at Stop.

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- b.Do(context.Background(), func(ctx context.Context) error { return nil })
		}()
	}
	// Let both enqueue.
	time.Sleep(10 * time.Millisecond)

	b.Start()
	b.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-results:
		case <-time.After(time.Second):
			t.Fatal("queued caller left hanging after Stop")
		}
	}
}

func TestCallerContextCancelDoesNotCancelOp(t *testing.T) {
	b := newStarted(t)

	started := make(chan struct{})
	finished := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Do(ctx, func(ctx context.Context) error {
			close(started)
			time.Sleep(50 * time.Millisecond)
			close(finished)
			return nil
		})
	}()

	<-started
	cancel()

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("operation did not run to completion after caller abandoned it")
	}
}

func TestExpiredContextSkipsQueuedOp(t *testing.T) {
	b := New(zap.NewNop(), Options{QueueSize: 4})

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Do(ctx, func(ctx context.Context) error {
			ran = true
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	b.Start()
	defer b.Stop()

	assert.ErrorIs(t, <-errCh, context.Canceled)
	// The worker saw the dead context and skipped the exchange.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran)
}
