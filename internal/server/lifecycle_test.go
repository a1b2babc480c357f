package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder is a service that blocks until cancelled and records when it
// started and stopped.
type recorder struct {
	name    string
	started atomic.Bool
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (r *recorder) Run(ctx context.Context) error {
	r.started.Store(true)
	<-ctx.Done()
	r.order.add(r.name)
	return ctx.Err()
}

func waitStarted(t *testing.T, svcs ...*recorder) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond, "services did not start in time")
}

func TestLifecycleStartsAndStopsInReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	svc1 := &recorder{name: "svc1", order: order}
	svc2 := &recorder{name: "svc2", order: order}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"svc2", "svc1"}, order.names)
}

func TestLifecycleServiceFailureStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	healthy := &recorder{name: "healthy", order: order}
	boom := errors.New("boom")
	lc.Add("healthy", healthy)
	lc.Add("broken", ServiceFunc(func(ctx context.Context) error { return boom }))

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.Equal(t, []string{"healthy"}, order.names)
}

func TestLifecycleStopTimeout(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetStopTimeout(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	lc.Add("stubborn", ServiceFunc(func(ctx context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := lc.Run(ctx)
	assert.ErrorIs(t, err, ErrStopTimeout)
}

func TestLifecycleEarlyCleanReturn(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("oneshot", ServiceFunc(func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, lc.Run(ctx))
}

func TestServiceFunc(t *testing.T) {
	called := false
	svc := ServiceFunc(func(ctx context.Context) error {
		called = true
		return ctx.Err()
	})
	assert.NoError(t, svc.Run(context.Background()))
	assert.True(t, called)
}
