package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_ConcurrentCallersShareOnePass(t *testing.T) {
	g := NewGate("sprites")
	release := make(chan struct{})
	var running, overlaps, calls atomic.Int32

	fn := func(ctx context.Context) error {
		calls.Add(1)
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		defer running.Add(-1)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = g.Initialize(context.Background(), fn)
		}()
	}

	require.Eventually(t, func() bool { return g.State() == StateInitializing }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, overlaps.Load())
	assert.Equal(t, StateReady, g.State())
	assert.Equal(t, 1, g.Passes())

	require.NoError(t, g.Initialize(context.Background(), fn))
	assert.Equal(t, 1, g.Passes(), "ready is terminal")
	assert.LessOrEqual(t, calls.Load(), int32(1))
}

func TestGate_FailedIsTerminal(t *testing.T) {
	g := NewGate("sprites")
	boom := errors.New("boom")

	err := g.Initialize(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, g.State())
	assert.ErrorIs(t, g.Err(), boom)

	err = g.Initialize(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, boom, "cached failure")
	assert.Equal(t, 1, g.Passes())

	require.NoError(t, g.Reinitialize(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, StateReady, g.State())
	assert.NoError(t, g.Err())
	assert.Equal(t, 2, g.Passes())
}

func TestGate_PanicReleasesSlot(t *testing.T) {
	g := NewGate("sprites")

	err := g.Initialize(context.Background(), func(ctx context.Context) error { panic("bad asset") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, StateFailed, g.State())

	done := make(chan error, 1)
	go func() {
		done <- g.Reinitialize(context.Background(), func(ctx context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("slot was not released after panic")
	}
}

func TestGate_CallerCancellation(t *testing.T) {
	g := NewGate("sprites")
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = g.Initialize(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Initialize(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return g.State() == StateReady }, time.Second, time.Millisecond)
	assert.Equal(t, 1, g.Passes())
}

func TestGate_ReinitializeWaitsForInFlightPass(t *testing.T) {
	g := NewGate("sprites")
	release := make(chan struct{})
	started := make(chan struct{})
	var running, overlaps atomic.Int32

	track := func() func() {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		return func() { running.Add(-1) }
	}

	first := make(chan error, 1)
	go func() {
		first <- g.Initialize(context.Background(), func(ctx context.Context) error {
			defer track()()
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var second atomic.Bool
	reinit := make(chan error, 1)
	go func() {
		reinit <- g.Reinitialize(context.Background(), func(ctx context.Context) error {
			defer track()()
			second.Store(true)
			return nil
		})
	}()

	// Reinitialize must not join or overlap the running pass.
	time.Sleep(20 * time.Millisecond)
	assert.False(t, second.Load())
	assert.Equal(t, 1, g.Passes())

	close(release)
	require.NoError(t, <-first)
	require.NoError(t, <-reinit)

	assert.True(t, second.Load())
	assert.Equal(t, 2, g.Passes())
	assert.Zero(t, overlaps.Load())
	assert.Equal(t, StateReady, g.State())
}

func TestGate_InitializeDuringReinitializeSharesOutcome(t *testing.T) {
	g := NewGate("sprites")
	require.NoError(t, g.Initialize(context.Background(), func(ctx context.Context) error { return nil }))

	release := make(chan struct{})
	started := make(chan struct{})
	boom := errors.New("boom")

	reinit := make(chan error, 1)
	go func() {
		reinit <- g.Reinitialize(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return boom
		})
	}()
	<-started
	assert.Equal(t, StateInitializing, g.State())

	joined := make(chan error, 1)
	go func() {
		joined <- g.Initialize(context.Background(), func(ctx context.Context) error { return nil })
	}()

	close(release)
	assert.ErrorIs(t, <-reinit, boom)
	assert.ErrorIs(t, <-joined, boom)
	assert.Equal(t, 2, g.Passes())
	assert.Equal(t, StateFailed, g.State())
}

func TestGate_ReinitializeCancelledWhileWaiting(t *testing.T) {
	g := NewGate("sprites")
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = g.Initialize(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := g.Reinitialize(ctx, func(ctx context.Context) error {
		t.Error("cancelled reinitialize must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Eventually(t, func() bool { return g.State() == StateReady }, time.Second, time.Millisecond)
	assert.Equal(t, 1, g.Passes())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}
