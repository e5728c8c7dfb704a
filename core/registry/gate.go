package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// State is the initialize state of one registry.
type State int

const (
	// StateUninitialized is the state before any initialize attempt.
	StateUninitialized State = iota
	// StateInitializing is held while a load and resolve pass runs.
	StateInitializing
	// StateReady is reached once every resolution of a pass has settled.
	StateReady
	// StateFailed is reached when a pass aborts on a structural failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Gate lets exactly one initialize pass run at a time for one registry.
//
// Initialize callers coalesce into the in-flight attempt and all observe its
// outcome. Ready and Failed are terminal until Reinitialize starts a new cycle.
// Every pass holds the weight-1 slot, so a Reinitialize that arrives while a
// pass is running waits for it to settle and then runs its own pass.
type Gate struct {
	name string
	sem  *semaphore.Weighted
	sf   singleflight.Group

	mu     sync.Mutex
	state  State
	err    error
	passes int
}

// NewGate creates a gate for the registry named name.
func NewGate(name string) *Gate {
	return &Gate{name: name, sem: semaphore.NewWeighted(1)}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Err returns the error of the last failed pass.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Passes returns how many passes have executed.
func (g *Gate) Passes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.passes
}

// Initialize runs fn unless a previous cycle already settled, in which case the
// cached outcome is returned. Cancelling ctx only stops this caller from
// waiting; the pass itself keeps running.
func (g *Gate) Initialize(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	switch g.state {
	case StateReady:
		g.mu.Unlock()
		return nil
	case StateFailed:
		err := g.err
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	return g.run(ctx, fn)
}

// Reinitialize starts a new cycle from Initializing, even after Ready or Failed.
// It waits behind any pass already in flight and never joins it. Cancelling ctx
// before the slot is acquired abandons the cycle.
func (g *Gate) Reinitialize(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer g.sem.Release(1)
		done <- g.pass(context.WithoutCancel(ctx), fn)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (g *Gate) run(ctx context.Context, fn func(ctx context.Context) error) error {
	passCtx := context.WithoutCancel(ctx)

	ch := g.sf.DoChan(g.name, func() (any, error) {
		if err := g.sem.Acquire(passCtx, 1); err != nil {
			return nil, err
		}
		defer g.sem.Release(1)

		// A Reinitialize pass may have settled while this one waited for the slot.
		g.mu.Lock()
		switch g.state {
		case StateReady:
			g.mu.Unlock()
			return nil, nil
		case StateFailed:
			err := g.err
			g.mu.Unlock()
			return nil, err
		}
		g.mu.Unlock()

		return nil, g.pass(passCtx, fn)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// pass runs fn once and records its outcome. The caller holds the slot.
func (g *Gate) pass(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	g.state = StateInitializing
	g.err = nil
	g.passes++
	g.mu.Unlock()

	err := g.call(ctx, fn)

	g.mu.Lock()
	if err != nil {
		g.state = StateFailed
		g.err = err
	} else {
		g.state = StateReady
	}
	g.mu.Unlock()
	return err
}

// call converts a panic in fn into an error so the slot is always released.
func (g *Gate) call(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialize %s panicked: %v", g.name, r)
		}
	}()
	return fn(ctx)
}
