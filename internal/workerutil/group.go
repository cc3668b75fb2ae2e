package workerutil

import (
	"context"
	"sync"
	"sync/atomic"
)

// Group owns a set of supervised workers that share one lifetime.
type Group struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopping atomic.Bool
	opts     RecoveryOptions
}

// NewGroup creates a group whose workers stop when parent ends or Stop is called.
func NewGroup(parent context.Context, opts RecoveryOptions) *Group {
	ctx, cancel := context.WithCancel(parent)
	g := &Group{ctx: ctx, cancel: cancel}
	userShutdown := opts.IsShutdown
	opts.IsShutdown = func() bool {
		return g.stopping.Load() || (userShutdown != nil && userShutdown())
	}
	g.opts = opts
	return g
}

// Go starts fn as a named supervised worker. It is a no-op after Stop.
func (g *Group) Go(name string, fn func(ctx context.Context)) {
	if g.stopping.Load() {
		return
	}
	RunWithPanicRecovery(g.ctx, name, &g.wg, fn, g.opts)
}

// Context returns the context shared by the group's workers.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Stop cancels every worker and waits for them to return. Idempotent.
func (g *Group) Stop() {
	g.stopping.Store(true)
	g.cancel()
	g.wg.Wait()
}
