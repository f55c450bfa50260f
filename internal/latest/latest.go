// Package latest makes sure only the newest of a series of requests updates
// a view. Each Begin cancels the previous request's context and hands out a
// new sequence number; a response is applied only if its sequence is still
// current.
package latest

import (
	"context"
	"sync"
)

// Guard serializes "newest request wins" for one view. The zero value is
// ready to use.
type Guard struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new request derived from parent. The previous request, if
// still in flight, is cancelled.
func (g *Guard) Begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	g.cancel = cancel
	return ctx, g.seq
}

// Current reports whether seq belongs to the newest request.
func (g *Guard) Current(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seq == g.seq
}

// Done releases the context of seq once its response has been handled. It
// is a no-op for stale sequences.
func (g *Guard) Done(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq == g.seq && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Stop cancels whatever is in flight and invalidates every issued sequence.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.seq++
}

// Run performs fn under a fresh sequence and reports whether its result is
// still current. Callers apply v only when ok is true.
func Run[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (v T, ok bool, err error) {
	rctx, seq := g.Begin(ctx)
	defer g.Done(seq)
	v, err = fn(rctx)
	return v, g.Current(seq), err
}
