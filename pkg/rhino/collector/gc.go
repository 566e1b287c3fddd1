package collector

import (
	"runtime"
	"sync/atomic"
	"weak"
)

// GC is the garbage-collector-backed Collector. It pairs a weak.Pointer
// with a runtime.AddCleanup registration per handle: when the runtime
// determines a target is unreachable, the cleanup pushes the handle onto
// the ready queue from the runtime's cleanup goroutine.
//
// Readiness timing is entirely up to the garbage collector; callers must
// not assume a collection cycle makes handles ready promptly.
type GC[T any] struct {
	ids   atomic.Uint64
	queue *queue[T]
}

// Compile-time interface check.
var _ Collector[int] = (*GC[int])(nil)

// NewGC creates a collector backed by the Go garbage collector.
func NewGC[T any]() *GC[T] {
	return &GC[T]{
		queue: newQueue[T](),
	}
}

// Watch starts weak observation of target.
func (c *GC[T]) Watch(target *T) *Handle[T] {
	h := &Handle[T]{
		id:  c.ids.Add(1),
		ref: weak.Make(target),
	}
	// The cleanup closure must not capture target, or it would never
	// become unreachable. It receives the handle as its argument.
	h.cleanup = runtime.AddCleanup(target, c.queue.push, h)
	return h
}

// Release cancels the runtime cleanup for a handle. If the cleanup has
// already been queued by the runtime, the handle will still surface in
// Drain; the dispatcher's record removal has already arbitrated it away,
// so draining it is a no-op.
func (c *GC[T]) Release(h *Handle[T]) {
	h.cleanup.Stop()
}

// Drain removes and returns all ready handles.
func (c *GC[T]) Drain() []*Handle[T] {
	return c.queue.drain()
}

// Pending returns the number of ready handles not yet drained.
func (c *GC[T]) Pending() int {
	return c.queue.len()
}

// Ready returns the coalesced readiness signal channel.
func (c *GC[T]) Ready() <-chan struct{} {
	return c.queue.ready
}
