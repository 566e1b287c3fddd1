package collector

import (
	"sync"
	"sync/atomic"
	"weak"
)

// Simulated is a Collector driven by an explicit liveness oracle instead
// of the garbage collector: callers decide when a target is "unreachable"
// by calling MarkUnreachable. Watched targets are held strongly so the
// real collector cannot interfere with a test's script.
//
// It keeps the finalization machinery fully deterministic and is the
// collector used throughout the test suite; embedders without real weak
// semantics can use it the same way.
type Simulated[T any] struct {
	ids     atomic.Uint64
	mu      sync.Mutex
	watched map[*T][]*Handle[T]
	targets map[*Handle[T]]*T
	queue   *queue[T]
}

// Compile-time interface check.
var _ Collector[int] = (*Simulated[int])(nil)

// NewSimulated creates a collector driven by explicit unreachability marks.
func NewSimulated[T any]() *Simulated[T] {
	return &Simulated[T]{
		watched: make(map[*T][]*Handle[T]),
		targets: make(map[*Handle[T]]*T),
		queue:   newQueue[T](),
	}
}

// Watch starts observation of target. The target stays reachable until
// marked unreachable.
func (c *Simulated[T]) Watch(target *T) *Handle[T] {
	h := &Handle[T]{
		id:  c.ids.Add(1),
		ref: weak.Make(target),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.watched[target] = append(c.watched[target], h)
	c.targets[h] = target
	return h
}

// Release stops observation of a handle. A handle already marked ready
// stays in the queue; draining it later is a no-op for the registry.
func (c *Simulated[T]) Release(h *Handle[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, ok := c.targets[h]
	if !ok {
		return
	}
	delete(c.targets, h)

	handles := c.watched[target]
	for i, other := range handles {
		if other == h {
			c.watched[target] = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(c.watched[target]) == 0 {
		delete(c.watched, target)
	}
}

// MarkUnreachable declares a target unreachable: every handle still
// watching it becomes ready for cleanup, and the collector drops its
// strong reference. Returns the number of handles made ready.
func (c *Simulated[T]) MarkUnreachable(target *T) int {
	c.mu.Lock()
	handles := c.watched[target]
	delete(c.watched, target)
	for _, h := range handles {
		delete(c.targets, h)
	}
	c.mu.Unlock()

	for _, h := range handles {
		c.queue.push(h)
	}
	return len(handles)
}

// MarkAllUnreachable declares every watched target unreachable.
// Returns the number of handles made ready.
func (c *Simulated[T]) MarkAllUnreachable() int {
	c.mu.Lock()
	var handles []*Handle[T]
	for target, hs := range c.watched {
		handles = append(handles, hs...)
		delete(c.watched, target)
	}
	for _, h := range handles {
		delete(c.targets, h)
	}
	c.mu.Unlock()

	for _, h := range handles {
		c.queue.push(h)
	}
	return len(handles)
}

// Drain removes and returns all ready handles.
func (c *Simulated[T]) Drain() []*Handle[T] {
	return c.queue.drain()
}

// Pending returns the number of ready handles not yet drained.
func (c *Simulated[T]) Pending() int {
	return c.queue.len()
}

// Ready returns the coalesced readiness signal channel.
func (c *Simulated[T]) Ready() <-chan struct{} {
	return c.queue.ready
}

// Watched returns the number of targets currently under observation.
func (c *Simulated[T]) Watched() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watched)
}
