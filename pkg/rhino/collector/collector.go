package collector

import (
	"fmt"
	"runtime"
	"weak"
)

// Handle is a collector-observable weak reference to a single watched
// target. One handle is created per Watch call; multiple handles may
// observe the same target independently.
//
// Handles are comparable by pointer identity and safe to use as map keys.
type Handle[T any] struct {
	id      uint64
	ref     weak.Pointer[T]
	cleanup runtime.Cleanup // set for GC-backed handles only
}

// ID returns the handle's collector-unique identifier.
func (h *Handle[T]) ID() uint64 {
	return h.id
}

// Value returns the watched target, or nil once it has been reclaimed.
// The finalization machinery never resurrects targets through this; it
// exists for diagnostics.
func (h *Handle[T]) Value() *T {
	return h.ref.Value()
}

// String returns a short identifier for logging.
func (h *Handle[T]) String() string {
	return fmt.Sprintf("wh-%d", h.id)
}

// Collector produces weak handles for targets and reports, through a
// single shared queue, the handles whose targets have become unreachable.
//
// Implementations must be safe for concurrent use: Watch and Release are
// called from arbitrary caller goroutines while readiness is reported
// asynchronously.
type Collector[T any] interface {
	// Watch starts weak observation of target and returns its handle.
	// The collector must not keep target reachable.
	Watch(target *T) *Handle[T]

	// Release stops observation of a handle whose registration was
	// cancelled. Releasing a handle that is already ready (or already
	// drained) is a harmless no-op.
	Release(h *Handle[T])

	// Drain removes and returns all handles currently ready for cleanup,
	// in the order the collector reported them. Returns nil when none
	// are ready.
	Drain() []*Handle[T]

	// Pending returns the number of ready handles not yet drained.
	Pending() int

	// Ready returns a channel that receives a coalesced signal whenever
	// a handle becomes ready. Intended for background drain loops; a
	// signal may cover any number of handles.
	Ready() <-chan struct{}
}
