// Package collector abstracts the garbage collector behind a small
// capability: create a weak handle for a value, and drain the handles
// whose values have since become unreachable.
//
// # Collectors
//
// Two implementations are provided:
//
//   - GC integrates with the Go runtime via weak.Make and
//     runtime.AddCleanup. Handles become ready when the garbage collector
//     reclaims their targets, at a time of its choosing.
//   - Simulated replaces the garbage collector with a liveness oracle:
//     MarkUnreachable decides readiness explicitly. Tests and embedders
//     use it to drive finalization deterministically.
//
// # Usage
//
//	c := collector.NewGC[Resource]()
//
//	h := c.Watch(res)       // weak observation; res stays collectable
//	...
//	for _, h := range c.Drain() {
//	    // h's target became unreachable
//	}
//
// A background loop can block on the coalesced readiness signal instead
// of polling:
//
//	for range c.Ready() {
//	    handles := c.Drain()
//	    ...
//	}
//
// # Thread Safety
//
// All methods on both collectors are safe for concurrent use. GC pushes
// ready handles from the runtime's cleanup goroutine; Simulated pushes
// from whichever goroutine calls MarkUnreachable.
package collector
