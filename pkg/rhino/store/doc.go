// Package store provides the generic concurrent associative stores that
// back the finalization registry: a keyed Store with single-winner removal
// and a TokenIndex of handle sets with atomic bulk take.
//
// # Store
//
// Store is a thread-safe map for read-heavy workloads. Its distinguishing
// primitive is Take, an atomic take-if-present:
//
//	s := store.New[string, int]()
//	s.Put("a", 1)
//
//	v, ok := s.Take("a") // first caller wins
//	_, ok2 := s.Take("a") // ok2 is false
//
// Under concurrent removal attempts for the same key, exactly one caller
// observes the entry. This is the arbitration point that keeps cancellation
// and dispatch mutually exclusive per handle.
//
// # TokenIndex
//
// TokenIndex groups handles under tokens and supports taking a whole group
// atomically:
//
//	ix := store.NewTokenIndex[string, int]()
//	ix.Add("tok", 1)
//	ix.Add("tok", 2)
//
//	handles := ix.TakeAll("tok") // both handles, set removed
//	ix.Has("tok")                // false
//
// Sets are deleted as soon as they become empty, so the index never holds a
// token longer than its last live handle.
//
// # Thread Safety
//
// All methods on both types are safe for concurrent use. Range iterates
// over a snapshot, allowing mutations during iteration without affecting
// the iteration itself. No method of one structure acquires the other's
// lock; callers sequence cross-structure updates themselves.
package store
