package store

import "sync"

// TokenIndex is a thread-safe index of handle sets keyed by token.
// It backs bulk cancellation: all handles registered under one token can
// be taken out of the index as a single atomic operation.
//
// Sets are created on first Add and deleted as soon as they become empty,
// so a token is held by the index only while at least one handle is
// registered under it.
type TokenIndex[K comparable, H comparable] struct {
	mu   sync.RWMutex
	sets map[K]map[H]struct{}
}

// NewTokenIndex creates a new empty token index.
func NewTokenIndex[K comparable, H comparable]() *TokenIndex[K, H] {
	return &TokenIndex[K, H]{
		sets: make(map[K]map[H]struct{}),
	}
}

// Add inserts a handle into the token's set, creating the set if absent.
func (ix *TokenIndex[K, H]) Add(token K, handle H) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.sets[token]
	if !ok {
		set = make(map[H]struct{})
		ix.sets[token] = set
	}
	set[handle] = struct{}{}
}

// Remove deletes a handle from the token's set. If the set becomes
// empty it is deleted entirely, releasing the index's hold on the token.
// Removing an absent handle or token is a no-op.
func (ix *TokenIndex[K, H]) Remove(token K, handle H) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.sets[token]
	if !ok {
		return
	}
	delete(set, handle)
	if len(set) == 0 {
		delete(ix.sets, token)
	}
}

// TakeAll atomically removes the token's entire set and returns its
// handles. Under concurrent TakeAlls of the same token, exactly one
// caller receives the handles; all others receive nil. Returns nil for
// an unknown token.
func (ix *TokenIndex[K, H]) TakeAll(token K) []H {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.sets[token]
	if !ok {
		return nil
	}
	delete(ix.sets, token)
	handles := make([]H, 0, len(set))
	for h := range set {
		handles = append(handles, h)
	}
	return handles
}

// Has returns true if the token has a non-empty set in the index.
func (ix *TokenIndex[K, H]) Has(token K) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.sets[token]
	return ok
}

// Handles returns a snapshot of the handles registered under a token.
// The order is not guaranteed.
func (ix *TokenIndex[K, H]) Handles(token K) []H {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	set, ok := ix.sets[token]
	if !ok {
		return nil
	}
	handles := make([]H, 0, len(set))
	for h := range set {
		handles = append(handles, h)
	}
	return handles
}

// Tokens returns all tokens with non-empty sets.
// The order is not guaranteed.
func (ix *TokenIndex[K, H]) Tokens() []K {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	tokens := make([]K, 0, len(ix.sets))
	for k := range ix.sets {
		tokens = append(tokens, k)
	}
	return tokens
}

// Len returns the number of tokens with non-empty sets.
func (ix *TokenIndex[K, H]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.sets)
}
