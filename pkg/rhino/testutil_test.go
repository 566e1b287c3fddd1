package rhino

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/anivar/rhino/pkg/rhino/collector"
)

// Test helpers shared across registry, facade, and acceptance tests.

// discardLogger keeps test output free of registry lifecycle lines.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder collects the held values delivered to a cleanup callback.
type recorder struct {
	mu     sync.Mutex
	values []Value
}

// callback returns a cleanup function that appends each held value.
func (r *recorder) callback() CallFunc {
	return func(_ Scope, _ Value, args []Value) (Value, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.values = append(r.values, args[0])
		return Undefined, nil
	}
}

// snapshot returns a copy of the delivered values.
func (r *recorder) snapshot() []Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// count returns the number of deliveries so far.
func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// makeFailingCallback returns a cleanup function that always fails with err.
func makeFailingCallback(err error) CallFunc {
	return func(Scope, Value, []Value) (Value, error) {
		return nil, err
	}
}

// makePanickingCallback returns a cleanup function that panics with value.
func makePanickingCallback(value any) CallFunc {
	return func(Scope, Value, []Value) (Value, error) {
		panic(value)
	}
}

// testFixture bundles a registry with its simulated collector and the
// recorder its callback writes to.
type testFixture struct {
	realm     *Realm
	registry  *FinalizationRegistry
	collector *collector.Simulated[Object]
	rec       *recorder
}

// newFixture creates a registry on a fresh realm, driven by a simulated
// collector so tests control unreachability. Close runs via t.Cleanup.
func newFixture(t *testing.T, opts ...Option) *testFixture {
	t.Helper()

	realm := NewRealm(WithRealmLogger(discardLogger()))
	sim := collector.NewSimulated[Object]()
	rec := &recorder{}

	all := append([]Option{
		WithLogger(discardLogger()),
		WithCollector(sim),
	}, opts...)

	reg, err := New(realm, rec.callback(), all...)
	if err != nil {
		t.Fatalf("create registry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })

	return &testFixture{realm: realm, registry: reg, collector: sim, rec: rec}
}

// reclaim marks the target unreachable and drains the queue once.
func (f *testFixture) reclaim(target *Object) int {
	f.collector.MarkUnreachable(target)
	return f.registry.Drain(context.Background())
}

// newTarget creates a plain object suitable as a finalization target.
func newTarget() *Object {
	return NewObject("Object", nil)
}
