package rhino

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/anivar/rhino/pkg/rhino/collector"
	"github.com/anivar/rhino/pkg/rhino/journal"
	"github.com/anivar/rhino/pkg/rhino/observability"
	"github.com/anivar/rhino/pkg/rhino/store"
)

// ClassName is the script-visible name of the registry type.
const ClassName = "FinalizationRegistry"

// handle is the weak-handle type all registry structures are keyed by.
type handle = collector.Handle[Object]

// registrationRecord pairs a held value with its optional unregister
// token. One record exists per live registration; it is destroyed
// exactly once, by a winning unregister or by dispatch.
type registrationRecord struct {
	held  Value
	token Value // nil when the registration carries no token
}

// Stats is a point-in-time snapshot of registry counters.
type Stats struct {
	// Registrations is the number of successful Register calls.
	Registrations uint64
	// Unregistrations is the number of registrations removed by token.
	Unregistrations uint64
	// Dispatches is the number of cleanup callbacks invoked.
	Dispatches uint64
	// CallbackErrors is the number of callbacks that failed or panicked.
	CallbackErrors uint64
	// Drains is the number of completed drain passes.
	Drains uint64
	// Live is the number of registrations not yet dispatched or
	// unregistered.
	Live int
}

// FinalizationRegistry delivers a cleanup callback after registered
// target objects become unreachable. It mirrors the ECMAScript 2021
// FinalizationRegistry contract: token-keyed registration, atomic bulk
// unregistration, at-most-once delivery per registration, and crash
// isolation of the callback.
//
// All methods are safe for concurrent use. The registry holds targets
// only weakly and never blocks collector progress; held values and
// tokens are held strongly for the lifetime of their registrations.
//
// Example:
//
//	realm := rhino.NewRealm()
//	reg, err := rhino.New(realm, rhino.CallFunc(
//	    func(scope rhino.Scope, this rhino.Value, args []rhino.Value) (rhino.Value, error) {
//	        fmt.Println("released:", args[0])
//	        return rhino.Undefined, nil
//	    }))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	reg.Register(obj, "file descriptor 42", nil)
type FinalizationRegistry struct {
	id      string
	host    *Realm
	cleanup Value

	collector collector.Collector[Object]
	records   *store.Store[*handle, registrationRecord]
	tokens    *store.TokenIndex[Value, *handle]

	cfg options

	registrations   atomic.Uint64
	unregistrations atomic.Uint64
	dispatches      atomic.Uint64
	callbackErrors  atomic.Uint64
	drains          atomic.Uint64

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a registry that invokes cleanup with each reclaimed
// registration's held value. The host realm supplies the execution
// scopes callbacks run in.
//
// cleanup must be callable (a function object or a CallFunc); anything
// else fails with a ConstructionError. By default the registry watches
// targets through the Go garbage collector and drains only
// opportunistically during Register calls; see WithCollector and
// WithDrainInterval.
func New(host *Realm, cleanup Value, opts ...Option) (*FinalizationRegistry, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if !IsCallable(cleanup) {
		return nil, &ConstructionError{Name: ClassName, Reason: "cleanup callback must be callable"}
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.collector == nil {
		if cfg.newCollector != nil {
			cfg.collector = cfg.newCollector()
		} else {
			cfg.collector = collector.NewGC[Object]()
		}
	}

	r := &FinalizationRegistry{
		id:        fmt.Sprintf("fr-%s", uuid.New().String()[:8]),
		host:      host,
		cleanup:   cleanup,
		collector: cfg.collector,
		records:   store.New[*handle, registrationRecord](),
		tokens:    store.NewTokenIndex[Value, *handle](),
		cfg:       cfg,
		done:      make(chan struct{}),
	}
	r.cfg.logger = observability.EnrichLogger(cfg.logger, r.id)

	observability.LogRegistryOpen(r.cfg.logger, r.id)

	if cfg.drainInterval > 0 {
		r.wg.Add(1)
		go r.drainLoop(cfg.drainInterval)
	}
	return r, nil
}

// ID returns the registry's unique identifier, used in logs, metrics,
// and journal entries.
func (r *FinalizationRegistry) ID() string {
	return r.id
}

// Host returns the realm callbacks execute against.
func (r *FinalizationRegistry) Host() *Realm {
	return r.host
}

// Live returns the number of registrations not yet dispatched or
// unregistered.
func (r *FinalizationRegistry) Live() int {
	return r.records.Len()
}

// Stats returns a snapshot of the registry's counters.
func (r *FinalizationRegistry) Stats() Stats {
	return Stats{
		Registrations:   r.registrations.Load(),
		Unregistrations: r.unregistrations.Load(),
		Dispatches:      r.dispatches.Load(),
		CallbackErrors:  r.callbackErrors.Load(),
		Drains:          r.drains.Load(),
		Live:            r.records.Len(),
	}
}

// Register starts weak observation of target and schedules held for
// delivery to the cleanup callback once target becomes unreachable.
// Registering the same target again is permitted and independent.
//
// A non-nil token groups the registration for bulk cancellation via
// Unregister. Tokens are compared by identity: pointer identity for
// objects and symbols, value equality for primitives.
//
// Fails with TargetError when target is nil and SameTargetError when
// target and held are the same value, which would keep the target
// reachable forever.
func (r *FinalizationRegistry) Register(target *Object, held Value, token Value) error {
	if r.closed.Load() {
		return ErrRegistryClosed
	}
	if target == nil {
		return &TargetError{Value: nil}
	}
	if Identical(target, held) {
		return &SameTargetError{Target: target}
	}

	// Opportunistic drain bounds queue growth between registrations;
	// correctness does not depend on it.
	r.Drain(context.Background())

	h := r.collector.Watch(target)
	r.records.Put(h, registrationRecord{held: held, token: token})
	if token != nil {
		r.tokens.Add(token, h)
	}
	// Pin the target until both inserts are visible, so its cleanup
	// cannot race ahead of the bookkeeping.
	runtime.KeepAlive(target)

	r.registrations.Add(1)
	observability.LogRegister(r.cfg.logger, r.id, h.ID(), token != nil)
	r.cfg.metrics.RecordRegistration(context.Background(), r.id, token != nil)
	r.journalAppend(journal.Entry{Op: journal.OpRegister, HandleID: h.ID(), Tokened: token != nil})
	return nil
}

// Unregister removes every live registration made under token as one
// atomic group and reports whether the group was non-empty. Removed
// registrations never reach the cleanup callback.
//
// A nil or unknown token yields false, never an error. Registrations
// already claimed by a concurrent dispatch do not count toward the
// result.
func (r *FinalizationRegistry) Unregister(token Value) bool {
	if token == nil {
		return false
	}

	handles := r.tokens.TakeAll(token)
	removed := 0
	for _, h := range handles {
		if _, ok := r.records.Take(h); ok {
			// This call owns the handle's disposition now.
			r.collector.Release(h)
			r.journalAppend(journal.Entry{Op: journal.OpUnregister, HandleID: h.ID(), Tokened: true})
			removed++
		}
	}
	if removed == 0 {
		return false
	}

	r.unregistrations.Add(uint64(removed))
	observability.LogUnregister(r.cfg.logger, r.id, removed)
	r.cfg.metrics.RecordUnregistration(context.Background(), r.id, removed)
	return true
}

// Drain consumes the cleanup queue now, invoking the callback for every
// ready handle that still has a live record. It returns the number of
// callbacks invoked.
//
// Register calls drain opportunistically, and WithDrainInterval adds a
// background loop, so explicit calls are only needed by embedders that
// disable both and poll on their own schedule.
func (r *FinalizationRegistry) Drain(ctx context.Context) int {
	if r.collector.Pending() == 0 {
		return 0
	}
	return r.drainReady(ctx)
}

// Close stops the background drain loop after one final drain pass and
// releases registry resources. Register fails with ErrRegistryClosed
// afterward; handles becoming ready after Close are never delivered.
// Close is idempotent.
func (r *FinalizationRegistry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(r.done)
	r.wg.Wait()

	r.Drain(context.Background())

	var err error
	if r.cfg.ownsJournal && r.cfg.journal != nil {
		err = r.cfg.journal.Close()
	}
	observability.LogRegistryClose(r.cfg.logger, r.id, r.dispatches.Load())
	return err
}

// journalAppend records a lifecycle entry. Journal failures are
// non-fatal: logged and dropped.
func (r *FinalizationRegistry) journalAppend(e journal.Entry) {
	if r.cfg.journal == nil {
		return
	}
	e.RegistryID = r.id
	if err := r.cfg.journal.Append(e); err != nil {
		observability.LogJournalError(r.cfg.logger, r.id, string(e.Op), err)
	}
}

// drainLoop drains on the collector's readiness signal, with a ticker
// as a fallback for signals coalesced away while a drain was running.
func (r *FinalizationRegistry) drainLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-r.collector.Ready():
			r.Drain(context.Background())
		case <-ticker.C:
			r.Drain(context.Background())
		}
	}
}
