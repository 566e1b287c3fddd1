/*
Package rhino provides a finalization registry runtime for Go hosts.

# Overview

rhino delivers object-lifecycle-triggered callbacks following the
ECMAScript 2021 FinalizationRegistry contract: register a target object
with a held value and an optional unregister token, and the registry
invokes a cleanup callback with the held value sometime after the
target becomes unreachable — at most once per registration, never for
registrations cancelled first.

The package bridges the non-deterministic garbage collector and
deterministic caller-visible semantics with:
  - Token-keyed registration and atomic bulk unregistration
  - At-most-once delivery arbitrated by a single-winner record removal
  - Crash isolation of callback code (errors and panics never escape)
  - Safe concurrent use from arbitrary goroutines alongside the
    collector's asynchronous readiness reports

# Basic Usage

Create a realm, a registry, and register targets:

	realm := rhino.NewRealm()

	reg, err := rhino.New(realm, rhino.CallFunc(
	    func(scope rhino.Scope, this rhino.Value, args []rhino.Value) (rhino.Value, error) {
	        fmt.Println("released:", args[0])
	        return rhino.Undefined, nil
	    }))
	if err != nil {
	    log.Fatal(err)
	}
	defer reg.Close()

	res := rhino.NewObject("Object", realm.ObjectProto())
	reg.Register(res, "resource #1", nil)

The callback runs sometime after res becomes unreachable. Delivery is
asynchronous and unordered across registrations; within one
registration, bookkeeping always completes before the callback runs.

# Unregister Tokens

A token groups registrations for bulk cancellation:

	token := rhino.NewObject("Object", realm.ObjectProto())
	reg.Register(a, "held A", token)
	reg.Register(b, "held B", token)

	reg.Unregister(token) // true: both registrations cancelled
	reg.Unregister(token) // false: nothing left under the token

Tokens are compared by identity. Cancellation is permanent: a
registration removed by Unregister never reaches the callback, and a
registration already claimed by a concurrent dispatch does not count
toward Unregister's result.

# Collectors

The collector subpackage abstracts how targets are observed. The
default watches targets through the Go garbage collector; tests and
embedders without weak semantics inject a simulated collector and mark
targets unreachable explicitly:

	sim := collector.NewSimulated[rhino.Object]()
	reg, _ := rhino.New(realm, cb, rhino.WithCollector(sim))

	reg.Register(obj, "held", nil)
	sim.MarkUnreachable(obj)
	reg.Drain(ctx) // invokes the callback now

Draining is opportunistic on Register by default; WithDrainInterval
adds a background loop that wakes on collector readiness.

# Script Surface

Install exposes the constructor to script-level code on a realm's
global object, with the standard prototype layout (method arities,
property attributes, Symbol.toStringTag) and receiver validation:

	ctor := rhino.Install(realm)

	scope, release := realm.Enter(ctx)
	inst, _ := scope.Construct(ctor, []rhino.Value{cb})
	release()

Realms below VersionES6 do not receive the global at all.

# Observability

Logging, metrics, tracing, and an audit journal are opt-in:

	store, _ := journal.NewSQLiteStore("./lifecycle.db")
	defer store.Close()

	reg, _ := rhino.New(realm, cb,
	    rhino.WithLogger(logger),
	    rhino.WithMetrics(true),
	    rhino.WithTracing(true),
	    rhino.WithJournal(store))

Logs carry structured fields: registry_id, handle_id, duration_ms.
OpenTelemetry metrics: rhino.registrations, rhino.cleanup.dispatches,
rhino.cleanup.latency_ms, rhino.callback.errors, rhino.queue.drained.
Spans: rhino.drain wrapping rhino.callback.

# Error Handling

Validation failures are structured errors that all unwrap to
ErrTypeError:

	err := reg.Register(obj, obj, nil)
	var same *rhino.SameTargetError
	if errors.As(err, &same) {
	    // target and held value were identical
	}

Callback failures are different: dispatch has no caller to report to,
so errors and panics raised by the cleanup callback are logged,
counted, and discarded. They never propagate to Register or Unregister
callers and never stop a drain pass.

# Thread Safety

  - FinalizationRegistry IS safe for concurrent use
  - Realm and Object ARE safe for concurrent use
  - Collectors ARE safe for concurrent use; readiness arrives from the
    runtime's cleanup goroutine or from MarkUnreachable callers
  - Callbacks may reenter Register/Unregister on their own registry

# Subpackages

  - collector: weak handles and the cleanup queue (GC-backed, simulated)
  - store: concurrent record store and token index primitives
  - journal: lifecycle audit trail (memory, SQLite)
  - observability: logging, metrics, and tracing helpers
  - config: map-backed configuration with YAML/JSON loaders
*/
package rhino
