package rhino

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/anivar/rhino/pkg/rhino/journal"
	"github.com/anivar/rhino/pkg/rhino/observability"
)

// drainReady takes every ready handle off the cleanup queue and turns
// the ones still holding a live record into callback invocations.
// Callers sharing one registry may drain concurrently; the record
// store's Take arbitration keeps each handle single-dispatch.
func (r *FinalizationRegistry) drainReady(ctx context.Context) int {
	var span trace.Span
	if r.cfg.tracingEnabled {
		ctx, span = r.cfg.spans.StartDrainSpan(ctx, r.id, r.collector.Pending())
	}

	ready := r.collector.Drain()
	invoked := 0
	for _, h := range ready {
		if r.dispatch(ctx, h) {
			invoked++
		}
	}

	r.drains.Add(1)
	observability.LogDrainComplete(r.cfg.logger, r.id, len(ready), invoked)
	r.cfg.metrics.RecordDrain(ctx, r.id, len(ready))
	if r.cfg.tracingEnabled {
		r.cfg.spans.EndSpanWithError(span, nil)
	}
	return invoked
}

// dispatch disposes of one ready handle. The record store's Take is the
// single arbitration point between dispatch and a concurrent unregister:
// whichever removes the record owns the handle, the other sees "absent"
// and does nothing further. Returns true when this call invoked the
// callback.
func (r *FinalizationRegistry) dispatch(ctx context.Context, h *handle) bool {
	rec, ok := r.records.Take(h)
	if !ok {
		// Lost to an unregister or an earlier drain.
		return false
	}
	if rec.token != nil {
		// Only the winner of the record removes the index entry, so the
		// two structures stay consistent without a shared lock. Empty
		// sets are deleted with the last handle.
		r.tokens.Remove(rec.token, h)
	}

	// Bookkeeping for this handle is complete. The callback runs with
	// no internal state held, so it may reenter Register and Unregister
	// on this registry freely.
	err := r.invokeCleanup(ctx, h, rec.held)

	detail := ""
	if err != nil {
		detail = err.Error()
	}
	r.journalAppend(journal.Entry{Op: journal.OpDispatch, HandleID: h.ID(), Tokened: rec.token != nil, Detail: detail})
	return true
}

// invokeCleanup enters a fresh host scope and calls the cleanup
// callback with the held value. Errors and panics are contained here:
// dispatch has no caller to report to, so failures are logged, metered,
// and discarded.
func (r *FinalizationRegistry) invokeCleanup(ctx context.Context, h *handle, held Value) error {
	var span trace.Span
	if r.cfg.tracingEnabled {
		ctx, span = r.cfg.spans.StartCallbackSpan(ctx, r.id, h.ID())
	}

	start := time.Now()
	scope, release := r.host.Enter(ctx)
	_, err := scope.Invoke(r.cleanup, Undefined, []Value{held})
	release()
	duration := time.Since(start)

	r.dispatches.Add(1)
	if err != nil {
		r.callbackErrors.Add(1)
		observability.LogCallbackError(r.cfg.logger, r.id, h.ID(), err)
	} else {
		observability.LogDispatch(r.cfg.logger, r.id, h.ID(), float64(duration.Microseconds())/1000.0)
	}
	r.cfg.metrics.RecordDispatch(ctx, r.id, duration, err)
	if r.cfg.tracingEnabled {
		r.cfg.spans.EndSpanWithError(span, err)
	}
	return err
}
