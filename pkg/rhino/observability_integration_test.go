package rhino

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivar/rhino/pkg/rhino/collector"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	enc := json.NewEncoder(h.buf)
	return enc.Encode(data)
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testLogHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testLogHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *testLogHandler) getRecords() []map[string]any {
	var records []map[string]any
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			var m map[string]any
			if err := json.Unmarshal(line, &m); err == nil {
				records = append(records, m)
			}
		}
	}
	return records
}

func TestRegistry_WithObservabilityLogger(t *testing.T) {
	h := newTestLogHandler()
	logger := slog.New(h)

	realm := NewRealm(WithRealmLogger(discardLogger()))
	sim := collector.NewSimulated[Object]()
	rec := &recorder{}

	reg, err := New(realm, rec.callback(), WithLogger(logger), WithCollector(sim))
	require.NoError(t, err)

	token := "obs-token"
	require.NoError(t, reg.Register(newTarget(), "removed", token))
	target := newTarget()
	require.NoError(t, reg.Register(target, "reclaimed", nil))

	assert.True(t, reg.Unregister(token))

	sim.MarkUnreachable(target)
	require.Equal(t, 1, reg.Drain(context.Background()))
	require.NoError(t, reg.Close())

	records := h.getRecords()
	require.NotEmpty(t, records, "Expected log records")

	var foundOpen, foundClose, foundUnregister, foundDispatch, foundDrain bool
	var registerCount int

	for _, r := range records {
		msg, _ := r["msg"].(string)

		// Every line carries the registry id, either from the enriched
		// logger or as an explicit field.
		assert.Equal(t, reg.ID(), r["registry_id"], "record %q missing registry_id", msg)

		switch msg {
		case "registry opened":
			foundOpen = true
		case "registry closed":
			foundClose = true
			assert.EqualValues(t, 1, r["dispatched"])
		case "target registered":
			registerCount++
		case "registrations removed":
			foundUnregister = true
			assert.EqualValues(t, 1, r["removed"])
		case "cleanup dispatched":
			foundDispatch = true
		case "drain complete":
			foundDrain = true
		}
	}

	assert.True(t, foundOpen, "Expected 'registry opened' log")
	assert.True(t, foundClose, "Expected 'registry closed' log")
	assert.Equal(t, 2, registerCount, "Expected 2 'target registered' logs")
	assert.True(t, foundUnregister, "Expected 'registrations removed' log")
	assert.True(t, foundDispatch, "Expected 'cleanup dispatched' log")
	assert.True(t, foundDrain, "Expected 'drain complete' log")
}

func TestRegistry_WithObservabilityLogger_CallbackError(t *testing.T) {
	h := newTestLogHandler()
	logger := slog.New(h)

	realm := NewRealm(WithRealmLogger(discardLogger()))
	sim := collector.NewSimulated[Object]()

	reg, err := New(realm, makeFailingCallback(errors.New("boom")),
		WithLogger(logger), WithCollector(sim))
	require.NoError(t, err)
	defer reg.Close()

	target := newTarget()
	require.NoError(t, reg.Register(target, "held", nil))
	sim.MarkUnreachable(target)
	require.Equal(t, 1, reg.Drain(context.Background()))

	var foundError bool
	for _, r := range h.getRecords() {
		if r["msg"] == "cleanup callback failed" {
			foundError = true
			assert.Equal(t, "ERROR", r["level"])
			assert.Equal(t, "boom", r["error"])
		}
	}
	assert.True(t, foundError, "Expected 'cleanup callback failed' log")
}

func TestRegistry_WithMetrics_Disabled(t *testing.T) {
	// Metrics disabled by default - should not panic
	f := newFixture(t)
	target := newTarget()

	require.NoError(t, f.registry.Register(target, "held", nil))
	assert.Equal(t, 1, f.reclaim(target))
}

func TestRegistry_WithMetrics_Enabled(t *testing.T) {
	// Enable metrics - should not panic even without provider
	f := newFixture(t, WithMetrics(true))
	target := newTarget()

	require.NoError(t, f.registry.Register(target, "held", nil))
	assert.Equal(t, 1, f.reclaim(target))
}

func TestRegistry_WithTracing_Enabled(t *testing.T) {
	// Enable tracing - should not panic even without provider
	f := newFixture(t, WithTracing(true))
	target := newTarget()

	require.NoError(t, f.registry.Register(target, "held", nil))
	assert.Equal(t, 1, f.reclaim(target))
}

func TestRegistry_WithAllObservability(t *testing.T) {
	h := newTestLogHandler()
	logger := slog.New(h)

	f := newFixture(t, WithLogger(logger), WithMetrics(true), WithTracing(true))
	target := newTarget()

	require.NoError(t, f.registry.Register(target, "held", nil))
	assert.Equal(t, 1, f.reclaim(target))

	assert.NotEmpty(t, h.getRecords())
}
