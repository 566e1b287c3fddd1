package rhino

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivar/rhino/pkg/rhino/collector"
	"github.com/anivar/rhino/pkg/rhino/config"
	"github.com/anivar/rhino/pkg/rhino/journal"
	"github.com/anivar/rhino/pkg/rhino/observability"
)

func applyOptions(opts ...Option) options {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func TestDefaultOptions(t *testing.T) {
	cfg := defaultOptions()

	assert.NotNil(t, cfg.logger)
	assert.Nil(t, cfg.collector)
	assert.Nil(t, cfg.newCollector)
	assert.Nil(t, cfg.journal)
	assert.False(t, cfg.ownsJournal)
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
	assert.False(t, cfg.tracingEnabled)
	assert.Equal(t, time.Duration(0), cfg.drainInterval)
}

func TestWithLogger(t *testing.T) {
	logger := discardLogger()

	cfg := applyOptions(WithLogger(logger))
	assert.Same(t, logger, cfg.logger)

	// nil is ignored, keeping the default.
	cfg = applyOptions(WithLogger(nil))
	assert.NotNil(t, cfg.logger)
}

func TestWithCollector(t *testing.T) {
	sim := collector.NewSimulated[Object]()

	cfg := applyOptions(WithCollector(sim))
	assert.Same(t, sim, cfg.collector)
}

func TestWithCollectorFactory(t *testing.T) {
	calls := 0
	factory := func() collector.Collector[Object] {
		calls++
		return collector.NewSimulated[Object]()
	}

	cfg := applyOptions(WithCollectorFactory(factory))
	require.NotNil(t, cfg.newCollector)
	assert.Equal(t, 0, calls) // not invoked until a registry is built

	realm := NewRealm(WithRealmLogger(discardLogger()))
	rec := &recorder{}
	a, err := New(realm, rec.callback(), WithLogger(discardLogger()), WithCollectorFactory(factory))
	require.NoError(t, err)
	defer a.Close()
	b, err := New(realm, rec.callback(), WithLogger(discardLogger()), WithCollectorFactory(factory))
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 2, calls)
}

func TestWithJournal(t *testing.T) {
	js := journal.NewMemoryStore()
	defer js.Close()

	cfg := applyOptions(WithJournal(js))
	assert.Same(t, journal.Store(js), cfg.journal)
	assert.False(t, cfg.ownsJournal, "caller keeps ownership")
}

func TestWithMetrics(t *testing.T) {
	cfg := applyOptions(WithMetrics(true))
	assert.NotNil(t, cfg.metrics)

	cfg = applyOptions(WithMetrics(false))
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
}

func TestWithTracing(t *testing.T) {
	cfg := applyOptions(WithTracing(true))
	assert.True(t, cfg.tracingEnabled)
	assert.NotNil(t, cfg.spans)

	cfg = applyOptions(WithTracing(false))
	assert.False(t, cfg.tracingEnabled)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
}

func TestWithDrainInterval(t *testing.T) {
	cfg := applyOptions(WithDrainInterval(time.Second))
	assert.Equal(t, time.Second, cfg.drainInterval)

	// Non-positive intervals leave the loop disabled.
	cfg = applyOptions(WithDrainInterval(0))
	assert.Equal(t, time.Duration(0), cfg.drainInterval)

	cfg = applyOptions(WithDrainInterval(-time.Second))
	assert.Equal(t, time.Duration(0), cfg.drainInterval)
}

func TestOptionsFromConfigEmpty(t *testing.T) {
	opts, err := OptionsFromConfig(config.New(nil))
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.New(map[string]any{
		"drain_interval": "250ms",
		"metrics":        true,
		"tracing":        true,
	})

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)

	applied := applyOptions(opts...)
	assert.Equal(t, 250*time.Millisecond, applied.drainInterval)
	assert.NotNil(t, applied.metrics)
	assert.True(t, applied.tracingEnabled)
	assert.Nil(t, applied.journal)
}

func TestOptionsFromConfigJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.db")
	cfg := config.New(map[string]any{"journal_path": path})

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)

	applied := applyOptions(opts...)
	require.NotNil(t, applied.journal)
	assert.True(t, applied.ownsJournal, "registry closes a journal it opened")
	require.NoError(t, applied.journal.Close())
}

func TestOptionsFromConfigJournalError(t *testing.T) {
	// A directory that does not exist cannot hold the database.
	cfg := config.New(map[string]any{
		"journal_path": filepath.Join(t.TempDir(), "absent", "nested", "lifecycle.db"),
	})

	_, err := OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestRegistryClosesOwnedJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owned.db")
	opts, err := OptionsFromConfig(config.New(map[string]any{"journal_path": path}))
	require.NoError(t, err)

	realm := NewRealm(WithRealmLogger(discardLogger()))
	sim := collector.NewSimulated[Object]()
	rec := &recorder{}

	reg, err := New(realm, rec.callback(),
		append(opts, WithLogger(discardLogger()), WithCollector(sim))...)
	require.NoError(t, err)

	require.NoError(t, reg.Register(newTarget(), "held", nil))
	require.NoError(t, reg.Close())

	// The journal was closed with the registry.
	assert.ErrorIs(t, reg.cfg.journal.Append(journal.Entry{RegistryID: reg.ID(), Op: journal.OpRegister}), journal.ErrStoreClosed)
}
