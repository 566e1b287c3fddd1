package journal_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivar/rhino/pkg/rhino/journal"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")

	// First store instance
	store1, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	require.NoError(t, store1.Append(journal.Entry{RegistryID: "fr-1", Op: journal.OpRegister, HandleID: 1}))
	require.NoError(t, store1.Append(journal.Entry{RegistryID: "fr-1", Op: journal.OpDispatch, HandleID: 1}))
	require.NoError(t, store1.Close())

	// Second store instance (reopening the database)
	store2, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	entries, err := store2.List("fr-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, journal.OpRegister, entries[0].Op)
	assert.Equal(t, journal.OpDispatch, entries[1].Op)
}

func TestSQLiteStore_SequenceContinuesAfterReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")

	store1, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Append(journal.Entry{RegistryID: "fr-1", Op: journal.OpRegister}))
	require.NoError(t, store1.Close())

	store2, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()
	require.NoError(t, store2.Append(journal.Entry{RegistryID: "fr-1", Op: journal.OpDispatch}))

	entries, err := store2.List("fr-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Sequence)
	assert.Equal(t, 2, entries[1].Sequence)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	// Try to create in non-existent directory
	_, err := journal.NewSQLiteStore("/nonexistent/path/journal.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_TimestampRoundTrip(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(journal.Entry{RegistryID: "fr-1", Op: journal.OpRegister}))

	entries, err := store.List("fr-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	const numGoroutines = 20
	const numOps = 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			registryID := fmt.Sprintf("fr-%d", id%4)
			for j := 0; j < numOps; j++ {
				switch j % 3 {
				case 0, 1:
					_ = store.Append(journal.Entry{RegistryID: registryID, Op: journal.OpRegister, HandleID: uint64(j)})
				case 2:
					_, _ = store.List(registryID)
				}
			}
		}(i)
	}

	wg.Wait()
}
