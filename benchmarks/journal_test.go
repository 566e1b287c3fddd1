package benchmarks

import (
	"os"
	"testing"

	"github.com/anivar/rhino/pkg/rhino"
	"github.com/anivar/rhino/pkg/rhino/journal"
)

// BenchmarkMemoryStore_Append measures in-memory journal appends.
func BenchmarkMemoryStore_Append(b *testing.B) {
	store := journal.NewMemoryStore()
	entry := journalEntry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Append(entry)
	}
}

// BenchmarkMemoryStore_List measures listing a 100-entry registry trail.
func BenchmarkMemoryStore_List(b *testing.B) {
	store := journal.NewMemoryStore()
	entry := journalEntry()
	for i := 0; i < 100; i++ {
		_ = store.Append(entry)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List("fr-bench")
	}
}

// BenchmarkSQLiteStore_Append measures SQLite journal appends.
func BenchmarkSQLiteStore_Append(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	entry := journalEntry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Append(entry)
	}
}

// BenchmarkSQLiteStore_List measures listing a 100-entry registry trail
// from SQLite.
func BenchmarkSQLiteStore_List(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	entry := journalEntry()
	for i := 0; i < 100; i++ {
		_ = store.Append(entry)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List("fr-bench")
	}
}

// BenchmarkRegister_MemoryJournal measures registration when every event
// is recorded in the in-memory journal store. BenchmarkRegister is the
// unjournaled baseline.
func BenchmarkRegister_MemoryJournal(b *testing.B) {
	reg, _, realm := newRegistry(b, rhino.WithJournal(journal.NewMemoryStore()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Register(newTarget(realm), i, nil)
	}
}

// BenchmarkRegister_SQLiteJournal measures registration when every event
// is persisted to SQLite.
func BenchmarkRegister_SQLiteJournal(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	reg, _, realm := newRegistry(b, rhino.WithJournal(store))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Register(newTarget(realm), i, nil)
	}
}

// Helper functions

func journalEntry() journal.Entry {
	return journal.Entry{
		RegistryID: "fr-bench",
		Op:         journal.OpRegister,
		HandleID:   1,
		Tokened:    true,
	}
}

func createSQLiteStore(b *testing.B) (*journal.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := journal.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
