// Package journal provides persistent audit records of registry activity.
package journal

import (
	"errors"
	"time"
)

// Op identifies the kind of registry event an entry records.
type Op string

const (
	// OpRegister records a new registration.
	OpRegister Op = "register"
	// OpUnregister records one registration removed by token.
	OpUnregister Op = "unregister"
	// OpDispatch records one cleanup callback invocation.
	OpDispatch Op = "dispatch"
)

// Entry is one recorded registry event. Sequence and Timestamp are
// assigned by the store on append.
type Entry struct {
	RegistryID string
	Sequence   int
	Op         Op
	HandleID   uint64
	Tokened    bool
	Detail     string // error text for failed callbacks, empty otherwise
	Timestamp  time.Time
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records one entry, assigning its per-registry sequence.
	Append(e Entry) error

	// List returns all entries for a registry, ordered by sequence.
	// Returns empty slice (not error) if the registry has none.
	List(registryID string) ([]Entry, error)

	// Purge removes all entries for a registry.
	// Returns nil if the registry has no entries.
	Purge(registryID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
