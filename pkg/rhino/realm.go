package rhino

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// LanguageVersion selects the language level a realm exposes. Feature
// installers gate on it.
type LanguageVersion int

const (
	// VersionDefault is the unversioned language level.
	VersionDefault LanguageVersion = 0
	// Version1_8 is the last pre-ES6 language level.
	Version1_8 LanguageVersion = 180
	// VersionES6 is the ES6-and-later language level. Finalization
	// support requires it.
	VersionES6 LanguageVersion = 200
)

// Realm is one isolated execution world: a global object, the root
// prototypes, and the services scopes entered against it share. A Realm
// is safe for concurrent use.
type Realm struct {
	version       LanguageVersion
	global        *Object
	objectProto   *Object
	functionProto *Object
	logger        *slog.Logger
	sealedStdLib  bool
	active        atomic.Int64
}

// RealmOption configures a Realm at construction.
type RealmOption func(*Realm)

// WithVersion sets the realm's language version. The default is
// VersionES6.
func WithVersion(v LanguageVersion) RealmOption {
	return func(r *Realm) {
		r.version = v
	}
}

// WithRealmLogger sets the logger scopes entered on this realm carry.
func WithRealmLogger(logger *slog.Logger) RealmOption {
	return func(r *Realm) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSealedStdLib makes feature installers seal the constructors and
// prototypes they define, so script code cannot add, change, or remove
// their properties.
func WithSealedStdLib() RealmOption {
	return func(r *Realm) {
		r.sealedStdLib = true
	}
}

// NewRealm creates a realm with a fresh global object and root
// prototypes.
func NewRealm(opts ...RealmOption) *Realm {
	objectProto := NewObject("Object", nil)
	functionProto := NewObject("Function", objectProto)
	r := &Realm{
		version:       VersionES6,
		global:        NewObject("global", objectProto),
		objectProto:   objectProto,
		functionProto: functionProto,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Version returns the realm's language version.
func (r *Realm) Version() LanguageVersion {
	return r.version
}

// Global returns the realm's global object.
func (r *Realm) Global() *Object {
	return r.global
}

// ObjectProto returns the root object prototype.
func (r *Realm) ObjectProto() *Object {
	return r.objectProto
}

// FunctionProto returns the prototype shared by function objects.
func (r *Realm) FunctionProto() *Object {
	return r.functionProto
}

// Logger returns the realm's logger.
func (r *Realm) Logger() *slog.Logger {
	return r.logger
}

// SealedStdLib reports whether feature installers seal what they define.
func (r *Realm) SealedStdLib() bool {
	return r.sealedStdLib
}

// ActiveScopes returns the number of scopes currently entered and not
// yet released.
func (r *Realm) ActiveScopes() int64 {
	return r.active.Load()
}

// Enter opens an execution scope on the realm. The release function
// must be called when the scope's work is done; it is idempotent.
// Using the scope after release fails with ErrScopeReleased.
func (r *Realm) Enter(ctx context.Context) (Scope, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.active.Add(1)
	s := &callScope{
		Context: ctx,
		realm:   r,
		logger:  r.logger,
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			s.released.Store(true)
			r.active.Add(-1)
		})
	}
	return s, release
}
