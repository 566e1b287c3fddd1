package rhino

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// Scope is one entered execution scope. It extends context.Context with
// the services an invocation needs: the owning realm, a logger, and the
// call machinery. Scopes are cheap; enter one per unit of work and
// release it when done.
type Scope interface {
	context.Context

	// Realm returns the realm this scope was entered on.
	Realm() *Realm

	// Logger returns the scope's logger.
	Logger() *slog.Logger

	// Invoke calls fn with the given this value and arguments. Panics
	// in native code are recovered and returned as *PanicError.
	Invoke(fn Value, this Value, args []Value) (Value, error)

	// Construct invokes fn as a constructor and returns the new
	// instance. Panics are recovered and returned as *PanicError.
	Construct(fn Value, args []Value) (Value, error)
}

type callScope struct {
	context.Context
	realm    *Realm
	logger   *slog.Logger
	released atomic.Bool
}

func (s *callScope) Realm() *Realm {
	return s.realm
}

func (s *callScope) Logger() *slog.Logger {
	return s.logger
}

func (s *callScope) Invoke(fn Value, this Value, args []Value) (res Value, err error) {
	if s.released.Load() {
		return nil, ErrScopeReleased
	}
	var call CallFunc
	switch f := fn.(type) {
	case CallFunc:
		call = f
	case *Object:
		if f != nil {
			call = f.call
		}
	}
	if call == nil {
		return nil, &NotCallableError{Value: fn}
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return call(s, this, args)
}

func (s *callScope) Construct(fn Value, args []Value) (res Value, err error) {
	if s.released.Load() {
		return nil, ErrScopeReleased
	}
	ctor, ok := fn.(*Object)
	if !ok || ctor == nil || ctor.construct == nil {
		return nil, &ConstructionError{Name: TypeName(fn), Reason: "value is not a constructor"}
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return ctor.construct(s, args)
}
