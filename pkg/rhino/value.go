package rhino

import "fmt"

// Value is any script-level value handled by the runtime:
//
//   - *Object for composite values (plain objects, function objects)
//   - *Symbol for symbols
//   - string, bool, float64, int, int64 for primitives
//   - Undefined for the undefined value
//   - nil for null
//
// The set above is closed: every Value kind is comparable, so values can
// key maps and be compared for identity without panicking.
type Value = any

// undefinedValue is the type of the Undefined sentinel.
type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined is the script undefined value. Null is represented by nil.
var Undefined Value = undefinedValue{}

// Symbol is a primitive symbol value, unique by identity: two symbols
// with the same description are still distinct.
type Symbol struct {
	description string
}

// NewSymbol creates a new unique symbol.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description}
}

// Description returns the symbol's description text.
func (s *Symbol) Description() string {
	return s.description
}

// String returns the symbol in display form.
func (s *Symbol) String() string {
	return "Symbol(" + s.description + ")"
}

// SymbolToStringTag is the well-known symbol keying a type's tag property.
var SymbolToStringTag = NewSymbol("Symbol.toStringTag")

// IsComposite reports whether v is a composite value — a non-nil *Object.
// Primitives, symbols, null, and undefined are not composite and cannot
// be weakly tracked.
func IsComposite(v Value) bool {
	obj, ok := v.(*Object)
	return ok && obj != nil
}

// IsCallable reports whether v can be invoked: a function object or a
// bare CallFunc.
func IsCallable(v Value) bool {
	switch fn := v.(type) {
	case *Object:
		return fn != nil && fn.Callable()
	case CallFunc:
		return fn != nil
	}
	return false
}

// Identical reports identity equality between two values: pointer
// identity for objects and symbols, value equality for primitives.
// Null and undefined are identical only to themselves.
func Identical(a, b Value) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av == bv
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if _, ok := b.(*Object); ok {
		return false
	}
	if _, ok := b.(*Symbol); ok {
		return false
	}
	return a == b
}

// TypeName returns the script-level type name of a value, for error
// messages and diagnostics.
func TypeName(v Value) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case undefinedValue:
		return "undefined"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case *Symbol:
		return "symbol"
	case CallFunc:
		return "function"
	case *Object:
		if vv == nil {
			return "null"
		}
		if vv.Callable() {
			return "function"
		}
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
