package rhino

// CallFunc is the Go implementation of a callable script value. It
// receives the entered scope, the this value, and the call arguments.
type CallFunc func(scope Scope, this Value, args []Value) (Value, error)

// ConstructFunc is the Go implementation of a constructor invoked with
// new. It returns the constructed instance.
type ConstructFunc func(scope Scope, args []Value) (Value, error)

// NewNativeFunction creates a function object backed by fn. The name
// and length properties follow standard function conventions: read-only,
// non-enumerable, configurable.
func NewNativeFunction(realm *Realm, name string, arity int, fn CallFunc) *Object {
	f := NewObject("Function", realm.FunctionProto())
	f.call = fn
	f.defineOwn("name", name, ReadOnly|DontEnum)
	f.defineOwn("length", arity, ReadOnly|DontEnum)
	return f
}

// NewConstructor creates a native constructor: a function object that
// rejects plain calls, carries a construct implementation, and owns a
// fresh prototype object linked back through its constructor property.
func NewConstructor(realm *Realm, name string, arity int, construct ConstructFunc) *Object {
	ctor := NewNativeFunction(realm, name, arity, func(Scope, Value, []Value) (Value, error) {
		return nil, &ConstructionError{Name: name, Reason: "constructor requires new"}
	})
	ctor.construct = construct

	proto := NewObject(name, realm.ObjectProto())
	ctor.defineOwn("prototype", proto, ReadOnly|DontEnum|Permanent)
	proto.defineOwn("constructor", ctor, DontEnum)
	return ctor
}

// PrototypeProp returns the object held by the receiver's own
// prototype property, or nil when absent. Constructors created with
// NewConstructor always have one.
func (o *Object) PrototypeProp() *Object {
	v, ok := o.GetOwn("prototype")
	if !ok {
		return nil
	}
	proto, _ := v.(*Object)
	return proto
}

// DefinePrototypeMethod installs a method on the receiver's prototype
// object: writable, non-enumerable, configurable.
func (o *Object) DefinePrototypeMethod(realm *Realm, name string, arity int, fn CallFunc) {
	proto := o.PrototypeProp()
	if proto == nil {
		return
	}
	proto.defineOwn(name, NewNativeFunction(realm, name, arity, fn), DontEnum)
}

// DefinePrototypeProperty installs a plain value property on the
// receiver's prototype object with the given attributes.
func (o *Object) DefinePrototypeProperty(key any, value Value, attrs Attrs) {
	proto := o.PrototypeProp()
	if proto == nil {
		return
	}
	proto.defineOwn(key, value, attrs)
}
