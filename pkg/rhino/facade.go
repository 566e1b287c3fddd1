package rhino

// Install defines the FinalizationRegistry constructor on the realm's
// global object and returns it. The feature requires VersionES6: on
// older realms Install does nothing and returns nil, leaving the global
// entirely absent.
//
// The given options apply to every registry the constructor creates.
// Prefer WithCollectorFactory over WithCollector here; a single
// collector instance cannot serve two registries.
func Install(realm *Realm, opts ...Option) *Object {
	if realm == nil || realm.Version() < VersionES6 {
		return nil
	}

	var ctor *Object
	ctor = NewConstructor(realm, ClassName, 1, func(scope Scope, args []Value) (Value, error) {
		// Arguments beyond the callback are ignored.
		if len(args) < 1 || !IsCallable(args[0]) {
			return nil, &ConstructionError{Name: ClassName, Reason: "cleanup callback must be callable"}
		}
		reg, err := New(scope.Realm(), args[0], opts...)
		if err != nil {
			return nil, err
		}
		inst := NewObject(ClassName, ctor.PrototypeProp())
		inst.SetData(reg)
		return inst, nil
	})

	ctor.DefinePrototypeMethod(realm, "register", 2, registerMethod)
	ctor.DefinePrototypeMethod(realm, "unregister", 1, unregisterMethod)
	ctor.DefinePrototypeProperty(SymbolToStringTag, ClassName, ReadOnly|DontEnum)

	if realm.SealedStdLib() {
		ctor.Seal()
		if proto := ctor.PrototypeProp(); proto != nil {
			proto.Seal()
		}
	}

	realm.Global().defineOwn(ClassName, ctor, DontEnum)
	return ctor
}

// registerMethod implements FinalizationRegistry.prototype.register.
// Arity 2: register(target, heldValue, unregisterToken?). Extra
// arguments beyond the token are ignored; tokens themselves are not
// type-checked, so primitives index by value identity.
func registerMethod(scope Scope, this Value, args []Value) (Value, error) {
	reg, err := thisRegistry("register", this)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, &ArgumentError{Method: "register", Required: 2, Got: len(args)}
	}

	target, held := args[0], args[1]
	if !IsComposite(target) {
		return nil, &TargetError{Value: target}
	}
	var token Value
	if len(args) > 2 {
		token = args[2]
	}

	if err := reg.Register(target.(*Object), held, token); err != nil {
		return nil, err
	}
	return Undefined, nil
}

// unregisterMethod implements FinalizationRegistry.prototype.unregister.
// Arity 1: unregister(unregisterToken?). A missing or unknown token
// yields false rather than an error.
func unregisterMethod(_ Scope, this Value, args []Value) (Value, error) {
	reg, err := thisRegistry("unregister", this)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return false, nil
	}
	return reg.Unregister(args[0]), nil
}

// thisRegistry resolves a method receiver to its backing registry.
// Receivers that are not registry instances fail with ReceiverError,
// regardless of how the method was detached and reapplied.
func thisRegistry(method string, this Value) (*FinalizationRegistry, error) {
	obj, ok := this.(*Object)
	if !ok || obj == nil {
		return nil, &ReceiverError{Method: method, Receiver: this}
	}
	reg, ok := obj.Data().(*FinalizationRegistry)
	if !ok {
		return nil, &ReceiverError{Method: method, Receiver: this}
	}
	return reg, nil
}
