package rhino

import "sync"

// Attrs is a bit set of property attribute flags. The zero value is a
// plain property: writable, enumerable, and configurable.
type Attrs uint8

const (
	// ReadOnly marks a property as not writable.
	ReadOnly Attrs = 1 << iota
	// DontEnum hides a property from enumeration.
	DontEnum
	// Permanent marks a property as not configurable: it cannot be
	// deleted or redefined.
	Permanent
)

// PropertyDescriptor describes one own property of an object.
type PropertyDescriptor struct {
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// property is one object slot.
type property struct {
	value Value
	attrs Attrs
}

// Object is a composite script value: a class name, a prototype link,
// a property table with per-property attributes, and optionally a call
// or construct implementation (function objects) and an internal data
// slot for host-backed state.
//
// Property keys are strings or *Symbol. All methods are safe for
// concurrent use.
type Object struct {
	mu        sync.RWMutex
	class     string
	proto     *Object
	props     map[any]*property
	call      CallFunc
	construct ConstructFunc
	data      any
	sealed    bool
}

// NewObject creates an object with the given class name and prototype.
// A nil proto means the object terminates its prototype chain.
func NewObject(class string, proto *Object) *Object {
	return &Object{
		class: class,
		proto: proto,
		props: make(map[any]*property),
	}
}

// Class returns the object's class name.
func (o *Object) Class() string {
	return o.class
}

// Proto returns the object's prototype, or nil.
func (o *Object) Proto() *Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.proto
}

// Data returns the object's internal data slot.
func (o *Object) Data() any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data
}

// SetData stores v in the object's internal data slot.
func (o *Object) SetData(v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data = v
}

// Callable reports whether the object is a function object.
func (o *Object) Callable() bool {
	return o.call != nil
}

// DefineProperty creates or replaces an own property with the given
// value and attributes. Redefining a Permanent property or defining on
// a sealed object fails.
func (o *Object) DefineProperty(key any, value Value, attrs Attrs) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sealed {
		return ErrObjectSealed
	}
	if p, ok := o.props[key]; ok && p.attrs&Permanent != 0 {
		return ErrPermanentProperty
	}
	o.props[key] = &property{value: value, attrs: attrs}
	return nil
}

// defineOwn installs an own property without sealed or attribute
// checks. For runtime-internal setup of fresh objects.
func (o *Object) defineOwn(key any, value Value, attrs Attrs) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[key] = &property{value: value, attrs: attrs}
}

// Set assigns an own property, creating a plain one if absent. Writes
// to read-only properties and to any property of a sealed object fail.
func (o *Object) Set(key any, value Value) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sealed {
		return ErrObjectSealed
	}
	if p, ok := o.props[key]; ok {
		if p.attrs&ReadOnly != 0 {
			return ErrReadOnlyProperty
		}
		p.value = value
		return nil
	}
	o.props[key] = &property{value: value}
	return nil
}

// GetOwn returns the value of an own property.
func (o *Object) GetOwn(key any) (Value, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.props[key]
	if !ok {
		return nil, false
	}
	return p.value, true
}

// Get returns the value of a property, walking the prototype chain.
func (o *Object) Get(key any) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Proto() {
		if v, ok := cur.GetOwn(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether the property exists on the object or its
// prototype chain.
func (o *Object) Has(key any) bool {
	_, ok := o.Get(key)
	return ok
}

// Descriptor returns the descriptor of an own property.
func (o *Object) Descriptor(key any) (PropertyDescriptor, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.props[key]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return PropertyDescriptor{
		Value:        p.value,
		Writable:     p.attrs&ReadOnly == 0,
		Enumerable:   p.attrs&DontEnum == 0,
		Configurable: p.attrs&Permanent == 0,
	}, true
}

// Delete removes an own property. It returns false only when the
// property exists but cannot be removed: it is Permanent, or the object
// is sealed.
func (o *Object) Delete(key any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.props[key]
	if !ok {
		return true
	}
	if o.sealed || p.attrs&Permanent != 0 {
		return false
	}
	delete(o.props, key)
	return true
}

// Keys returns the enumerable own property keys (strings and symbols).
func (o *Object) Keys() []any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]any, 0, len(o.props))
	for k, p := range o.props {
		if p.attrs&DontEnum == 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Seal marks the object as sealed: no properties may be added, changed,
// or removed afterward.
func (o *Object) Seal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sealed = true
}

// Sealed reports whether the object is sealed.
func (o *Object) Sealed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sealed
}
