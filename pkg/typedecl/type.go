package typedecl

import (
	"reflect"
)

// Type is a comparable descriptor for a Go type. The zero value is [Invalid].
type Type struct {
	rt       reflect.Type
	variable string
}

var (
	// Invalid is the zero descriptor. It is not an instance of anything.
	Invalid = Type{}

	// Any describes the empty interface, the top of the type hierarchy.
	Any = Of[any]()
)

// Of returns the descriptor of T.
func Of[T any]() Type {
	return Type{rt: reflect.TypeFor[T]()}
}

// FromReflect wraps a reflect.Type. A nil reflect.Type yields [Invalid].
func FromReflect(rt reflect.Type) Type {
	return Type{rt: rt}
}

// TypeOf returns the descriptor of the dynamic type of v.
// A nil interface value yields [Invalid].
func TypeOf(v any) Type {
	if v == nil {
		return Invalid
	}
	return Type{rt: reflect.TypeOf(v)}
}

// Variable returns an unresolved type variable named name.
func Variable(name string) Type {
	if name == "" {
		return Invalid
	}
	return Type{variable: name}
}

// IsValid reports whether t describes a type or a type variable.
func (t Type) IsValid() bool {
	return t.rt != nil || t.variable != ""
}

// IsResolved reports whether t describes a concrete Go type.
func (t Type) IsResolved() bool {
	return t.rt != nil
}

// IsVariable reports whether t is an unresolved type variable.
func (t Type) IsVariable() bool {
	return t.variable != ""
}

// Reflect returns the underlying reflect.Type, or nil for invalid and
// variable descriptors.
func (t Type) Reflect() reflect.Type {
	return t.rt
}

// Kind returns the reflect kind, or reflect.Invalid when t is not resolved.
func (t Type) Kind() reflect.Kind {
	if t.rt == nil {
		return reflect.Invalid
	}
	return t.rt.Kind()
}

// Name returns the declared name of the type, or the variable name.
// Unnamed composite types return "".
func (t Type) Name() string {
	if t.variable != "" {
		return t.variable
	}
	if t.rt == nil {
		return ""
	}
	return t.rt.Name()
}

// String returns a Go-like spelling of the type.
func (t Type) String() string {
	switch {
	case t.variable != "":
		return t.variable
	case t.rt == nil:
		return "<invalid>"
	case t.rt == Any.rt:
		return "any"
	}
	return t.rt.String()
}

// Args returns the generic type arguments of composite types: the element
// type of slices, arrays, pointers and channels, and the key followed by the
// element type of maps. Other types have no arguments.
func (t Type) Args() []Type {
	if t.rt == nil {
		return nil
	}
	switch t.rt.Kind() {
	case reflect.Slice, reflect.Array, reflect.Pointer, reflect.Chan:
		return []Type{{rt: t.rt.Elem()}}
	case reflect.Map:
		return []Type{{rt: t.rt.Key()}, {rt: t.rt.Elem()}}
	}
	return nil
}

// Elem returns the first type argument, or [Invalid] when there is none.
func (t Type) Elem() Type {
	if args := t.Args(); len(args) > 0 {
		return args[len(args)-1]
	}
	return Invalid
}

// IsInterface reports whether t is an interface type.
func (t Type) IsInterface() bool {
	return t.Kind() == reflect.Interface
}

// IsInstanceOf reports whether every value of t can be stored in a variable
// of type other without conversion: the types are identical, or other is an
// interface that t implements.
func (t Type) IsInstanceOf(other Type) bool {
	if t == other {
		return t.IsValid()
	}
	if t.rt == nil || other.rt == nil {
		return false
	}
	if other.rt.Kind() != reflect.Interface {
		return false
	}
	return t.rt.Implements(other.rt)
}

// IsInstance reports whether the dynamic type of v is an instance of t.
// A nil value is an instance of interface, pointer, slice, map, chan and
// func types.
func (t Type) IsInstance(v any) bool {
	if v == nil {
		return t.Nillable()
	}
	return TypeOf(v).IsInstanceOf(t)
}

// Nillable reports whether nil is a valid value of t.
func (t Type) Nillable() bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// IsPrimitive reports whether t is a basic value type: a boolean, numeric or
// string kind.
func (t Type) IsPrimitive() bool {
	return isBasicKind(t.Kind())
}

// IsBoxed reports whether t is a pointer to a primitive type.
func (t Type) IsBoxed() bool {
	return t.Kind() == reflect.Pointer && isBasicKind(t.rt.Elem().Kind())
}

// Boxed returns the pointer counterpart of a primitive type and t itself for
// every other type.
func (t Type) Boxed() Type {
	if !t.IsPrimitive() {
		return t
	}
	return Type{rt: reflect.PointerTo(t.rt)}
}

// Unboxed returns the element of a pointer to a primitive type and t itself
// for every other type.
func (t Type) Unboxed() Type {
	if !t.IsBoxed() {
		return t
	}
	return Type{rt: t.rt.Elem()}
}

// Zero returns the zero value of t as an interface value, or nil when t is
// not resolved.
func (t Type) Zero() any {
	if t.rt == nil {
		return nil
	}
	return reflect.Zero(t.rt).Interface()
}

// SliceOf returns the descriptor of []t.
func SliceOf(t Type) Type {
	if t.rt == nil {
		return Invalid
	}
	return Type{rt: reflect.SliceOf(t.rt)}
}

// PointerTo returns the descriptor of *t.
func PointerTo(t Type) Type {
	if t.rt == nil {
		return Invalid
	}
	return Type{rt: reflect.PointerTo(t.rt)}
}

// MapOf returns the descriptor of map[key]elem. It returns [Invalid] when key
// is not comparable.
func MapOf(key, elem Type) Type {
	if key.rt == nil || elem.rt == nil || !key.rt.Comparable() {
		return Invalid
	}
	return Type{rt: reflect.MapOf(key.rt, elem.rt)}
}

func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
