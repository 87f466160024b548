// Package typedecl describes Go types for conversion resolution.
//
// # Overview
//
// A [Type] is a small comparable descriptor around a [reflect.Type]. It adds
// the few operations the conversion engine needs on top of reflection: a
// subtyping relation ([Type.IsInstanceOf]), access to generic type arguments
// ([Type.Args]) and the boxed/unboxed counterpart of primitive value types
// ([Type.Boxed], [Type.Unboxed]).
//
// Descriptors are created with [Of], [FromReflect] or [TypeOf]:
//
//	s := typedecl.Of[string]()
//	n := typedecl.TypeOf(42)            // int
//	e := typedecl.Of[error]()           // interface types work too
//
// Because Type is comparable it can be used directly as a map key. Two
// descriptors are equal exactly when reflect considers the types identical,
// which covers both the raw identity and all type arguments.
//
// # Subtyping
//
// IsInstanceOf is true when both types are identical, or when the other type
// is an interface implemented by this type. [Any] (the empty interface) is the
// top type: every valid type is an instance of it.
//
// Go's rule that a named and an unnamed type with the same underlying type are
// mutually assignable is not part of the relation. It is not transitive
// (type A []int and type B []int are both assignable to []int but not to each
// other), and the resolution caches depend on transitivity.
//
// # Type Variables
//
// [Variable] creates a placeholder for a type that is not known yet. Variables
// are valid descriptors but are not resolved, and the conversion registry
// rejects converters that mention them.
//
// # Catalog
//
// A [Catalog] maps names to types and parses type expressions such as
// "[]int", "map[string]*float64" or "[4]byte". [DefaultCatalog] knows the
// predeclared Go types plus a handful of common standard library types, and
// more can be registered at startup.
package typedecl
