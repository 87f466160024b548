// Package conversion resolves converters between arbitrary Go types at
// runtime.
//
// # Overview
//
// A [Converter] turns values of one type into values of another. Converters
// are registered with a [Registry], which answers requests of the form "give
// me something that turns an A into a B" by returning a registered converter,
// chaining several of them, or bridging types that need no conversion at all:
//
//	r := conversion.NewRegistry()
//	r.MustRegister(
//	    conversion.Typed(func(i int) (string, bool) { return strconv.Itoa(i), true }),
//	    conversion.Typed(func(s string) (int64, bool) { ... }),
//	)
//	c := r.Find(typedecl.Of[int](), typedecl.Of[int64]()) // int -> string -> int64
//	v, ok := conversion.Convert(c, 42)
//
// # Resolution
//
// Find answers in this order:
//
//  1. An input type that already is an instance of the output type resolves
//     to a [NullConverter].
//  2. Otherwise the conversion tree of the output type is searched. Trees grow
//     breadth first from the output type, so the shortest chain wins. Lazy
//     converters are only used when no path of non-lazy converters exists.
//  3. When the output type is an instance of the input type, a
//     [CastingConverter] checks the runtime value.
//  4. Otherwise Find returns nil.
//
// Results are cached per pair, misses included, until the next registration.
// Registering a converter only discards the trees that reached its input or
// output type; registering a [Provider] discards all of them.
//
// # Listings
//
// For every output type the registry keeps a listing with at most one
// converter per input type. Directly registered converters win over provider
// results, which win over converters inherited from more specific output
// types. A converter producing *bytes.Buffer is therefore also listed as a
// converter producing io.Reader.
//
// # Polymorphic Converters
//
// A [Polymorphic] converter is specialized for the concrete input type before
// use. [InputConverter] is the main example: it accepts any value and picks a
// converter per runtime type. Providers use polymorphic converters for
// families such as slices, where converting []A to []B needs the element
// converter from A to B.
//
// # Failure
//
// Resolution never returns an error. A [LazyConverter] defers resolution to
// first use and turns into a [FailingConverter] when nothing is found; its
// Init method returns the UNSUPPORTED error and invoking it panics with that
// error.
package conversion
