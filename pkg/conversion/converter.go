package conversion

import (
	"fmt"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// Converter transforms values of one type into values of another.
//
// Implementations must be safe for concurrent use and must not change their
// input or output type after creation.
type Converter interface {
	// Input is the type of values the converter accepts.
	Input() typedecl.Type

	// Output is the type of values the converter produces.
	Output() typedecl.Type

	// ConvertInput transforms value, which the caller guarantees to be an
	// instance of Input, or nil when AcceptsNilInput is true. The boolean is
	// false when the value could not be converted.
	ConvertInput(value any) (any, bool)

	// Lazy reports whether the converter should only be used when no other
	// path to its output exists.
	Lazy() bool

	// AcceptsNilInput reports whether nil is passed to ConvertInput instead of
	// failing the conversion.
	AcceptsNilInput() bool

	String() string
}

// Convert applies c to value. It fails when value is not an instance of the
// converter's input type, or is nil and c does not accept nil.
func Convert(c Converter, value any) (any, bool) {
	if c == nil {
		return nil, false
	}
	if value == nil {
		if !c.AcceptsNilInput() {
			return nil, false
		}
		return c.ConvertInput(nil)
	}
	if !typedecl.TypeOf(value).IsInstanceOf(c.Input()) {
		return nil, false
	}
	return c.ConvertInput(value)
}

// ConvertOr applies c to value and returns def when the conversion fails.
func ConvertOr(c Converter, value, def any) any {
	if out, ok := Convert(c, value); ok {
		return out
	}
	return def
}

// As applies c to value and asserts the result to O.
func As[O any](c Converter, value any) (O, bool) {
	out, ok := Convert(c, value)
	if !ok {
		var zero O
		return zero, false
	}
	if out == nil {
		var zero O
		return zero, typedecl.Of[O]().Nillable()
	}
	o, ok := out.(O)
	return o, ok
}

// =============================================================================
// Options
// =============================================================================

// Option configures converters built with [NewFunc] and [Typed].
type Option func(*base)

// WithLazy marks the converter as lazy.
func WithLazy() Option {
	return func(b *base) { b.lazy = true }
}

// WithNilInput makes the converter receive nil values.
func WithNilInput() Option {
	return func(b *base) { b.acceptsNil = true }
}

// WithName sets the name shown by String.
func WithName(name string) Option {
	return func(b *base) { b.name = name }
}

// base holds the fields shared by most converter implementations.
type base struct {
	input         typedecl.Type
	output        typedecl.Type
	lazy          bool
	acceptsNil    bool
	acceptsNilOut bool
	name          string
}

func newBase(input, output typedecl.Type, opts []Option) base {
	b := base{input: input, output: output}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Input() typedecl.Type  { return b.input }
func (b *base) Output() typedecl.Type { return b.output }
func (b *base) Lazy() bool            { return b.lazy }
func (b *base) AcceptsNilInput() bool { return b.acceptsNil }

func (b *base) describe(kind string) string {
	name := b.name
	if name == "" {
		name = kind
	}
	return fmt.Sprintf("%s{%s -> %s}", name, b.input, b.output)
}

// =============================================================================
// Func
// =============================================================================

// Func is a converter backed by a plain function.
type Func struct {
	base
	fn func(any) (any, bool)
}

// NewFunc returns a converter from input to output that calls fn.
func NewFunc(input, output typedecl.Type, fn func(any) (any, bool), opts ...Option) *Func {
	return &Func{base: newBase(input, output, opts), fn: fn}
}

// Typed returns a converter from I to O that calls fn with a typed argument.
// A nil value reaches fn as the zero I when [WithNilInput] is set.
func Typed[I, O any](fn func(I) (O, bool), opts ...Option) *Func {
	input, output := typedecl.Of[I](), typedecl.Of[O]()
	if fn == nil {
		return NewFunc(input, output, nil, opts...)
	}
	return NewFunc(input, output, func(v any) (any, bool) {
		in, ok := v.(I)
		if !ok && v != nil {
			return nil, false
		}
		out, ok := fn(in)
		if !ok {
			return nil, false
		}
		return out, true
	}, opts...)
}

// ConvertInput calls the wrapped function.
func (f *Func) ConvertInput(value any) (any, bool) {
	return f.fn(value)
}

func (f *Func) String() string {
	return f.describe("Func")
}
