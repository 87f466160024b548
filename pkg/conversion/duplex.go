package conversion

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// Duplex is a converter bundled with its inverse.
type Duplex interface {
	Converter

	// ConvertOutput transforms a value of the output type back into the input
	// type. The caller guarantees value is an instance of Output, or nil when
	// AcceptsNilOutput is true.
	ConvertOutput(value any) (any, bool)

	// AcceptsNilOutput reports whether nil is passed to ConvertOutput.
	AcceptsNilOutput() bool

	// Reverse returns the same pair with input and output swapped. Calling
	// Reverse on the result returns the original duplex.
	Reverse() Duplex
}

// ConvertReverse applies the inverse of d to value with the same checks as
// [Convert].
func ConvertReverse(d Duplex, value any) (any, bool) {
	if d == nil {
		return nil, false
	}
	return Convert(d.Reverse(), value)
}

// ConvertReverseOr applies the inverse of d to value and returns def when the
// conversion fails.
func ConvertReverseOr(d Duplex, value, def any) any {
	if out, ok := ConvertReverse(d, value); ok {
		return out
	}
	return def
}

// WithNilOutput makes a duplex pass nil to its reverse function.
func WithNilOutput() Option {
	return func(b *base) { b.acceptsNilOut = true }
}

// =============================================================================
// Func Duplex
// =============================================================================

// FuncDuplex is a duplex backed by a pair of functions.
type FuncDuplex struct {
	base
	fwd     func(any) (any, bool)
	rev     func(any) (any, bool)
	reverse *reversed
}

// NewDuplex returns a duplex between a and b. fwd converts a to b and rev
// converts b back to a.
func NewDuplex(a, b typedecl.Type, fwd, rev func(any) (any, bool), opts ...Option) *FuncDuplex {
	d := &FuncDuplex{base: newBase(a, b, opts), fwd: fwd, rev: rev}
	d.reverse = &reversed{d: d}
	return d
}

// TypedDuplex returns a duplex between A and B built from typed functions.
func TypedDuplex[A, B any](fwd func(A) (B, bool), rev func(B) (A, bool), opts ...Option) *FuncDuplex {
	f := Typed(fwd)
	r := Typed(rev)
	return NewDuplex(f.input, f.output, f.fn, r.fn, opts...)
}

func (d *FuncDuplex) ConvertInput(value any) (any, bool)  { return d.fwd(value) }
func (d *FuncDuplex) ConvertOutput(value any) (any, bool) { return d.rev(value) }
func (d *FuncDuplex) AcceptsNilOutput() bool              { return d.acceptsNilOut }
func (d *FuncDuplex) Reverse() Duplex                     { return d.reverse }

func (d *FuncDuplex) String() string {
	return d.describe("Duplex")
}

// =============================================================================
// Null Duplex
// =============================================================================

// NullDuplex is the identity in both directions.
type NullDuplex struct {
	NullConverter
	reverse *reversed
}

// DuplexNull returns the identity duplex between a and b.
func DuplexNull(a, b typedecl.Type) *NullDuplex {
	d := &NullDuplex{NullConverter: *Null(a, b)}
	d.reverse = &reversed{d: d}
	return d
}

func (d *NullDuplex) ConvertOutput(value any) (any, bool) { return value, true }
func (d *NullDuplex) AcceptsNilOutput() bool              { return d.input.Nillable() }
func (d *NullDuplex) Reverse() Duplex                     { return d.reverse }

func (d *NullDuplex) String() string {
	return d.describe("NullDuplex")
}

// =============================================================================
// Adapter
// =============================================================================

// DuplexAdapter joins two independent converters into a duplex.
type DuplexAdapter struct {
	base
	forward Converter
	back    Converter
	reverse *reversed
}

func newAdapter(forward, back Converter) *DuplexAdapter {
	d := &DuplexAdapter{
		base: base{
			input:         back.Output(),
			output:        forward.Output(),
			lazy:          forward.Lazy() || back.Lazy(),
			acceptsNil:    forward.AcceptsNilInput(),
			acceptsNilOut: back.AcceptsNilInput(),
		},
		forward: forward,
		back:    back,
	}
	d.reverse = &reversed{d: d}
	return d
}

func (d *DuplexAdapter) ConvertInput(value any) (any, bool)  { return d.forward.ConvertInput(value) }
func (d *DuplexAdapter) ConvertOutput(value any) (any, bool) { return d.back.ConvertInput(value) }
func (d *DuplexAdapter) AcceptsNilOutput() bool              { return d.acceptsNilOut }
func (d *DuplexAdapter) Reverse() Duplex                     { return d.reverse }

// Legs returns the forward and reverse converters.
func (d *DuplexAdapter) Legs() (forward, reverse Converter) {
	return d.forward, d.back
}

func (d *DuplexAdapter) String() string {
	return fmt.Sprintf("DuplexAdapter{%s, %s}", d.forward, d.back)
}

// =============================================================================
// Reverse view
// =============================================================================

// reversed swaps the directions of a duplex.
type reversed struct {
	d Duplex
}

func (r *reversed) Input() typedecl.Type                { return r.d.Output() }
func (r *reversed) Output() typedecl.Type               { return r.d.Input() }
func (r *reversed) ConvertInput(value any) (any, bool)  { return r.d.ConvertOutput(value) }
func (r *reversed) ConvertOutput(value any) (any, bool) { return r.d.ConvertInput(value) }
func (r *reversed) Lazy() bool                          { return r.d.Lazy() }
func (r *reversed) AcceptsNilInput() bool               { return r.d.AcceptsNilOutput() }
func (r *reversed) AcceptsNilOutput() bool              { return r.d.AcceptsNilInput() }
func (r *reversed) Reverse() Duplex                     { return r.d }

func (r *reversed) String() string {
	return fmt.Sprintf("Reverse{%s}", r.d)
}

// =============================================================================
// Pairing
// =============================================================================

// Pair joins forward and its inverse reverse into a duplex. It returns nil
// without error when either leg is nil, and a DUPLEX_MISMATCH error when the
// output of one leg is not an instance of the input of the other.
//
// Two identity legs become a [NullDuplex], a forward duplex whose reverse is
// already reverse is returned as is, two [Func] legs are fused into one
// [FuncDuplex], and anything else is wrapped in a [DuplexAdapter].
func Pair(forward, reverse Converter) (Duplex, error) {
	if forward == nil || reverse == nil {
		return nil, nil
	}
	if !forward.Output().IsInstanceOf(reverse.Input()) {
		return nil, errors.New(errors.ErrCodeDuplexMismatch,
			"forward output %s is not accepted by reverse input %s", forward.Output(), reverse.Input())
	}
	if !reverse.Output().IsInstanceOf(forward.Input()) {
		return nil, errors.New(errors.ErrCodeDuplexMismatch,
			"reverse output %s is not accepted by forward input %s", reverse.Output(), forward.Input())
	}

	if d, ok := forward.(Duplex); ok && sameConverter(d.Reverse(), reverse) {
		return d, nil
	}

	_, fNull := forward.(*NullConverter)
	_, rNull := reverse.(*NullConverter)
	if fNull && rNull {
		return DuplexNull(reverse.Output(), forward.Output()), nil
	}

	f, fFunc := forward.(*Func)
	r, rFunc := reverse.(*Func)
	if fFunc && rFunc {
		d := NewDuplex(r.output, f.output, f.fn, r.fn)
		d.lazy = f.lazy || r.lazy
		d.acceptsNil = f.acceptsNil
		d.acceptsNilOut = r.acceptsNil
		return d, nil
	}

	return newAdapter(forward, reverse), nil
}

// MustPair is like Pair but panics when the legs do not form a valid duplex.
func MustPair(forward, reverse Converter) Duplex {
	d, err := Pair(forward, reverse)
	if err != nil {
		panic(err)
	}
	return d
}

// sameConverter compares two converters by identity without panicking on
// uncomparable implementations.
func sameConverter(a, b Converter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
