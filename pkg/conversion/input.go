package conversion

import (
	"sync"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// Lookup resolves the converter between two types, returning nil when there
// is none. [*Registry] implements it.
type Lookup interface {
	Find(input, output typedecl.Type) Converter
}

// Polymorphic is implemented by converters whose behavior depends on the
// concrete input type. Specialize returns a converter for exactly input,
// resolving nested conversions through lookup, or nil when input cannot be
// handled. The lookup is only valid for the duration of the call and must not
// be retained by the returned converter.
type Polymorphic interface {
	Converter
	Specialize(input typedecl.Type, lookup Lookup) Converter
}

// generationLookup is implemented by lookups whose answers change over time.
// A changed generation invalidates converters cached from earlier answers.
type generationLookup interface {
	Generation() uint64
}

// nilLookup is implemented by lookups that can pick a converter for nil
// values of any type.
type nilLookup interface {
	FindNilInput(output typedecl.Type) Converter
}

// Specialize returns the converter c narrowed to input when c is
// [Polymorphic], and c itself otherwise.
func Specialize(c Converter, input typedecl.Type, lookup Lookup) Converter {
	if p, ok := c.(Polymorphic); ok {
		return p.Specialize(input, lookup)
	}
	return c
}

// InputConverter accepts values of any type and converts them to one output
// type, choosing a converter from the runtime type of each value.
//
// Converters are looked up once per runtime type and kept in a dispatch
// table. When the lookup reports a generation, the table is dropped whenever
// the generation changes.
type InputConverter struct {
	output typedecl.Type
	lookup Lookup

	mu    sync.RWMutex
	gen   uint64
	table map[typedecl.Type]Converter
}

// NewInputConverter returns a converter to output that dispatches through
// lookup.
func NewInputConverter(output typedecl.Type, lookup Lookup) *InputConverter {
	return &InputConverter{
		output: output,
		lookup: lookup,
		table:  make(map[typedecl.Type]Converter),
	}
}

func (c *InputConverter) Input() typedecl.Type  { return typedecl.Any }
func (c *InputConverter) Output() typedecl.Type { return c.output }
func (c *InputConverter) Lazy() bool            { return false }
func (c *InputConverter) AcceptsNilInput() bool { return true }

// ConvertInput converts value using the converter for its runtime type.
// Values that already are instances of the output type are returned as is.
func (c *InputConverter) ConvertInput(value any) (any, bool) {
	if value == nil {
		nl, ok := c.lookup.(nilLookup)
		if !ok {
			return nil, false
		}
		conv := nl.FindNilInput(c.output)
		if conv == nil {
			return nil, false
		}
		return conv.ConvertInput(nil)
	}

	t := typedecl.TypeOf(value)
	if t.IsInstanceOf(c.output) {
		return value, true
	}
	conv := c.ConverterFor(t)
	if conv == nil {
		return nil, false
	}
	return conv.ConvertInput(value)
}

// ConverterFor returns the converter used for values of type input, or nil.
func (c *InputConverter) ConverterFor(input typedecl.Type) Converter {
	gl, versioned := c.lookup.(generationLookup)
	if !versioned {
		return c.resolve(input, c.lookup)
	}

	gen := gl.Generation()
	c.mu.RLock()
	conv, ok := c.table[input]
	fresh := c.gen == gen
	c.mu.RUnlock()
	if ok && fresh {
		return conv
	}

	conv = c.resolve(input, c.lookup)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		clear(c.table)
		c.gen = gen
	}
	c.table[input] = conv
	return conv
}

// Specialize resolves the converter for input through lookup without
// touching the dispatch table.
func (c *InputConverter) Specialize(input typedecl.Type, lookup Lookup) Converter {
	if input == typedecl.Any {
		return c
	}
	return c.resolve(input, lookup)
}

func (c *InputConverter) resolve(input typedecl.Type, lookup Lookup) Converter {
	if input.IsInstanceOf(c.output) {
		return Null(input, c.output)
	}
	return lookup.Find(input, c.output)
}

func (c *InputConverter) String() string {
	return "Input{any -> " + c.output.String() + "}"
}
