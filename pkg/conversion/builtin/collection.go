package builtin

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// sliceProvider offers a polymorphic converter into every slice type.
func sliceProvider(output typedecl.Type) []conversion.Converter {
	if output.Kind() != reflect.Slice {
		return nil
	}
	return []conversion.Converter{&sliceConverter{input: typedecl.Any, output: output}}
}

// mapProvider offers a polymorphic converter into every map type.
func mapProvider(output typedecl.Type) []conversion.Converter {
	if output.Kind() != reflect.Map {
		return nil
	}
	return []conversion.Converter{&mapConverter{input: typedecl.Any, output: output}}
}

// sliceConverter converts a slice or array into a slice, element by element.
// It only converts once specialized for a concrete input type.
type sliceConverter struct {
	input  typedecl.Type
	output typedecl.Type
	elem   conversion.Converter
}

func (c *sliceConverter) Input() typedecl.Type  { return c.input }
func (c *sliceConverter) Output() typedecl.Type { return c.output }
func (c *sliceConverter) Lazy() bool            { return false }
func (c *sliceConverter) AcceptsNilInput() bool { return false }

// Specialize returns the converter for input, or nil when input is not a
// slice or array or its elements do not convert.
func (c *sliceConverter) Specialize(input typedecl.Type, lookup conversion.Lookup) conversion.Converter {
	if input == typedecl.Any {
		return c
	}
	if k := input.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil
	}
	elem := lookup.Find(input.Elem(), c.output.Elem())
	if elem == nil {
		return nil
	}
	return &sliceConverter{input: input, output: c.output, elem: elem}
}

func (c *sliceConverter) ConvertInput(value any) (any, bool) {
	if c.elem == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	out := reflect.MakeSlice(c.output.Reflect(), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, ok := conversion.Convert(c.elem, rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		if v != nil {
			out.Index(i).Set(reflect.ValueOf(v))
		}
	}
	return out.Interface(), true
}

func (c *sliceConverter) String() string {
	if c.elem == nil {
		return fmt.Sprintf("Slice{%s -> %s}", c.input, c.output)
	}
	return fmt.Sprintf("Slice{%s -> %s via %s}", c.input, c.output, c.elem)
}

// mapConverter converts a map into a map, entry by entry. Keys that collide
// after conversion keep the last converted value.
type mapConverter struct {
	input  typedecl.Type
	output typedecl.Type
	key    conversion.Converter
	value  conversion.Converter
}

func (c *mapConverter) Input() typedecl.Type  { return c.input }
func (c *mapConverter) Output() typedecl.Type { return c.output }
func (c *mapConverter) Lazy() bool            { return false }
func (c *mapConverter) AcceptsNilInput() bool { return false }

// Specialize returns the converter for input, or nil when input is not a map
// or its keys or values do not convert.
func (c *mapConverter) Specialize(input typedecl.Type, lookup conversion.Lookup) conversion.Converter {
	if input == typedecl.Any {
		return c
	}
	if input.Kind() != reflect.Map {
		return nil
	}
	in, out := input.Args(), c.output.Args()
	key := lookup.Find(in[0], out[0])
	if key == nil {
		return nil
	}
	value := lookup.Find(in[1], out[1])
	if value == nil {
		return nil
	}
	return &mapConverter{input: input, output: c.output, key: key, value: value}
}

func (c *mapConverter) ConvertInput(value any) (any, bool) {
	if c.key == nil || c.value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	rt := c.output.Reflect()
	out := reflect.MakeMapWithSize(rt, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, ok := conversion.Convert(c.key, iter.Key().Interface())
		if !ok || k == nil {
			return nil, false
		}
		v, ok := conversion.Convert(c.value, iter.Value().Interface())
		if !ok {
			return nil, false
		}
		mv := reflect.Zero(rt.Elem())
		if v != nil {
			mv = reflect.ValueOf(v)
		}
		out.SetMapIndex(reflect.ValueOf(k), mv)
	}
	return out.Interface(), true
}

func (c *mapConverter) String() string {
	return fmt.Sprintf("Map{%s -> %s}", c.input, c.output)
}
