// Package ctyconv connects cty values, the dynamic values of HCL, to the
// conversion registry.
//
// [Register] installs converters from [cty.Value] to string, float64, int64,
// bool, []any and map[string]any, a polymorphic converter from any Go value
// to cty.Value, and a lazy provider that decodes a cty.Value into any Go type
// gocty understands. Together with the builtin converters this lets the
// registry turn an HCL expression such as ["1", 2] into a []int.
package ctyconv

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// ValueType is the descriptor of cty.Value.
var ValueType = typedecl.Of[cty.Value]()

// Register installs the cty converters and provider into r.
func Register(r *conversion.Registry) error {
	for _, c := range Converters() {
		if err := r.RegisterConverter(c); err != nil {
			return err
		}
	}
	return r.RegisterProvider(conversion.ProviderFunc(decodeProvider))
}

// Converters returns the cty converters.
func Converters() []conversion.Converter {
	return []conversion.Converter{
		conversion.Typed(func(v cty.Value) (string, bool) {
			var s string
			return s, decodeAs(v, cty.String, &s)
		}, conversion.WithName("CtyString")),
		conversion.Typed(func(v cty.Value) (float64, bool) {
			var f float64
			return f, decodeAs(v, cty.Number, &f)
		}, conversion.WithName("CtyNumber")),
		conversion.Typed(func(v cty.Value) (int64, bool) {
			var n int64
			return n, decodeAs(v, cty.Number, &n)
		}, conversion.WithName("CtyInt")),
		conversion.Typed(func(v cty.Value) (bool, bool) {
			var b bool
			return b, decodeAs(v, cty.Bool, &b)
		}, conversion.WithName("CtyBool")),
		conversion.Typed(func(v cty.Value) ([]any, bool) {
			if !v.IsKnown() || v.IsNull() || !(v.Type().IsListType() || v.Type().IsTupleType() || v.Type().IsSetType()) {
				return nil, false
			}
			out, err := Native(v)
			if err != nil {
				return nil, false
			}
			return out.([]any), true
		}, conversion.WithName("CtyList")),
		conversion.Typed(func(v cty.Value) (map[string]any, bool) {
			if !v.IsKnown() || v.IsNull() || !(v.Type().IsMapType() || v.Type().IsObjectType()) {
				return nil, false
			}
			out, err := Native(v)
			if err != nil {
				return nil, false
			}
			return out.(map[string]any), true
		}, conversion.WithName("CtyMap")),
		&toValue{input: typedecl.Any},
	}
}

// decodeAs converts v to ty and decodes the result into target.
func decodeAs(v cty.Value, ty cty.Type, target any) bool {
	if !v.IsWhollyKnown() || v.IsNull() {
		return false
	}
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return false
	}
	return gocty.FromCtyValue(converted, target) == nil
}

// Native converts v into plain Go values: string, float64, bool, []any and
// map[string]any. Null and unknown values become nil.
func Native(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			nv, err := Native(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			nv, err := Native(ev)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = nv
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "cty type %s has no Go counterpart", ty.FriendlyName())
}

// ParseExpr evaluates a literal HCL expression such as `[1, "two"]` or
// `{ a = true }` without variables or functions.
func ParseExpr(src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, errors.Wrap(errors.ErrCodeInvalidInput, diags, "parse expression")
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, errors.Wrap(errors.ErrCodeInvalidInput, diags, "evaluate expression")
	}
	return v, nil
}

// =============================================================================
// Go to cty
// =============================================================================

// toValue converts Go values to cty.Value. It specializes for every type gocty
// can imply a cty type for.
type toValue struct {
	input typedecl.Type
	ty    cty.Type
}

func (c *toValue) Input() typedecl.Type  { return c.input }
func (c *toValue) Output() typedecl.Type { return ValueType }
func (c *toValue) Lazy() bool            { return false }
func (c *toValue) AcceptsNilInput() bool { return false }

// Specialize implies the cty type of input. Interface types and types gocty
// cannot describe do not specialize.
func (c *toValue) Specialize(input typedecl.Type, _ conversion.Lookup) conversion.Converter {
	if input == typedecl.Any {
		return c
	}
	if !input.IsResolved() || input.IsInterface() || input == ValueType {
		return nil
	}
	ty, err := gocty.ImpliedType(input.Zero())
	if err != nil {
		return nil
	}
	return &toValue{input: input, ty: ty}
}

func (c *toValue) ConvertInput(value any) (any, bool) {
	if c.input == typedecl.Any {
		return nil, false
	}
	v, err := gocty.ToCtyValue(value, c.ty)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (c *toValue) String() string {
	if c.input == typedecl.Any {
		return fmt.Sprintf("ToCty{%s -> cty.Value}", c.input)
	}
	return fmt.Sprintf("ToCty{%s -> %s}", c.input, c.ty.FriendlyName())
}

// =============================================================================
// cty to Go
// =============================================================================

// decodeProvider offers a lazy decoder from cty.Value into output when gocty
// can describe output.
func decodeProvider(output typedecl.Type) []conversion.Converter {
	if !output.IsResolved() || output.IsInterface() || output == ValueType {
		return nil
	}
	ty, err := gocty.ImpliedType(output.Zero())
	if err != nil {
		return nil
	}
	rt := output.Reflect()
	fn := func(v any) (any, bool) {
		val, ok := v.(cty.Value)
		if !ok || !val.IsWhollyKnown() {
			return nil, false
		}
		converted, err := convert.Convert(val, ty)
		if err != nil {
			return nil, false
		}
		p := reflect.New(rt)
		if err := gocty.FromCtyValue(converted, p.Interface()); err != nil {
			return nil, false
		}
		return p.Elem().Interface(), true
	}
	return []conversion.Converter{
		conversion.NewFunc(ValueType, output, fn, conversion.WithLazy(), conversion.WithName("CtyDecode")),
	}
}
