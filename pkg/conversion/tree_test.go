package conversion

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

var tStrings = typedecl.Of[[]string]()

// toStrings converts any slice to []string once specialized for the slice
// type, using the element converter found through the lookup.
type toStrings struct {
	base
	elem Converter
}

func newToStrings() *toStrings {
	return &toStrings{base: base{input: typedecl.Any, output: tStrings}}
}

func (c *toStrings) Specialize(input typedecl.Type, lookup Lookup) Converter {
	if input.Kind() != reflect.Slice {
		return nil
	}
	elem := lookup.Find(input.Elem(), typedecl.Of[string]())
	if elem == nil {
		return nil
	}
	return &toStrings{base: base{input: input, output: tStrings}, elem: elem}
}

func (c *toStrings) ConvertInput(value any) (any, bool) {
	if c.elem == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	out := make([]string, rv.Len())
	for i := range out {
		s, ok := Convert(c.elem, rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out[i] = s.(string)
	}
	return out, true
}

func (c *toStrings) String() string { return c.describe("ToStrings") }

func TestPolymorphicProvider(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa())
	_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
		if out == tStrings {
			return []Converter{newToStrings()}
		}
		return nil
	}))

	c := r.Find(typedecl.Of[[]int](), tStrings)
	if c == nil {
		t.Fatal("Find([]int, []string) should specialize the slice converter")
	}
	if c.Input() != typedecl.Of[[]int]() {
		t.Errorf("specialized input = %s, want []int", c.Input())
	}
	got, ok := Convert(c, []int{1, 2})
	if !ok || !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("convert([1 2]) = %v, %v", got, ok)
	}

	if c := r.Find(typedecl.Of[[]bool](), tStrings); c != nil {
		t.Errorf("Find([]bool, []string) = %v, want nil without an element converter", c)
	}
	if c := r.Find(tInt, tStrings); c != nil {
		t.Errorf("Find(int, []string) = %v, want nil for a non-slice input", c)
	}
}

func TestPolymorphicChain(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa())
	_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
		if out == tStrings {
			return []Converter{newToStrings()}
		}
		return nil
	}))
	r.MustRegister(Typed(func(ss []string) (string, bool) {
		return strconv.Itoa(len(ss)), true
	}, WithName("Count")))

	c := r.Find(typedecl.Of[[]int](), tString)
	chain, ok := c.(*ChainConverter)
	if !ok {
		t.Fatalf("Find([]int, string) = %T, want a chain", c)
	}
	if got, _ := Convert(chain, []int{4, 5, 6}); got != "3" {
		t.Errorf("convert = %v, want 3", got)
	}
}

// echo resolves its own output type again while being specialized.
type echo struct {
	base
}

func (c *echo) Specialize(input typedecl.Type, lookup Lookup) Converter {
	if inner := lookup.Find(input, c.output); inner != nil {
		return inner
	}
	return nil
}

func (c *echo) ConvertInput(any) (any, bool) { return nil, false }
func (c *echo) String() string               { return c.describe("Echo") }

func TestReentrantSpecialization(t *testing.T) {
	r := newTestRegistry()
	_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
		if out == tString {
			return []Converter{&echo{base: base{input: typedecl.Any, output: tString}}}
		}
		return nil
	}))

	if c := r.Find(tBool, tString); c != nil {
		t.Fatalf("Find(bool, string) = %v, want nil", c)
	}

	// The nested miss must not have been cached.
	r.MustRegister(Typed(func(b bool) (string, bool) { return strconv.FormatBool(b), true }))
	if c := r.Find(tBool, tString); c == nil {
		t.Error("Find(bool, string) should resolve after registration")
	}
}

func TestTreeTouches(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())
	r.Find(tInt, tInt64)

	r.mu.Lock()
	tr := r.trees[tInt64]
	r.mu.Unlock()

	for _, typ := range []typedecl.Type{tInt64, tString, tInt} {
		if !tr.touches(typ) {
			t.Errorf("tree should have reached %s", typ)
		}
	}
	if tr.touches(tBool) {
		t.Error("tree should not have reached bool")
	}

	before := tr.gen
	r.MustRegister(Typed(func(b bool) (float64, bool) { return 1, true }))
	if tr.gen != before {
		t.Error("unrelated registration should not reset the tree")
	}
	r.MustRegister(Typed(func(b bool) (string, bool) { return "b", true }))
	if tr.gen == before {
		t.Error("registration into a reached type should reset the tree")
	}
}
