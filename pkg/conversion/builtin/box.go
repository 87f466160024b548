package builtin

import (
	"reflect"

	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// basics lists a zero value of every basic type.
var basics = []any{
	false, "",
	int(0), int8(0), int16(0), int32(0), int64(0),
	uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
	float32(0), float64(0), complex64(0), complex128(0),
}

func boxing() []conversion.Converter {
	cs := make([]conversion.Converter, 0, len(basics))
	for _, zero := range basics {
		cs = append(cs, boxDuplex(typedecl.TypeOf(zero)))
	}
	return cs
}

// boxDuplex converts between t and *t.
func boxDuplex(t typedecl.Type) conversion.Duplex {
	rt := t.Reflect()
	box := func(v any) (any, bool) {
		p := reflect.New(rt)
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), true
	}
	unbox := func(v any) (any, bool) {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return conversion.NewDuplex(t, t.Boxed(), box, unbox, conversion.WithName("Box"))
}
