package conversion

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

type number interface{ Float() float64 }

type integer int

func (i integer) Float() float64 { return float64(i) }

type real float64

func (r real) Float() float64 { return float64(r) }

type shape interface{ Area() float64 }

type circle struct{ R float64 }

func (c circle) Area() float64 { return math.Pi * c.R * c.R }

var (
	tAny     = typedecl.Any
	tInt     = typedecl.Of[int]()
	tInt64   = typedecl.Of[int64]()
	tFloat   = typedecl.Of[float64]()
	tString  = typedecl.Of[string]()
	tBool    = typedecl.Of[bool]()
	tNumber  = typedecl.Of[number]()
	tInteger = typedecl.Of[integer]()
	tShape   = typedecl.Of[shape]()
	tCircle  = typedecl.Of[circle]()
)

func newTestRegistry() *Registry {
	return NewRegistry(WithLogger(log.New(io.Discard)))
}

func itoa() *Func {
	return Typed(func(i int) (string, bool) { return strconv.Itoa(i), true }, WithName("Itoa"))
}

func parseInt64() *Func {
	return Typed(func(s string) (int64, bool) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}, WithName("ParseInt"))
}

func formatNumber() *Func {
	return Typed(func(n number) (string, bool) {
		return fmt.Sprint(n.Float()), true
	}, WithName("FormatNumber"))
}

func circleOf() *Func {
	return Typed(func(r float64) (circle, bool) { return circle{R: r}, true }, WithName("Circle"))
}
