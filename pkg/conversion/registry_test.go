package conversion

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

func TestFindDirectHit(t *testing.T) {
	r := newTestRegistry()
	c := itoa()
	if err := r.RegisterConverter(c); err != nil {
		t.Fatal(err)
	}

	got := r.Find(tInt, tString)
	if got != Converter(c) {
		t.Fatalf("Find(int, string) = %v, want the registered converter", got)
	}
	if v, ok := Convert(got, 5); !ok || v != "5" {
		t.Errorf("convert(5) = %v, %v; want \"5\"", v, ok)
	}
}

func TestFindTwoHopChain(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())

	got := r.Find(tInt, tInt64)
	chain, ok := got.(*ChainConverter)
	if !ok {
		t.Fatalf("Find(int, int64) = %T, want *ChainConverter", got)
	}
	if n := len(chain.Stages()); n != 2 {
		t.Errorf("chain has %d stages, want 2", n)
	}
	if v, ok := Convert(chain, 5); !ok || v != int64(5) {
		t.Errorf("convert(5) = %v, %v; want int64(5)", v, ok)
	}
}

func TestChainCompositionMatchesStages(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())

	ac := r.Find(tInt, tInt64)
	ab := r.Find(tInt, tString)
	bc := r.Find(tString, tInt64)

	for _, x := range []int{0, 1, -7, 1 << 40} {
		mid, ok := Convert(ab, x)
		if !ok {
			t.Fatalf("int -> string failed for %d", x)
		}
		want, _ := Convert(bc, mid)
		got, _ := Convert(ac, x)
		if got != want {
			t.Errorf("chain(%d) = %v, stages give %v", x, got, want)
		}
	}
}

func TestFindInheritedInput(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(formatNumber())

	c := r.Find(tInteger, tString)
	if c == nil {
		t.Fatal("Find(integer, string) should use the number converter")
	}
	if v, ok := Convert(c, integer(5)); !ok || v != "5" {
		t.Errorf("convert(integer(5)) = %v, %v", v, ok)
	}
}

func TestFindInheritedOutput(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(circleOf())

	c := r.Find(tFloat, tShape)
	if c == nil {
		t.Fatal("Find(float64, shape) should use the circle converter")
	}
	v, ok := Convert(c, 2.0)
	if !ok {
		t.Fatal("conversion failed")
	}
	if _, isShape := v.(shape); !isShape {
		t.Errorf("result %T is not a shape", v)
	}
}

func TestFindIdentity(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		in, out typedecl.Type
		value   any
	}{
		{tInt, tInt, 3},
		{tInteger, tNumber, integer(3)},
		{tCircle, tShape, circle{R: 1}},
		{tString, tAny, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.in.String()+"->"+tt.out.String(), func(t *testing.T) {
			c := r.Find(tt.in, tt.out)
			if _, ok := c.(*NullConverter); !ok {
				t.Fatalf("Find = %T, want *NullConverter", c)
			}
			if got, ok := Convert(c, tt.value); !ok || got != tt.value {
				t.Errorf("convert(%v) = %v, %v", tt.value, got, ok)
			}
		})
	}
}

func TestFindCastingFallback(t *testing.T) {
	r := newTestRegistry()

	c := r.Find(tNumber, tInteger)
	if _, ok := c.(*CastingConverter); !ok {
		t.Fatalf("Find(number, integer) = %T, want *CastingConverter", c)
	}
	if r.Find(tInt, tString) != nil {
		t.Error("Find(int, string) on an empty registry should be nil")
	}
}

func TestFindPriority(t *testing.T) {
	direct := Typed(func(i int) (shape, bool) { return circle{R: 1}, true }, WithName("Direct"))
	provided := Typed(func(i int) (shape, bool) { return circle{R: 2}, true }, WithName("Provided"))
	inherited := Typed(func(i int) (circle, bool) { return circle{R: 3}, true }, WithName("Inherited"))
	provider := ProviderFunc(func(out typedecl.Type) []Converter {
		if out == tShape {
			return []Converter{provided}
		}
		return nil
	})

	tests := []struct {
		name     string
		direct   bool
		provider bool
		want     Converter
	}{
		{"direct wins", true, true, direct},
		{"provider beats inherited", false, true, provided},
		{"inherited alone", false, false, inherited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			r.MustRegister(inherited)
			if tt.provider {
				if err := r.RegisterProvider(provider); err != nil {
					t.Fatal(err)
				}
			}
			if tt.direct {
				r.MustRegister(direct)
			}
			if got := r.Find(tInt, tShape); got != tt.want {
				t.Errorf("Find(int, shape) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderOrder(t *testing.T) {
	first := Typed(func(i int) (string, bool) { return "first", true })
	second := Typed(func(i int) (string, bool) { return "second", true })
	r := newTestRegistry()
	for _, c := range []Converter{first, second} {
		_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
			if out == tString {
				return []Converter{c}
			}
			return nil
		}))
	}
	if got := r.Find(tInt, tString); got != Converter(first) {
		t.Errorf("Find = %v, want the first provider's converter", got)
	}
}

func TestCacheCoherence(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(parseInt64())

	if r.Find(tInt, tInt64) != nil {
		t.Fatal("int -> int64 should not resolve yet")
	}
	r.MustRegister(itoa())
	if r.Find(tInt, tInt64) == nil {
		t.Error("stale miss returned after registering itoa")
	}
}

func TestProviderInvalidation(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterProvider(ProviderFunc(func(typedecl.Type) []Converter { return nil })); err != nil {
		t.Fatal(err)
	}
	if r.Find(tInt, tShape) != nil {
		t.Fatal("int -> shape should not resolve")
	}

	r.MustRegister(Typed(func(i int) (shape, bool) { return circle{R: float64(i)}, true }))
	c := r.Find(tInt, tShape)
	if c == nil {
		t.Fatal("int -> shape should resolve after registration")
	}
	if v, _ := Convert(c, 2); v != (circle{R: 2}) {
		t.Errorf("convert(2) = %v", v)
	}
}

func TestRegistrationResetsTree(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())
	if _, ok := r.Find(tInt, tInt64).(*ChainConverter); !ok {
		t.Fatal("expected a chain before the direct registration")
	}

	direct := Typed(func(i int) (int64, bool) { return int64(i), true })
	r.MustRegister(direct)
	if got := r.Find(tInt, tInt64); got != Converter(direct) {
		t.Errorf("Find = %v, want the direct converter", got)
	}
}

func TestLazyConvertersAreLastResort(t *testing.T) {
	lazy := Typed(func(i int) (string, bool) { return "lazy", true }, WithLazy())
	widen := Typed(func(i int) (int64, bool) { return int64(i), true })
	format := Typed(func(n int64) (string, bool) { return strconv.FormatInt(n, 10), true })

	r := newTestRegistry()
	r.MustRegister(lazy)
	if got := r.Find(tInt, tString); got != Converter(lazy) {
		t.Fatalf("Find = %v, want the lazy converter when nothing else exists", got)
	}

	r.MustRegister(widen, format)
	got := r.Find(tInt, tString)
	if v, _ := Convert(got, 4); v != "4" {
		t.Errorf("convert(4) = %v via %v, want the non-lazy chain", v, got)
	}
}

func TestRejectedRegistration(t *testing.T) {
	fn := func(v any) (any, bool) { return v, true }

	tests := []struct {
		name string
		conv Converter
		code errors.Code
	}{
		{"nil", nil, errors.ErrCodeInvalidConverter},
		{"typed nil", (*Func)(nil), errors.ErrCodeInvalidConverter},
		{"invalid input", NewFunc(typedecl.Invalid, tString, fn), errors.ErrCodeInvalidType},
		{"unresolved output", NewFunc(tInt, typedecl.Variable("T"), fn), errors.ErrCodeUnresolvedType},
		{"nil func", NewFunc(tInt, tString, nil), errors.ErrCodeInvalidConverter},
		{"nil typed func", Typed[int, string](nil), errors.ErrCodeInvalidConverter},
		{"nil duplex func", TypedDuplex(func(i int) (string, bool) { return strconv.Itoa(i), true }, nil), errors.ErrCodeInvalidConverter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			err := r.RegisterConverter(tt.conv)
			if !errors.Is(err, tt.code) {
				t.Errorf("RegisterConverter error = %v, want %s", err, tt.code)
			}
			if s := r.Stats(); s.Converters != 0 || s.Generation != 0 {
				t.Errorf("registry changed after rejection: %+v", s)
			}
		})
	}

	if err := newTestRegistry().RegisterProvider(nil); !errors.Is(err, errors.ErrCodeInvalidProvider) {
		t.Errorf("RegisterProvider(nil) error = %v", err)
	}
}

func TestProviderResultsAreValidated(t *testing.T) {
	r := newTestRegistry()
	_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
		// Claims to serve every output but always produces int.
		return []Converter{Typed(func(s string) (int, bool) { return len(s), true })}
	}))

	if c := r.Find(tString, tBool); c != nil {
		t.Errorf("Find(string, bool) = %v, want nil", c)
	}
	if c := r.Find(tString, tInt); c == nil {
		t.Error("Find(string, int) should use the provided converter")
	}
}

func TestDuplexRegistration(t *testing.T) {
	d := TypedDuplex(
		func(i int) (string, bool) { return strconv.Itoa(i), true },
		func(s string) (int, bool) {
			n, err := strconv.Atoi(s)
			return n, err == nil
		},
	)
	r := newTestRegistry()
	r.MustRegister(d)

	if got := r.Find(tInt, tString); got != Converter(d) {
		t.Errorf("Find(int, string) = %v, want the duplex", got)
	}
	back := r.Find(tString, tInt)
	if v, ok := Convert(back, "7"); !ok || v != 7 {
		t.Errorf("reverse convert(\"7\") = %v, %v", v, ok)
	}

	if got, err := r.FindDuplex(tInt, tString); err != nil || got != Duplex(d) {
		t.Errorf("FindDuplex = %v, %v; want the registered duplex", got, err)
	}
}

func TestFindDuplexFromLegs(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), Typed(func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}))

	d, err := r.FindDuplex(tInt, tString)
	if err != nil || d == nil {
		t.Fatal("FindDuplex should pair the two registered converters")
	}
	if v, _ := Convert(d, 12); v != "12" {
		t.Errorf("forward = %v", v)
	}
	if v, _ := ConvertReverse(d, "12"); v != 12 {
		t.Errorf("reverse = %v", v)
	}
	if d, err := r.FindDuplex(tInt, tBool); d != nil || err != nil {
		t.Errorf("FindDuplex with a missing leg = %v, %v; want nil, nil", d, err)
	}
}

func TestFindOutputDispatch(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), Typed(func(f float64) (string, bool) {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}))

	poly := r.FindOutput(tString)
	if r.Find(tAny, tString) != Converter(poly) {
		t.Error("Find(any, string) should return the tree's input converter")
	}

	tests := []struct {
		value any
		want  any
		ok    bool
	}{
		{5, "5", true},
		{2.5, "2.5", true},
		{"as is", "as is", true},
		{true, nil, false},
	}
	for _, tt := range tests {
		got, ok := Convert(poly, tt.value)
		if ok != tt.ok || got != tt.want {
			t.Errorf("convert(%v) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}

	r.MustRegister(Typed(func(b bool) (string, bool) { return strconv.FormatBool(b), true }))
	if got, ok := Convert(poly, true); !ok || got != "true" {
		t.Errorf("after registration convert(true) = %v, %v", got, ok)
	}
}

func TestFindNilInput(t *testing.T) {
	r := newTestRegistry()
	nilConv := Typed(func(p *int) (string, bool) {
		if p == nil {
			return "null", true
		}
		return strconv.Itoa(*p), true
	}, WithNilInput())
	r.MustRegister(itoa(), nilConv)

	if got := r.FindNilInput(tString); got != Converter(nilConv) {
		t.Errorf("FindNilInput = %v, want the nil accepting converter", got)
	}
	if got, ok := Convert(r.FindOutput(tString), nil); !ok || got != "null" {
		t.Errorf("convert(nil) = %v, %v", got, ok)
	}
	if r.FindNilInput(tInt) != nil {
		t.Error("FindNilInput(int) should be nil")
	}
}

func TestTo(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())

	if got, ok := To[int64](r, 9); !ok || got != 9 {
		t.Errorf("To[int64](9) = %v, %v", got, ok)
	}
	if c := FindFor[int, int64](r); c == nil {
		t.Error("FindFor[int, int64] should resolve")
	}
}

func TestConverters(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), formatNumber(), circleOf())

	if got := len(r.Converters(tString)); got != 2 {
		t.Errorf("Converters(string) has %d entries, want 2", got)
	}
	if got := len(r.Converters(tShape)); got != 1 {
		t.Errorf("Converters(shape) has %d entries, want the inherited circle converter", got)
	}
}

func TestStatsAndWriteCache(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())

	r.Find(tInt, tInt64)
	r.Find(tInt, tInt64)
	r.Find(tBool, tInt64)

	s := r.Stats()
	if s.Converters != 2 {
		t.Errorf("Converters = %d, want 2", s.Converters)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 {
		t.Errorf("hits/misses = %d/%d, want 1/2", s.CacheHits, s.CacheMisses)
	}
	if s.CachedPairs != 2 || s.Trees != 1 || s.Generation != 2 {
		t.Errorf("unexpected stats %+v", s)
	}

	var buf bytes.Buffer
	if err := r.WriteCache(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "bool -> int64: <nil>") {
		t.Errorf("cached miss missing from:\n%s", out)
	}
	if !strings.Contains(out, "int -> int64: Chain{") {
		t.Errorf("cached chain missing from:\n%s", out)
	}
}

func TestDebugTree(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64(), Typed(func(b bool) (int64, bool) { return 0, true }))

	out := r.DebugTree(tInt, tInt64)
	for _, want := range []string{
		"====== Converting int -> int64 ======",
		">>int64<<",
		"  >>string<<  via ParseInt{string -> int64}",
		"    >>int<<  via Itoa{int -> string}",
		"  bool  via Func{bool -> int64}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DebugTree missing %q in:\n%s", want, out)
		}
	}

	snap := r.Snapshot(tBool, tString)
	if snap.Found {
		t.Error("bool -> string should not be found")
	}
	if !strings.Contains(snap.String(), "no converter found") {
		t.Errorf("snapshot should report the miss:\n%s", snap)
	}
}

func TestConcurrentUse(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if c := r.Find(tInt, tInt64); c == nil {
					t.Error("Find returned nil during concurrent use")
					return
				}
				if j%10 == 0 {
					_ = r.RegisterConverter(Typed(func(b bool) (string, bool) { return "b", true }))
				}
				if v, ok := To[string](r, i); !ok || v != strconv.Itoa(i) {
					t.Errorf("To[string](%d) = %v, %v", i, v, ok)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestRegistryID(t *testing.T) {
	a, b := newTestRegistry(), newTestRegistry()
	if a.ID() == b.ID() {
		t.Error("registries should have distinct ids")
	}
}

// flaky panics the first time it is specialized for one input type and
// handles no input otherwise.
type flaky struct {
	base
	on    typedecl.Type
	fired bool
}

func newFlaky(output, on typedecl.Type) *flaky {
	return &flaky{base: base{input: tAny, output: output}, on: on}
}

func (c *flaky) Specialize(input typedecl.Type, _ Lookup) Converter {
	if input == c.on && !c.fired {
		c.fired = true
		panic("specialize " + input.String())
	}
	return nil
}

func (c *flaky) ConvertInput(any) (any, bool) { return nil, false }
func (c *flaky) String() string               { return c.describe("Flaky") }

func recovered(fn func()) (p any) {
	defer func() { p = recover() }()
	fn()
	return nil
}

func TestFindDuplexUnlocksAfterPanic(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(newFlaky(tString, tInt))

	if p := recovered(func() { _, _ = r.FindDuplex(tInt, tString) }); p == nil {
		t.Fatal("FindDuplex should propagate the specialization panic")
	}

	done := make(chan Converter, 1)
	go func() { done <- r.Find(tInt, tString) }()
	select {
	case c := <-done:
		if c != nil {
			t.Errorf("Find(int, string) = %v, want nil", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("registry stayed locked after a panic in FindDuplex")
	}
}

func TestTreeResetAfterPanic(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(
		parseInt64(),
		newFlaky(tString, tInt64),
		Typed(func(f float64) (string, bool) { return strconv.FormatFloat(f, 'g', -1, 64), true }),
		Typed(func(b bool) (float64, bool) {
			if b {
				return 1, true
			}
			return 0, true
		}),
	)

	// The panic happens while the third layer is expanded, before the node
	// leading to bool is reached.
	if p := recovered(func() { r.Find(tBool, tInt64) }); p == nil {
		t.Fatal("Find should propagate the specialization panic")
	}

	c := r.Find(tBool, tInt64)
	if c == nil {
		t.Fatal("Find(bool, int64) should resolve after a failed search")
	}
	if v, ok := Convert(c, true); !ok || v != int64(1) {
		t.Errorf("convert(true) = %v, %v; want 1", v, ok)
	}
}

func TestProviderPanicIsSkipped(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(itoa(), parseInt64())
	calls := 0
	_ = r.RegisterProvider(ProviderFunc(func(out typedecl.Type) []Converter {
		if out != tString {
			return nil
		}
		calls++
		if calls == 1 {
			panic("provider failed")
		}
		return nil
	}))

	chain, ok := r.Find(tInt, tInt64).(*ChainConverter)
	if !ok || len(chain.Stages()) != 2 {
		t.Fatalf("Find(int, int64) = %v, want the two-stage chain", chain)
	}

	// The listing stayed dirty, so the provider is asked again once.
	r.Converters(tString)
	r.Converters(tString)
	if calls != 2 {
		t.Errorf("provider called %d times, want 2", calls)
	}
}
