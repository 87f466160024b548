package typemap

import (
	"bytes"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

var (
	tAny    = typedecl.Any
	tReader = typedecl.Of[io.Reader]()
	tRW     = typedecl.Of[io.ReadWriter]()
	tBuffer = typedecl.Of[*bytes.Buffer]()
	tString = typedecl.Of[*strings.Reader]()
	tInt    = typedecl.Of[int]()
)

func TestInputMapAggregatesSupertypes(t *testing.T) {
	m := NewInput[string]()
	m.Add(tReader, "reader")
	m.Add(tAny, "any")

	got := m.GetAll(tBuffer)
	want := []string{"reader", "any"}
	if !slices.Equal(got, want) {
		t.Errorf("GetAll(*bytes.Buffer) = %v, want %v", got, want)
	}

	// Values at the exact type come first.
	m.Add(tBuffer, "buffer")
	got = m.GetAll(tBuffer)
	want = []string{"buffer", "reader", "any"}
	if !slices.Equal(got, want) {
		t.Errorf("GetAll after Add = %v, want %v", got, want)
	}

	// Supertypes do not see subtype values.
	if got := m.GetAll(tReader); !slices.Equal(got, []string{"reader", "any"}) {
		t.Errorf("GetAll(io.Reader) = %v", got)
	}

	// Unrelated types only see the top type.
	if v, ok := m.Get(tInt); !ok || v != "any" {
		t.Errorf("Get(int) = %q, %v", v, ok)
	}
}

func TestOutputMapAggregatesSubtypes(t *testing.T) {
	m := NewOutput[string]()
	m.Add(tBuffer, "buffer")
	m.Add(tString, "strings")

	got := m.GetAll(tReader)
	slices.Sort(got)
	if !slices.Equal(got, []string{"buffer", "strings"}) {
		t.Errorf("GetAll(io.Reader) = %v", got)
	}

	if got := m.GetAll(tRW); !slices.Equal(got, []string{"buffer"}) {
		t.Errorf("GetAll(io.ReadWriter) = %v, want [buffer]", got)
	}

	if m.ContainsKey(tInt) {
		t.Error("int should see no values")
	}
}

func TestParentsMostSpecificFirst(t *testing.T) {
	m := NewInput[string]()
	// Create bins from least to most specific to exercise ordering.
	m.Add(tAny, "any")
	m.Add(tReader, "reader")
	m.Add(tRW, "readwriter")

	got := m.GetAll(tBuffer)
	want := []string{"readwriter", "reader", "any"}
	if !slices.Equal(got, want) {
		t.Errorf("GetAll = %v, want %v", got, want)
	}
}

func TestCacheInvalidation(t *testing.T) {
	m := NewInput[int]()
	m.Add(tReader, 1)
	if got := m.GetAll(tBuffer); !slices.Equal(got, []int{1}) {
		t.Fatalf("GetAll = %v", got)
	}

	// Writing to the parent must refresh the child's cached view.
	m.Add(tReader, 2)
	if got := m.GetAll(tBuffer); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("GetAll after parent write = %v, want [1 2]", got)
	}

	m.Put(tReader, 3)
	if got := m.GetAll(tBuffer); !slices.Equal(got, []int{3}) {
		t.Errorf("GetAll after Put = %v, want [3]", got)
	}

	n := m.RemoveFunc(tReader, func(v int) bool { return v == 3 })
	if n != 1 {
		t.Errorf("RemoveFunc removed %d, want 1", n)
	}
	if m.ContainsKey(tBuffer) {
		t.Error("child should be empty after parent removal")
	}
}

func TestAmendFirstWriterWins(t *testing.T) {
	m := NewInput[string]()
	if !m.Amend(tReader, "first") {
		t.Fatal("first Amend should succeed")
	}
	if m.Amend(tReader, "second") {
		t.Error("second Amend should fail")
	}

	// A related type holding values does not block amending.
	if !m.Amend(tBuffer, "buffer") {
		t.Error("Amend at subtype should succeed")
	}
	if v, _ := m.Get(tBuffer); v != "buffer" {
		t.Errorf("Get = %q, want buffer", v)
	}
	if m.AmendAll(tBuffer, "x", "y") {
		t.Error("AmendAll into a filled bin should fail")
	}
}

func TestKeysValuesClear(t *testing.T) {
	m := NewInput[int]()
	m.AddAll(tInt, 1, 2)
	m.Add(tReader, 3)
	m.GetAll(tBuffer) // creates an empty bin

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != tInt || keys[1] != tReader {
		t.Errorf("Keys() = %v", keys)
	}
	if got := m.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Values() = %v", got)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d", m.Len())
	}

	m.Clear()
	if m.Len() != 0 || m.ContainsKey(tBuffer) {
		t.Error("Clear should remove everything")
	}
}

func TestInvalidTypeIgnored(t *testing.T) {
	m := NewInput[int]()
	m.Add(typedecl.Invalid, 1)
	if m.Amend(typedecl.Invalid, 1) {
		t.Error("Amend with invalid type should fail")
	}
	if m.Len() != 0 {
		t.Error("invalid keys should not be stored")
	}
}
