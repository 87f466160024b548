// Package typemap provides maps keyed by type whose lookups aggregate the
// values stored at related types.
//
// A [Map] keeps one bin per distinct type that was ever accessed. When a bin
// is created it is linked to every existing bin whose type is related by
// [typedecl.Type.IsInstanceOf], so lookups never walk the type hierarchy:
//
//   - [NewInput] maps make values stored at a supertype visible at all of its
//     subtypes. A value stored at io.Reader is returned for *bytes.Buffer.
//   - [NewOutput] maps go the other way: values stored at a subtype are
//     visible at its supertypes. A value stored at *bytes.Buffer is returned
//     for io.Reader.
//
// Aggregated views are computed on first lookup and cached per bin. Writing
// to a bin invalidates its own view and the views of every bin linked to it
// as a child. Values stored directly at a type always come first, followed by
// the values of linked types, most specific type first.
//
// Maps are not safe for concurrent use.
package typemap

import (
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// Map is a hierarchy-aware multimap from types to values.
type Map[V any] struct {
	isParent func(parent, child typedecl.Type) bool
	bins     map[typedecl.Type]*bin[V]
	order    []*bin[V]
}

type bin[V any] struct {
	typ      typedecl.Type
	values   []V
	parents  []*bin[V] // bins whose values are visible here, most specific first
	children []*bin[V] // bins that see the values of this bin
	cache    []V
	cached   bool
}

// NewInput returns a map where values stored at a type are visible at all of
// its subtypes.
func NewInput[V any]() *Map[V] {
	return newMap[V](func(parent, child typedecl.Type) bool {
		return child.IsInstanceOf(parent)
	})
}

// NewOutput returns a map where values stored at a type are visible at all of
// its supertypes.
func NewOutput[V any]() *Map[V] {
	return newMap[V](func(parent, child typedecl.Type) bool {
		return parent.IsInstanceOf(child)
	})
}

func newMap[V any](isParent func(parent, child typedecl.Type) bool) *Map[V] {
	return &Map[V]{
		isParent: isParent,
		bins:     make(map[typedecl.Type]*bin[V]),
	}
}

// Get returns the first value visible at t.
func (m *Map[V]) Get(t typedecl.Type) (V, bool) {
	all := m.GetAll(t)
	if len(all) == 0 {
		var zero V
		return zero, false
	}
	return all[0], true
}

// GetAll returns every value visible at t: values stored at t first, then
// the values of related types. The returned slice must not be modified.
func (m *Map[V]) GetAll(t typedecl.Type) []V {
	if !t.IsValid() {
		return nil
	}
	return m.bin(t).all()
}

// ContainsKey reports whether any value is visible at t.
func (m *Map[V]) ContainsKey(t typedecl.Type) bool {
	return len(m.GetAll(t)) > 0
}

// Add appends v to the values stored at t.
func (m *Map[V]) Add(t typedecl.Type, v V) {
	if !t.IsValid() {
		return
	}
	b := m.bin(t)
	b.values = append(b.values, v)
	b.invalidate()
}

// AddAll appends vs to the values stored at t.
func (m *Map[V]) AddAll(t typedecl.Type, vs ...V) {
	if !t.IsValid() || len(vs) == 0 {
		return
	}
	b := m.bin(t)
	b.values = append(b.values, vs...)
	b.invalidate()
}

// Put replaces the values stored at t with v.
func (m *Map[V]) Put(t typedecl.Type, v V) {
	if !t.IsValid() {
		return
	}
	b := m.bin(t)
	b.values = append(b.values[:0:0], v)
	b.invalidate()
}

// Amend stores v at t only when nothing is stored at t yet. Values visible
// through related types do not count. It reports whether v was stored.
func (m *Map[V]) Amend(t typedecl.Type, v V) bool {
	if !t.IsValid() {
		return false
	}
	b := m.bin(t)
	if len(b.values) > 0 {
		return false
	}
	b.values = append(b.values, v)
	b.invalidate()
	return true
}

// AmendAll stores vs at t only when nothing is stored at t yet.
func (m *Map[V]) AmendAll(t typedecl.Type, vs ...V) bool {
	if !t.IsValid() || len(vs) == 0 {
		return false
	}
	b := m.bin(t)
	if len(b.values) > 0 {
		return false
	}
	b.values = append(b.values, vs...)
	b.invalidate()
	return true
}

// RemoveFunc deletes the values stored at t for which match returns true and
// returns how many were removed.
func (m *Map[V]) RemoveFunc(t typedecl.Type, match func(V) bool) int {
	b, ok := m.bins[t]
	if !ok {
		return 0
	}
	kept := b.values[:0]
	for _, v := range b.values {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	removed := len(b.values) - len(kept)
	clear(b.values[len(kept):])
	b.values = kept
	if removed > 0 {
		b.invalidate()
	}
	return removed
}

// Keys returns the types that have values stored directly, in the order their
// bins were created.
func (m *Map[V]) Keys() []typedecl.Type {
	var keys []typedecl.Type
	for _, b := range m.order {
		if len(b.values) > 0 {
			keys = append(keys, b.typ)
		}
	}
	return keys
}

// Values returns all directly stored values, grouped by type in bin creation
// order.
func (m *Map[V]) Values() []V {
	var values []V
	for _, b := range m.order {
		values = append(values, b.values...)
	}
	return values
}

// Len returns the number of directly stored values.
func (m *Map[V]) Len() int {
	n := 0
	for _, b := range m.order {
		n += len(b.values)
	}
	return n
}

// Clear removes all bins.
func (m *Map[V]) Clear() {
	clear(m.bins)
	m.order = nil
}

// bin returns the bin for t, creating and linking it on first access.
func (m *Map[V]) bin(t typedecl.Type) *bin[V] {
	if b, ok := m.bins[t]; ok {
		return b
	}
	b := &bin[V]{typ: t}
	for _, other := range m.order {
		switch {
		case m.isParent(t, other.typ):
			other.link(b)
		case m.isParent(other.typ, t):
			b.link(other)
		}
	}
	m.bins[t] = b
	m.order = append(m.order, b)
	return b
}

// link makes the values of parent visible in b.
func (b *bin[V]) link(parent *bin[V]) {
	i := len(b.parents)
	for j, p := range b.parents {
		if parent.typ.IsInstanceOf(p.typ) {
			i = j
			break
		}
	}
	b.parents = append(b.parents, nil)
	copy(b.parents[i+1:], b.parents[i:])
	b.parents[i] = parent
	parent.children = append(parent.children, b)
	b.cache, b.cached = nil, false
}

func (b *bin[V]) invalidate() {
	b.cache, b.cached = nil, false
	for _, c := range b.children {
		c.cache, c.cached = nil, false
	}
}

func (b *bin[V]) all() []V {
	if b.cached {
		return b.cache
	}
	var all []V
	all = append(all, b.values...)
	for _, p := range b.parents {
		all = append(all, p.values...)
	}
	b.cache, b.cached = all, true
	return all
}
