package conversion

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/pkg/typedecl"
	"github.com/matzehuels/convgraph/pkg/typemap"
)

// node is one step on a path to the tree's output type. Nodes live in the
// tree's arena and refer to each other by index.
type node struct {
	conv     Converter
	prev     int // -1 for the root
	children []int
	lazy     bool // the path to the root uses a lazy converter
}

// tree searches converter paths into one output type. It grows breadth first
// from the output type towards input types, one layer per expansion, and
// remembers every input type it has reached so later lookups are answered
// from the mapping.
type tree struct {
	output   typedecl.Type
	listings *listingTable
	lookup   Lookup // used for specialization while the registry lock is held
	logger   *log.Logger
	poly     *InputConverter

	nodes    []node
	mapping  *typemap.Map[int] // input type -> node, non-lazy converters
	lazy     *typemap.Map[int] // input type -> node, lazy converters
	frontier []int
	gen      uint64
	busy     bool
	active   map[typedecl.Type]bool
}

func newTree(output typedecl.Type, listings *listingTable, lookup, public Lookup, logger *log.Logger) *tree {
	t := &tree{
		output:   output,
		listings: listings,
		lookup:   lookup,
		logger:   logger,
		poly:     NewInputConverter(output, public),
		mapping:  typemap.NewInput[int](),
		lazy:     typemap.NewInput[int](),
		active:   make(map[typedecl.Type]bool),
	}
	t.reset()
	return t
}

// reset discards everything the tree has discovered.
func (t *tree) reset() {
	t.gen++
	t.nodes = []node{{conv: Null(t.output, t.output), prev: -1}}
	t.mapping.Clear()
	t.lazy.Clear()
	t.mapping.Put(t.output, 0)
	t.frontier = []int{0}
}

// touches reports whether the tree has discovered a path from t.
func (t *tree) touches(typ typedecl.Type) bool {
	return t.mapping.ContainsKey(typ) || t.lazy.ContainsKey(typ)
}

// find returns a converter from input to the tree's output type, or nil.
//
// Specializing a polymorphic node may resolve through this tree again. Such
// nested calls only consult what the tree has discovered so far, and a nested
// call for an input that is already being resolved returns nil.
func (t *tree) find(input typedecl.Type) Converter {
	if input == typedecl.Any {
		return t.poly
	}
	if t.active[input] {
		return nil
	}
	t.active[input] = true
	defer delete(t.active, input)

	if t.busy {
		return t.discovered(input)
	}
	t.busy = true
	defer func() {
		t.busy = false
		// A panic may leave a layer half expanded.
		if p := recover(); p != nil {
			t.reset()
			panic(p)
		}
	}()

restart:
	for {
		gen := t.gen
		n := t.lookupNode(t.mapping, input)
		for n < 0 && len(t.frontier) > 0 {
			layer := t.frontier
			t.frontier = nil
			for _, idx := range layer {
				t.expand(idx)
				// Unreachable while the registry serializes searches and
				// registrations behind one lock; guards per tree locking.
				if t.gen != gen {
					t.logger.Debug("conversion tree reset during search", "output", t.output)
					continue restart
				}
			}
			n = t.lookupNode(t.mapping, input)
		}

		if n < 0 {
			if n = t.lookupNode(t.lazy, input); n >= 0 {
				t.mapping.Amend(input, n)
			}
		}
		if n < 0 {
			return nil
		}
		return t.path(n, input)
	}
}

// discovered resolves input from the nodes found so far without expanding
// the tree.
func (t *tree) discovered(input typedecl.Type) Converter {
	n := t.lookupNode(t.mapping, input)
	if n < 0 {
		return nil
	}
	return t.path(n, input)
}

// lookupNode returns the first node visible at input in m that can handle
// input, or -1.
func (t *tree) lookupNode(m *typemap.Map[int], input typedecl.Type) int {
	for _, idx := range m.GetAll(input) {
		if t.accepts(t.nodes[idx].conv, input) {
			return idx
		}
	}
	return -1
}

// accepts reports whether c can convert values of type input.
func (t *tree) accepts(c Converter, input typedecl.Type) bool {
	if p, ok := c.(Polymorphic); ok {
		return p.Specialize(input, t.lookup) != nil
	}
	return true
}

// expand attaches a child to node idx for every converter producing the
// node's input type. A child survives only when it is the first to claim its
// input type. Children below a lazy converter are lazy too.
func (t *tree) expand(idx int) {
	parent := t.nodes[idx].conv
	for _, c := range t.listings.converters(parent.Input()) {
		if !t.accepts(parent, c.Output()) {
			continue
		}
		lazy := t.nodes[idx].lazy || c.Lazy()
		target := t.mapping
		if lazy {
			target = t.lazy
		}
		child := len(t.nodes)
		if !target.Amend(c.Input(), child) {
			continue
		}
		t.nodes = append(t.nodes, node{conv: c, prev: idx, lazy: lazy})
		t.nodes[idx].children = append(t.nodes[idx].children, child)
		t.frontier = append(t.frontier, child)
	}
}

// path builds the converter from input along the parent links of node n.
func (t *tree) path(n int, input typedecl.Type) Converter {
	if n == 0 {
		return Null(input, t.output)
	}
	if t.nodes[n].prev == 0 {
		return Specialize(t.nodes[n].conv, input, t.lookup)
	}

	var stages []Converter
	current := input
	for i := n; i != 0; i = t.nodes[i].prev {
		c := Specialize(t.nodes[i].conv, current, t.lookup)
		if c == nil {
			return nil
		}
		stages = append(stages, c)
		current = c.Output()
	}

	chain, err := NewChain(stages...)
	if err != nil {
		t.logger.Error("invalid conversion path", "input", input, "output", t.output, "err", err)
		return nil
	}
	return chain
}

// pathTo returns the node indexes from the node reached for input up to the
// root, or nil when input has not been reached.
func (t *tree) pathTo(input typedecl.Type) []int {
	n := t.lookupNode(t.mapping, input)
	if n < 0 {
		n = t.lookupNode(t.lazy, input)
	}
	if n < 0 {
		return nil
	}
	var ids []int
	for i := n; i >= 0; i = t.nodes[i].prev {
		ids = append(ids, i)
	}
	return ids
}
