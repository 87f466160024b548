package conversion

import (
	"strings"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// TreeSnapshot is a copy of the conversion tree for one output type, taken
// after resolving one input type.
type TreeSnapshot struct {
	Input  typedecl.Type  `json:"-"`
	Output typedecl.Type  `json:"-"`
	Found  bool           `json:"found"`
	Nodes  []SnapshotNode `json:"nodes"`
}

// SnapshotNode is one node of a [TreeSnapshot]. The root has ID 0 and
// Parent -1.
type SnapshotNode struct {
	ID        int           `json:"id"`
	Parent    int           `json:"parent"`
	Type      typedecl.Type `json:"-"`
	TypeName  string        `json:"type"`
	Converter string        `json:"converter"`
	Lazy      bool          `json:"lazy"`
	OnPath    bool          `json:"on_path"`
	Depth     int           `json:"depth"`
}

// Snapshot resolves input to output and returns the conversion tree of output
// as explored so far. Nodes are listed depth first, children in discovery
// order. Nodes on the path used for input are marked.
func (r *Registry) Snapshot(input, output typedecl.Type) TreeSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := TreeSnapshot{Input: input, Output: output}
	if !input.IsResolved() || !output.IsResolved() {
		return snap
	}
	snap.Found = r.findLocked(input, output) != nil

	t := r.treeLocked(output)
	onPath := make(map[int]bool)
	for _, id := range t.pathTo(input) {
		onPath[id] = true
	}

	var walk func(id, depth int)
	walk = func(id, depth int) {
		n := t.nodes[id]
		typ := n.conv.Input()
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:        id,
			Parent:    n.prev,
			Type:      typ,
			TypeName:  typ.String(),
			Converter: n.conv.String(),
			Lazy:      n.lazy,
			OnPath:    onPath[id],
			Depth:     depth,
		})
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	walk(0, 0)
	return snap
}

// DebugTree resolves input to output and renders the explored conversion tree
// of output as indented text. Types on the path used for input are shown as
// >>type<<.
func (r *Registry) DebugTree(input, output typedecl.Type) string {
	return r.Snapshot(input, output).String()
}

// String renders the snapshot as indented text.
func (s TreeSnapshot) String() string {
	var b strings.Builder
	b.WriteString("====== Converting ")
	b.WriteString(s.Input.String())
	b.WriteString(" -> ")
	b.WriteString(s.Output.String())
	b.WriteString(" ======\n")
	for _, n := range s.Nodes {
		b.WriteString(strings.Repeat("  ", n.Depth))
		if n.OnPath {
			b.WriteString(">>" + n.TypeName + "<<")
		} else {
			b.WriteString(n.TypeName)
		}
		if n.ID != 0 {
			b.WriteString("  via " + n.Converter)
		}
		if n.Lazy {
			b.WriteString(" (lazy)")
		}
		b.WriteByte('\n')
	}
	if !s.Found {
		b.WriteString("no converter found\n")
	}
	return b.String()
}
