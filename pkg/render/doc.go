// Package render provides visualization rendering for conversion trees.
//
// The [nodelink] subpackage renders a tree snapshot as a Graphviz diagram:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/convgraph/pkg/render/nodelink
package render
