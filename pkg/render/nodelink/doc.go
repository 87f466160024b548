// Package nodelink renders conversion trees as node-link diagrams.
//
// # Overview
//
// A conversion tree is rooted at an output type. Every other node is a type
// that can be converted into its parent. This package draws such a tree with
// Graphviz, one box per type and one arrow per converter, so the paths the
// registry explored can be inspected visually.
//
// # Usage
//
// Take a snapshot from the registry, convert it to DOT, then render to SVG:
//
//	snap := registry.Snapshot(typedecl.Of[int](), typedecl.Of[string]())
//	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include the converter into the parent
//
// # DOT Format
//
// The generated DOT uses bottom-to-top layout (rankdir=BT) so the output
// type sits at the top and values flow upwards. Nodes on the resolved path
// are filled green, nodes only reachable through lazy converters are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
