package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/convgraph/pkg/conversion"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the converter that produced each node to its label.
	// When false, only the type name is shown.
	Detailed bool
}

// ToDOT converts a conversion tree snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Edges point from a node to its parent, the direction values flow. Nodes on
// the resolved path are highlighted and lazy nodes are drawn dashed.
func ToDOT(snap conversion.TreeSnapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if snap.Input.IsResolved() && snap.Output.IsResolved() {
		fmt.Fprintf(&buf, "  label=%q;\n", snap.Input.String()+" -> "+snap.Output.String())
		buf.WriteString("  labelloc=t;\n")
	}
	buf.WriteString("\n")

	for _, n := range snap.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range snap.Nodes {
		if n.Parent < 0 {
			continue
		}
		if n.OnPath {
			fmt.Fprintf(&buf, "  n%d -> n%d [penwidth=2, color=\"#2e7d32\"];\n", n.ID, n.Parent)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", n.ID, n.Parent)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n conversion.SnapshotNode, detailed bool) string {
	if !detailed || n.Parent < 0 {
		return n.TypeName
	}
	return n.TypeName + "\n" + n.Converter
}

func fmtAttrs(n conversion.SnapshotNode, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.OnPath:
		attrs = append(attrs, "fillcolor=\"#c8e6c9\"", "penwidth=2")
	case n.Lazy:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg element with one whose viewBox
// starts at the origin, so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
