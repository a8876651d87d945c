package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends the number of recorded call sites to labels.
	Detailed bool
	// Direction is the rank direction, "LR" or "TB". Empty means "LR".
	Direction string
}

// ToDOT converts a call graph to Graphviz DOT. Groups become clusters;
// interface groups are drawn dashed.
func ToDOT(g *callgraph.Graph, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#64748b\"];\n")
	buf.WriteString("\n")

	for _, grp := range g.Groups() {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+grp.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", grp.Label)
		if grp.Kind == callgraph.KindInterface {
			buf.WriteString("    style=dashed;\n")
		}
		for _, m := range g.Children(grp.ID) {
			fmt.Fprintf(&buf, "    %q [%s];\n", m.ID, strings.Join(fmtAttrs(m, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}
	for _, m := range g.Members() {
		if m.Parent == "" {
			fmt.Fprintf(&buf, "  %q [%s];\n", m.ID, strings.Join(fmtAttrs(m, opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(m *callgraph.Member, detailed bool) string {
	if !detailed {
		return m.Label
	}
	return fmt.Sprintf("%s\n%d calls", m.Label, len(m.Calls))
}

func fmtAttrs(m *callgraph.Member, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(m, detailed))}
	if !m.HasSource() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render.Graphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from its
// viewBox instead of Graphviz's point-based width and height.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
