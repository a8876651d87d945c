// Package render wraps Graphviz and SVG format conversion for auditgraph.
//
// # Overview
//
// The layered layout solver renders per-cluster DOT descriptions through
// [Graphviz] in [FormatJSON] and reads positions back with [DecodeJSON].
// [Graphviz] runs the embedded (WebAssembly) Graphviz build from
// go-graphviz, so no system installation is required.
//
// The [nodelink] subpackage turns a call graph into a static DOT/SVG
// diagram for export.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
package render
