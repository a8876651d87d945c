// Package nodelink renders call graphs as static node-link diagrams.
//
// # Overview
//
// Each contract group becomes a Graphviz cluster and each function a box
// inside it; call edges are arrows. This is the export path for reports and
// CI artifacts, independent of the interactive diagram produced by the
// layout engine.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Direction: "LR"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: labels include the number of recorded call sites
//   - Direction: "LR" (default) or "TB"
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
