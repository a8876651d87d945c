package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/render/nodelink"
	"github.com/matzehuels/auditgraph/pkg/view"
)

// Format constants for static renderings.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported static formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidOptions, "invalid format: %q (must be one of: dot, svg, png, pdf)", f)
		}
	}
	return nil
}

// Render draws the filtered call graph as a static node-link picture in
// each requested format. Unlike Layout, positions come from Graphviz for
// the whole graph at once.
func Render(ctx context.Context, g *callgraph.Graph, formats []string, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		formats = []string{FormatSVG}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	visible := view.Filter(g, opts.Filters(g.Contracts()))
	dot := nodelink.ToDOT(visible, nodelink.Options{Detailed: opts.CodeView, Direction: opts.Direction})

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
