package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
)

// UnavailableSource is the placeholder text shown for members without a
// source fragment. Members carrying it are sized like compact nodes.
const UnavailableSource = "No source code available"

const (
	CompactWidth  = 300.0
	CompactHeight = 120.0

	charWidth     = 9.5
	lineHeight    = 20.0
	codePadding   = 100.0
	minCodeWidth  = 400.0
	minCodeHeight = 150.0
)

// Size returns the box size of a member. In code view a member with source
// grows with its longest line and its line count.
func Size(m *callgraph.Member, codeView bool) (width, height float64) {
	if !codeView || m.Source == nil || *m.Source == UnavailableSource {
		return CompactWidth, CompactHeight
	}
	lines := strings.Split(*m.Source, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	width = max(float64(longest)*charWidth+codePadding, minCodeWidth)
	height = max(float64(len(lines))*lineHeight+codePadding, minCodeHeight)
	return width, height
}
