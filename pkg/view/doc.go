// Package view holds the presentation transforms applied to a merged call
// graph before layout.
//
// [Filter] hides contracts, by default every interface. [SplitCallEdges]
// turns each call edge into one edge per call site when source code is
// shown, so edges leave from the calling line. [History] records the
// user's view settings as immutable snapshots with undo and redo.
//
// All transforms return new graphs and never modify their input.
package view
