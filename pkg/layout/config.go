package layout

import (
	"time"

	"github.com/matzehuels/auditgraph/pkg/errors"
)

// Direction is the primary flow direction.
type Direction string

const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
)

// Packing constants, in canvas pixels.
const (
	GroupPadding = 400.0
	GroupHeader  = 60.0
	Gutter       = 200.0

	// gridGap is the minimum gap between grid cells holding nodes larger
	// than the nominal cell.
	gridGap = 50.0
)

// Edge rendering constants.
const (
	EdgeType         = "clickable"
	InteractionWidth = 30.0
)

// Defaults for the resource guards.
const (
	DefaultMaxClusterNodes = 400
	DefaultSolveTimeout    = 30 * time.Second
	DefaultParallelism     = 1
)

// Spacing configures the layered solver.
type Spacing struct {
	NodeNode      float64 // between nodes in the same layer
	BetweenLayers float64 // between adjacent layers
}

// SpacingFor returns the spacing table for a display mode. Code view boxes
// are large, so spacing grows to keep curved edges clear of them.
func SpacingFor(codeView bool) Spacing {
	if codeView {
		return Spacing{NodeNode: 300, BetweenLayers: 600}
	}
	return Spacing{NodeNode: 180, BetweenLayers: 450}
}

// Grid describes the trailing singleton grid.
type Grid struct {
	Columns    int
	CellWidth  float64
	CellHeight float64
}

// GridFor returns the singleton grid for a display mode.
func GridFor(codeView bool) Grid {
	if codeView {
		return Grid{Columns: 3, CellWidth: 600, CellHeight: 500}
	}
	return Grid{Columns: 5, CellWidth: 350, CellHeight: 200}
}

// Config is what a Solver needs to lay out one component.
type Config struct {
	CodeView  bool
	Direction Direction
	Spacing   Spacing
}

// Options configures [Engine.Layout].
type Options struct {
	CodeView  bool
	Direction Direction

	// MaxClusterNodes degrades components larger than this without
	// invoking the solver.
	MaxClusterNodes int
	// SolveTimeout bounds each component solve.
	SolveTimeout time.Duration
	// Parallelism is the number of components solved concurrently.
	Parallelism int
}

// ValidateAndSetDefaults validates the options and fills zero values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Direction == "" {
		o.Direction = LeftToRight
	}
	if err := errors.ValidateDirection(string(o.Direction)); err != nil {
		return err
	}
	if o.MaxClusterNodes < 0 || o.Parallelism < 0 || o.SolveTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "layout guards must not be negative")
	}
	if o.MaxClusterNodes == 0 {
		o.MaxClusterNodes = DefaultMaxClusterNodes
	}
	if o.SolveTimeout == 0 {
		o.SolveTimeout = DefaultSolveTimeout
	}
	if o.Parallelism == 0 {
		o.Parallelism = DefaultParallelism
	}
	return nil
}

// Config returns the solver configuration for these options.
func (o Options) Config() Config {
	return Config{CodeView: o.CodeView, Direction: o.Direction, Spacing: SpacingFor(o.CodeView)}
}
