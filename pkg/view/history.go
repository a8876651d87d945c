package view

import "github.com/matzehuels/auditgraph/pkg/layout"

// DefaultHistoryLimit bounds the number of undo steps.
const DefaultHistoryLimit = 100

// State is one snapshot of the view settings. Filters are copied on write,
// so a State never changes once recorded.
type State struct {
	Filters   Filters
	CodeView  bool
	Direction layout.Direction
}

// Command derives the next state.
type Command func(State) State

// ToggleContract flips the visibility of a contract.
func ToggleContract(name string) Command {
	return func(s State) State {
		s.Filters = s.Filters.With(!s.Filters.Visible(name), name)
		return s
	}
}

// SetVisible sets the visibility of contracts.
func SetVisible(visible bool, names ...string) Command {
	return func(s State) State {
		s.Filters = s.Filters.With(visible, names...)
		return s
	}
}

// SetCodeView switches the display mode.
func SetCodeView(on bool) Command {
	return func(s State) State {
		s.CodeView = on
		return s
	}
}

// SetDirection changes the flow direction.
func SetDirection(dir layout.Direction) Command {
	return func(s State) State {
		s.Direction = dir
		return s
	}
}

// History is an undo/redo stack of States. It is not safe for concurrent
// use.
type History struct {
	past    []State
	current State
	future  []State
	limit   int
}

// NewHistory starts a history at initial.
func NewHistory(initial State) *History {
	return &History{current: initial, limit: DefaultHistoryLimit}
}

// Current returns the current state.
func (h *History) Current() State { return h.current }

// Apply runs cmd on the current state, records the result and clears the
// redo stack.
func (h *History) Apply(cmd Command) State {
	h.past = append(h.past, h.current)
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.current = cmd(h.current)
	h.future = nil
	return h.current
}

// Undo steps back. It reports false when there is nothing to undo.
func (h *History) Undo() (State, bool) {
	if len(h.past) == 0 {
		return h.current, false
	}
	h.future = append(h.future, h.current)
	h.current = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return h.current, true
}

// Redo re-applies the last undone state. It reports false when there is
// nothing to redo.
func (h *History) Redo() (State, bool) {
	if len(h.future) == 0 {
		return h.current, false
	}
	h.past = append(h.past, h.current)
	h.current = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return h.current, true
}

// CanUndo reports whether Undo would change the state.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would change the state.
func (h *History) CanRedo() bool { return len(h.future) > 0 }
