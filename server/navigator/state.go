// Package navigator walks a loaded strategy tree. State is an immutable value
// and every command produces a new State through Apply; Controller hosts the
// current State for a running process and tells observers when it changes.
package navigator

import (
	"slices"
	"strconv"

	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/hands"
	"gto-rangeviewer/server/palette"
	"gto-rangeviewer/server/strategy"
)

type Phase int

const (
	// Empty: nothing imported yet.
	Empty Phase = iota
	// StackPending: an export is loaded but no node is selected.
	StackPending
	// AtNode: a current node is set and the history is non-empty.
	AtNode
)

func (p Phase) String() string {
	switch p {
	case StackPending:
		return "stack_pending"
	case AtNode:
		return "at_node"
	default:
		return "empty"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Step is one entry of the navigation path: the action taken and the node it
// led to, whose player is Position. Round counts how many times Position has
// acted along the path, this step included.
type Step struct {
	Position strategy.Position `json:"position"`
	Action   strategy.Action   `json:"action"`
	Round    int               `json:"round"`
}

// NodeID is the node this step arrived at.
func (s Step) NodeID() int { return s.Action.Target() }

// State is one immutable snapshot of the navigator. The zero value is the
// Empty state. Slices and maps reachable from a State are never written
// after the State is built.
type State struct {
	graph      *strategy.Graph
	archiveID  int64
	settings   strategy.Settings
	bb         float64
	stacks     []int
	stack      int
	hasStack   bool
	current    *strategy.Node
	history    []Step
	projection aggregate.Projection
}

// Phase is derived from what the state holds.
func (s State) Phase() Phase {
	switch {
	case s.graph == nil:
		return Empty
	case s.current == nil:
		return StackPending
	default:
		return AtNode
	}
}

func (s State) Graph() *strategy.Graph { return s.graph }

func (s State) Settings() strategy.Settings { return s.settings }

// ArchiveID is the store id the loaded export came from, 0 when it was not
// archived. It travels with the import so a state never pairs one export with
// another's id.
func (s State) ArchiveID() int64 { return s.archiveID }

// BigBlind is 0 when the export carries no blinds.
func (s State) BigBlind() float64 { return s.bb }

func (s State) Stacks() []int { return slices.Clone(s.stacks) }

func (s State) Current() *strategy.Node { return s.current }

func (s State) History() []Step { return slices.Clone(s.history) }

// Stack is the chosen effective stack in big blinds.
func (s State) Stack() (bb int, selected bool) { return s.stack, s.hasStack }

// CurrentID is the id of the current node.
func (s State) CurrentID() (int, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.current.ID, true
}

// Projection returns the 169-cell snapshot for the current node; outside
// AtNode every cell is zero.
func (s State) Projection() aggregate.Projection {
	if s.projection == nil {
		return emptyProjection
	}
	return s.projection
}

var emptyProjection = aggregate.Project(nil)

// Cell is the projection entry for one hand.
func (s State) Cell(id hands.ID) (aggregate.Cell, bool) {
	c, ok := s.Projection()[id]
	return c, ok
}

// Palette ranks the raise sizes of the current projection.
func (s State) Palette() palette.Table { return palette.FromProjection(s.Projection()) }

// Gradient is the colour stack for one hand, derived on every call from the
// current projection and its palette.
func (s State) Gradient(id hands.ID) []palette.Band {
	c, _ := s.Cell(id)
	return s.Palette().Gradient(c.Prioritized())
}

// Summary is the range-wide action breakdown at the current node.
func (s State) Summary() []aggregate.ActionShare {
	if s.current == nil {
		return nil
	}
	return aggregate.Summarize(s.Projection(), s.current.Actions)
}

type Breadcrumb struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Breadcrumbs labels every history step: the opening step is just the
// position, later steps show the action that led there ("R 2.5BB · SB"), and
// repeat visits carry their round ("C · BB (2)").
func (s State) Breadcrumbs() []Breadcrumb {
	out := make([]Breadcrumb, len(s.history))
	for i, st := range s.history {
		label := st.Position.String()
		if st.Round > 1 {
			label += " (" + strconv.Itoa(st.Round) + ")"
		}
		if i > 0 {
			label = st.Action.Label(s.bb) + " · " + label
		}
		out[i] = Breadcrumb{Index: i, Label: label}
	}
	return out
}
