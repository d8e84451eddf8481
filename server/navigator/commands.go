package navigator

import (
	"fmt"

	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/strategy"
)

// Command is one navigator input. The set is closed: Import, SelectStack,
// LoadRoot, Choose, Rewind and Reset.
type Command interface {
	apply(State) (State, bool)
	fmt.Stringer
}

// Apply runs cmd against s. It never fails: a command that does not fit the
// state returns s unchanged.
func Apply(s State, cmd Command) State {
	next, _ := step(s, cmd)
	return next
}

func step(s State, cmd Command) (State, bool) {
	if cmd == nil {
		return s, false
	}
	return cmd.apply(s)
}

// Import replaces the loaded export. Allowed from any phase; ends in
// StackPending with empty history and stack choice.
type Import struct {
	Export strategy.Export
	// ArchiveID is the store id of Export, 0 when it is not archived.
	ArchiveID int64
}

func (c Import) apply(State) (State, bool) {
	g := strategy.Load(c.Export)
	settings := c.Export.Settings.HandData
	// a missing big blind leaves bb at 0 and the stack list empty
	bb, _ := strategy.BigBlind(settings)
	return State{
		graph:     g,
		archiveID: c.ArchiveID,
		settings:  settings,
		bb:        bb,
		stacks:    strategy.AvailableStacksInBB(settings, bb),
	}, true
}

func (c Import) String() string { return fmt.Sprintf("import(%d nodes)", len(c.Export.Nodes)) }

// SelectStack records the effective stack in big blinds and restarts
// navigation. Needs an import.
type SelectStack struct {
	StackBB int
}

func (c SelectStack) apply(s State) (State, bool) {
	if s.graph == nil {
		return s, false
	}
	s.stack, s.hasStack = c.StackBB, true
	s.current, s.history, s.projection = nil, nil, nil
	return s, true
}

func (c SelectStack) String() string { return fmt.Sprintf("select_stack(%dbb)", c.StackBB) }

// LoadRoot starts navigation at the preflop root of Position, replacing any
// path in progress. No-op when the export has no such root.
type LoadRoot struct {
	Position strategy.Position
}

func (c LoadRoot) apply(s State) (State, bool) {
	id, ok := s.graph.FindRoot(c.Position)
	if !ok {
		return s, false
	}
	n, _ := s.graph.Node(id)
	s.current = n
	s.history = []Step{{
		Position: c.Position,
		Action:   strategy.NewAction(strategy.Fold, 0, id),
		Round:    1,
	}}
	s.projection = aggregate.Project(n)
	return s, true
}

func (c LoadRoot) String() string { return "load_root(" + c.Position.String() + ")" }

// Choose follows an action to its target node and appends a step. No-op when
// the target is not in the graph.
type Choose struct {
	Kind   strategy.ActionKind
	Amount float64
	Target int
}

func (c Choose) apply(s State) (State, bool) {
	n, ok := s.graph.Node(c.Target)
	if !ok {
		return s, false
	}
	round := 1
	for _, st := range s.history {
		if st.Position == n.Player {
			round++
		}
	}
	history := make([]Step, len(s.history), len(s.history)+1)
	copy(history, s.history)
	s.history = append(history, Step{
		Position: n.Player,
		Action:   strategy.NewAction(c.Kind, c.Amount, c.Target),
		Round:    round,
	})
	s.current = n
	s.projection = aggregate.Project(n)
	return s, true
}

func (c Choose) String() string {
	return fmt.Sprintf("choose(%s %v -> %d)", c.Kind, c.Amount, c.Target)
}

// Rewind truncates the history after Index and returns to that step's node.
// No-op when Index is outside the history.
type Rewind struct {
	Index int
}

func (c Rewind) apply(s State) (State, bool) {
	if c.Index < 0 || c.Index >= len(s.history) {
		return s, false
	}
	last := s.history[c.Index]
	n, ok := s.graph.Node(last.NodeID())
	if !ok {
		return s, false
	}
	s.history = s.history[:c.Index+1:c.Index+1]
	s.current = n
	s.projection = aggregate.Project(n)
	return s, true
}

func (c Rewind) String() string { return fmt.Sprintf("rewind(%d)", c.Index) }

// Reset drops the path, the current node and the stack choice but keeps the
// import.
type Reset struct{}

func (Reset) apply(s State) (State, bool) {
	if s.graph == nil {
		return s, false
	}
	return State{
		graph:     s.graph,
		archiveID: s.archiveID,
		settings:  s.settings,
		bb:        s.bb,
		stacks:    s.stacks,
	}, true
}

func (Reset) String() string { return "reset" }
