package strategy

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"gto-rangeviewer/server/hands"

	json "github.com/goccy/go-json"
)

// ErrNoBlinds is returned when the export settings carry no blind sizes.
var ErrNoBlinds = errors.New("strategy: export has no blinds")

// Export is the raw strategy export as produced by the solver.
type Export struct {
	Settings struct {
		HandData Settings `json:"handdata"`
	} `json:"settings"`
	Nodes map[int]RawNode `json:"nodes"`
}

// Settings are the stack and blind sizes the export was solved for, in chips.
type Settings struct {
	Stacks []float64 `json:"stacks"`
	Blinds []float64 `json:"blinds"`
}

type RawAction struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Node   int     `json:"node"`
}

type RawNode struct {
	Player   Position              `json:"player"`
	Street   int                   `json:"street"`
	Sequence []int                 `json:"sequence"`
	Actions  []RawAction           `json:"actions"`
	Hands    map[hands.ID]HandData `json:"hands"`
}

// Decode reads an export payload.
func Decode(r io.Reader) (Export, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return Export{}, fmt.Errorf("decode export: %w", err)
	}
	return exp, nil
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(b []byte) (Export, error) {
	var exp Export
	if err := json.Unmarshal(b, &exp); err != nil {
		return Export{}, fmt.Errorf("decode export: %w", err)
	}
	return exp, nil
}

// Graph is the loaded strategy tree. It is never modified after Load.
type Graph struct {
	nodes    map[int]*Node
	ids      []int
	roots    map[Position]int
	dupRoots map[Position][]int
}

// Load indexes the export's nodes. Nothing is validated beyond what keeps
// later lookups safe; absent collections become empty ones.
func Load(exp Export) *Graph {
	g := &Graph{
		nodes:    make(map[int]*Node, len(exp.Nodes)),
		ids:      make([]int, 0, len(exp.Nodes)),
		roots:    make(map[Position]int),
		dupRoots: make(map[Position][]int),
	}
	for id, raw := range exp.Nodes {
		n := &Node{
			ID:       id,
			Player:   raw.Player,
			Street:   raw.Street,
			Sequence: raw.Sequence,
			Actions:  make([]Action, len(raw.Actions)),
			Hands:    raw.Hands,
		}
		for i, a := range raw.Actions {
			n.Actions[i] = NewAction(KindFromCode(a.Type), a.Amount, a.Node)
		}
		if n.Hands == nil {
			n.Hands = map[hands.ID]HandData{}
		}
		g.nodes[id] = n
		g.ids = append(g.ids, id)
	}
	slices.Sort(g.ids)

	// lowest id wins when several nodes claim the same root
	for _, id := range g.ids {
		n := g.nodes[id]
		if !n.IsRoot() {
			continue
		}
		if first, ok := g.roots[n.Player]; ok {
			if len(g.dupRoots[n.Player]) == 0 {
				g.dupRoots[n.Player] = []int{first}
			}
			g.dupRoots[n.Player] = append(g.dupRoots[n.Player], id)
			continue
		}
		g.roots[n.Player] = id
	}
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.ids)
}

// IDs returns every node id in ascending order.
func (g *Graph) IDs() []int {
	if g == nil {
		return nil
	}
	return slices.Clone(g.ids)
}

// FindRoot returns the preflop root node for pos: player == pos, empty
// sequence, street 0.
func (g *Graph) FindRoot(pos Position) (int, bool) {
	if g == nil {
		return 0, false
	}
	id, ok := g.roots[pos]
	return id, ok
}

// Roots lists the positions that have a root node, in table order.
func (g *Graph) Roots() []Position {
	var out []Position
	for _, p := range Positions() {
		if _, ok := g.FindRoot(p); ok {
			out = append(out, p)
		}
	}
	return out
}

// DuplicateRoots reports positions claimed by more than one root node, with
// every candidate id in ascending order. FindRoot picks the first.
func (g *Graph) DuplicateRoots() map[Position][]int {
	if g == nil {
		return nil
	}
	out := make(map[Position][]int, len(g.dupRoots))
	for p, ids := range g.dupRoots {
		out[p] = slices.Clone(ids)
	}
	return out
}

// BigBlind is the first blind size.
func BigBlind(s Settings) (float64, error) {
	if len(s.Blinds) == 0 {
		return 0, ErrNoBlinds
	}
	return s.Blinds[0], nil
}

// AvailableStacksInBB converts stack sizes to whole big blinds, dropping
// repeats but keeping first-occurrence order.
func AvailableStacksInBB(s Settings, bb float64) []int {
	if bb <= 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(s.Stacks))
	out := make([]int, 0, len(s.Stacks))
	for _, stack := range s.Stacks {
		v := int(math.Floor(stack / bb))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
