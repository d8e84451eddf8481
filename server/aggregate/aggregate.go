// Package aggregate reduces a node's per-hand frequency and EV vectors into
// the values a 169-cell range grid displays.
package aggregate

import (
	"cmp"
	"slices"

	"gto-rangeviewer/server/hands"
	"gto-rangeviewer/server/strategy"
)

// Dominant is the most frequent action of one hand.
type Dominant struct {
	Index     int     `json:"index"`
	Frequency float64 `json:"frequency"`
	EV        float64 `json:"ev"`
}

// DominantAction returns the index of the highest frequency in d.Played; the
// first maximum wins ties. With no frequencies it returns a zero Dominant
// with Index -1 and false.
func DominantAction(d strategy.HandData) (Dominant, bool) {
	if len(d.Played) == 0 {
		return Dominant{Index: -1}, false
	}
	best := 0
	for i, f := range d.Played {
		if f > d.Played[best] {
			best = i
		}
	}
	return Dominant{Index: best, Frequency: d.Played[best], EV: d.EVs.At(best)}, true
}

// Weighted is an action paired with one hand's frequency and EV for it.
type Weighted struct {
	Kind      strategy.ActionKind `json:"kind"`
	Amount    float64             `json:"amount"`
	Node      int                 `json:"node"`
	Frequency float64             `json:"frequency"`
	EV        float64             `json:"ev"`
}

// Prioritized pairs each node action with the hand's frequency and EV,
// drops actions the hand never takes, and orders the rest: raises first
// (largest first), then call, then check, then fold. Equal entries keep menu
// order.
func Prioritized(d strategy.HandData, actions []strategy.Action) []Weighted {
	out := make([]Weighted, 0, len(actions))
	for i, a := range actions {
		f := d.Played.At(i)
		if f <= 0 {
			continue
		}
		out = append(out, Weighted{
			Kind:      a.Kind(),
			Amount:    a.Amount(),
			Node:      a.Target(),
			Frequency: f,
			EV:        d.EVs.At(i),
		})
	}
	slices.SortStableFunc(out, compareWeighted)
	return out
}

func compareWeighted(a, b Weighted) int {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	if a.Kind == strategy.Raise {
		return cmp.Compare(b.Amount, a.Amount)
	}
	return 0
}

func kindRank(k strategy.ActionKind) int {
	switch k {
	case strategy.Raise:
		return 0
	case strategy.Call:
		return 1
	case strategy.Fold:
		return 3
	default:
		return 2
	}
}

// Cell is what the grid shows for one hand at the current node.
type Cell struct {
	Frequency float64           `json:"frequency"`
	EV        float64           `json:"ev"`
	Data      strategy.HandData `json:"hand_data"`
	Actions   []strategy.Action `json:"actions"`
}

// Prioritized is Prioritized(c.Data, c.Actions).
func (c Cell) Prioritized() []Weighted { return Prioritized(c.Data, c.Actions) }

// Empty reports whether the node had no data for this hand.
func (c Cell) Empty() bool { return len(c.Actions) == 0 }

// Projection maps every canonical hand to its cell. It always holds exactly
// 169 entries.
type Projection map[hands.ID]Cell

// Project builds the projection for n. Hands n has no data for, and every
// hand when n is nil, get a zero cell.
func Project(n *strategy.Node) Projection {
	p := make(Projection, hands.Count)
	for _, id := range hands.All() {
		p[id] = project(n, id)
	}
	return p
}

func project(n *strategy.Node, id hands.ID) Cell {
	if n == nil {
		return Cell{}
	}
	d, ok := n.Hands[id]
	if !ok {
		return Cell{}
	}
	dom, _ := DominantAction(d)
	return Cell{
		Frequency: dom.Frequency,
		EV:        dom.EV,
		Data:      d,
		Actions:   n.Actions,
	}
}

// RaiseAmounts returns the distinct raise sizes found in any cell's action
// list, largest first.
func (p Projection) RaiseAmounts() []float64 {
	seen := map[float64]struct{}{}
	var out []float64
	for _, c := range p {
		for _, a := range c.Actions {
			if !a.IsRaise() {
				continue
			}
			if _, ok := seen[a.Amount()]; ok {
				continue
			}
			seen[a.Amount()] = struct{}{}
			out = append(out, a.Amount())
		}
	}
	slices.SortFunc(out, func(a, b float64) int { return cmp.Compare(b, a) })
	return out
}
