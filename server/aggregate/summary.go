package aggregate

import (
	"gto-rangeviewer/server/hands"
	"gto-rangeviewer/server/strategy"
)

// ActionShare is how much of the whole range takes one node action.
type ActionShare struct {
	Action strategy.Action `json:"action"`
	Combos float64         `json:"combos"`
	Share  float64         `json:"share"`
	EV     float64         `json:"ev"`
}

// Summarize weighs every hand by weight x combo count and reports, per node
// action, the combos routed into it, their share of the weighted range and
// their combo-weighted average EV. Actions come back in menu order.
func Summarize(p Projection, actions []strategy.Action) []ActionShare {
	out := make([]ActionShare, len(actions))
	for i, a := range actions {
		out[i].Action = a
	}
	var total float64
	evSum := make([]float64, len(actions))
	for _, id := range hands.All() {
		c, ok := p[id]
		if !ok || c.Empty() {
			continue
		}
		w := c.Data.Weight * float64(hands.ComboCount(id))
		if w <= 0 {
			continue
		}
		total += w
		for i := range actions {
			f := c.Data.Played.At(i)
			if f <= 0 {
				continue
			}
			out[i].Combos += w * f
			evSum[i] += w * f * c.Data.EVs.At(i)
		}
	}
	for i := range out {
		if total > 0 {
			out[i].Share = out[i].Combos / total
		}
		if out[i].Combos > 0 {
			out[i].EV = evSum[i] / out[i].Combos
		}
	}
	return out
}
