package palette

import "gto-rangeviewer/server/strategy"

type LegendEntry struct {
	Color Color  `json:"color"`
	Label string `json:"label"`
}

// Legend lists the colours in use: one entry per ranked raise (sized in big
// blinds when bb > 0), a shared entry for raises past the palette, then call,
// check and fold.
func (t Table) Legend(bb float64) []LegendEntry {
	out := make([]LegendEntry, 0, len(RaiseColors)+4)
	for i, amount := range t.raises {
		if i >= len(RaiseColors) {
			out = append(out, LegendEntry{Color: SmallRaise, Label: "Smaller raises"})
			break
		}
		out = append(out, LegendEntry{Color: RaiseColors[i], Label: "Raise " + strategy.FormatBB(amount, bb)})
	}
	return append(out,
		LegendEntry{Color: CallColor, Label: "Call"},
		LegendEntry{Color: CheckColor, Label: "Check"},
		LegendEntry{Color: FoldColor, Label: "Fold"},
	)
}
