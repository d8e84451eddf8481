// Package render draws the 13x13 hand grid of a navigator snapshot, as SVG
// for the browser and as coloured text for the terminal.
package render

import (
	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/hands"
	"gto-rangeviewer/server/navigator"
	"gto-rangeviewer/server/palette"
)

// GridCell is everything a renderer needs for one hand.
type GridCell struct {
	Hand      hands.ID             `json:"hand"`
	Row       int                  `json:"row"`
	Col       int                  `json:"col"`
	Frequency float64              `json:"frequency"`
	EV        float64              `json:"ev"`
	Empty     bool                 `json:"empty"`
	Actions   []aggregate.Weighted `json:"actions"`
	Bands     []palette.Band       `json:"bands"`
	CSS       string               `json:"css"`
}

// Grid lays out the snapshot's projection in grid order (row-major). The
// palette is ranked once for the whole grid.
func Grid(s navigator.State) []GridCell {
	proj := s.Projection()
	tbl := palette.FromProjection(proj)
	grid := hands.Grid()

	out := make([]GridCell, 0, len(grid)*len(grid))
	for r, row := range grid {
		for c, id := range row {
			cell := proj[id]
			pr := cell.Prioritized()
			bands := tbl.Gradient(pr)
			out = append(out, GridCell{
				Hand:      id,
				Row:       r,
				Col:       c,
				Frequency: cell.Frequency,
				EV:        cell.EV,
				Empty:     cell.Empty(),
				Actions:   pr,
				Bands:     bands,
				CSS:       palette.CSS(bands),
			})
		}
	}
	return out
}

// dominantBand is the widest band of a cell, or Neutral for an empty cell.
func dominantBand(bands []palette.Band) palette.Band {
	best := palette.Band{Color: palette.Neutral}
	for _, b := range bands {
		if b.Size() > best.Size() {
			best = b
		}
	}
	return best
}
