// Package palette turns prioritized action lists into stacked colour bands.
package palette

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/strategy"
)

// Color is a "#rrggbb" hex colour.
type Color string

const (
	CallColor  Color = "#4caf50"
	CheckColor Color = "#ffeb3b"
	FoldColor  Color = "#f5f5f5"
	// Neutral fills the part of a cell no action covers.
	Neutral Color = "#f5f5f5"
	// SmallRaise is shared by every raise ranked below the palette.
	SmallRaise Color = "#bbdefb"
)

// RaiseColors run darkest (largest raise) to lightest.
var RaiseColors = [...]Color{"#0d47a1", "#1565c0", "#1976d2", "#2196f3", "#42a5f5", "#64b5f6"}

// RGB splits c into its channels. Malformed colours come back black.
func (c Color) RGB() (r, g, b uint8) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Table ranks the raise sizes of one projection. Build a new one whenever the
// projection changes.
type Table struct {
	raises []float64
}

// NewTable ranks the given raise amounts largest first; duplicates collapse.
func NewTable(raiseAmounts []float64) Table {
	rs := slices.Clone(raiseAmounts)
	slices.SortFunc(rs, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	return Table{raises: slices.Compact(rs)}
}

// FromProjection is NewTable(p.RaiseAmounts()).
func FromProjection(p aggregate.Projection) Table { return NewTable(p.RaiseAmounts()) }

// Raises returns the ranked raise sizes.
func (t Table) Raises() []float64 { return slices.Clone(t.raises) }

// Rank is the 0-based rank of a raise size, or -1 if the table lacks it.
func (t Table) Rank(amount float64) int { return slices.Index(t.raises, amount) }

// Color picks the colour for one action.
func (t Table) Color(kind strategy.ActionKind, amount float64) Color {
	switch kind {
	case strategy.Fold:
		return FoldColor
	case strategy.Call:
		return CallColor
	case strategy.Raise:
		r := t.Rank(amount)
		if r >= 0 && r < len(RaiseColors) {
			return RaiseColors[r]
		}
		return SmallRaise
	default:
		return CheckColor
	}
}

// Band is one flat-colour segment of a cell, in percent from the anchored
// edge.
type Band struct {
	Color  Color               `json:"color"`
	Start  float64             `json:"start"`
	End    float64             `json:"end"`
	Kind   strategy.ActionKind `json:"kind,omitempty"`
	Amount float64             `json:"amount,omitempty"`
}

func (b Band) Size() float64 { return b.End - b.Start }

const epsilon = 1e-9

// Gradient stacks a prioritized action list into bands covering exactly
// 0..100. The list is walked in reverse so the lowest-priority action sits at
// the anchored edge; any uncovered remainder becomes a Neutral band.
func (t Table) Gradient(actions []aggregate.Weighted) []Band {
	bands := make([]Band, 0, len(actions)+1)
	total := 0.0
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		if total >= 100-epsilon {
			break
		}
		end := math.Min(total+a.Frequency*100, 100)
		bands = append(bands, Band{
			Color:  t.Color(a.Kind, a.Amount),
			Start:  total,
			End:    end,
			Kind:   a.Kind,
			Amount: a.Amount,
		})
		total = end
	}
	switch {
	case len(bands) > 0 && total >= 100-epsilon:
		bands[len(bands)-1].End = 100
	default:
		bands = append(bands, Band{Color: Neutral, Start: total, End: 100})
	}
	return bands
}

// CSS renders bands as a bottom-up linear-gradient with hard stops.
func CSS(bands []Band) string {
	if len(bands) == 0 {
		return string(Neutral)
	}
	stops := make([]string, 0, 2*len(bands))
	for _, b := range bands {
		stops = append(stops,
			fmt.Sprintf("%s %s%%", b.Color, pct(b.Start)),
			fmt.Sprintf("%s %s%%", b.Color, pct(b.End)),
		)
	}
	return "linear-gradient(to top, " + strings.Join(stops, ", ") + ")"
}

func pct(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
