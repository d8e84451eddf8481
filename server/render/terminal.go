package render

import (
	"fmt"
	"strings"

	"gto-rangeviewer/server/navigator"
	"gto-rangeviewer/server/palette"

	"github.com/pterm/pterm"
)

// Terminal renders s as text: a box with the path, the grid with each hand
// tinted by its widest band, the legend, and the action summary table.
func Terminal(s navigator.State) (string, error) {
	var b strings.Builder

	// no box title: pterm panics when the title is wider than a short path
	pbox := pterm.DefaultBox.WithHorizontalPadding(2)
	b.WriteString(pbox.Sprintf("%s  %s", pterm.LightCyan("PATH"), title(s)))
	b.WriteString("\n")

	for i, c := range Grid(s) {
		if i > 0 && c.Col == 0 {
			b.WriteString("\n")
		}
		b.WriteString(tint(c))
	}
	b.WriteString("\n\n")

	for _, e := range s.Palette().Legend(s.BigBlind()) {
		b.WriteString(swatch(e.Color) + " " + e.Label + "  ")
	}
	b.WriteString("\n")

	summary := s.Summary()
	if len(summary) == 0 {
		return b.String(), nil
	}
	data := pterm.TableData{{"Action", "Combos", "Share", "EV"}}
	for _, sh := range summary {
		data = append(data, []string{
			sh.Action.Label(s.BigBlind()),
			fmt.Sprintf("%.1f", sh.Combos),
			fmt.Sprintf("%.1f%%", sh.Share*100),
			fmt.Sprintf("%.2f", sh.EV),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	b.WriteString("\n" + table + "\n")
	return b.String(), nil
}

func tint(c GridCell) string {
	label := fmt.Sprintf(" %-4s", c.Hand)
	if c.Empty {
		return pterm.FgDarkGray.Sprint(label)
	}
	r, g, bl := dominantBand(c.Bands).Color.RGB()
	return pterm.NewRGB(r, g, bl).Sprint(label)
}

func swatch(c palette.Color) string {
	r, g, b := c.RGB()
	return pterm.NewRGB(r, g, b).Sprint("■")
}
