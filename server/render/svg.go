package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gto-rangeviewer/server/navigator"

	svg "github.com/ajstarks/svgo"
)

const (
	cellSize    = 44
	gridPad     = 16
	headerH     = 40
	legendRow   = 20
	colorText   = "#212121"
	colorStroke = "#9e9e9e"
	colorBG     = "#ffffff"
)

// SVG writes the grid for s as a standalone SVG document: breadcrumbs on
// top, 169 cells with their stacked bands, then the legend.
func SVG(w io.Writer, s navigator.State) error {
	tbl := s.Palette()
	legend := tbl.Legend(s.BigBlind())

	side := 13 * cellSize
	width := side + 2*gridPad
	height := headerH + side + gridPad + len(legend)*legendRow + gridPad

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+colorBG)
	canvas.Text(gridPad, 26, title(s), fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", colorText))

	for _, c := range Grid(s) {
		x := gridPad + c.Col*cellSize
		y := headerH + c.Row*cellSize
		drawCell(canvas, x, y, c)
	}

	ly := headerH + side + gridPad + 12
	for i, e := range legend {
		y := ly + i*legendRow
		canvas.Rect(gridPad, y-10, 14, 14, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", e.Color, colorStroke))
		canvas.Text(gridPad+22, y+1, e.Label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", colorText))
	}
	canvas.End()
	return nil
}

// Bands grow upward from the bottom edge of the cell.
func drawCell(canvas *svg.SVG, x, y int, c GridCell) {
	bottom := y + cellSize
	for _, b := range c.Bands {
		top := bottom - px(b.End)
		low := bottom - px(b.Start)
		if low-top <= 0 {
			continue
		}
		canvas.Rect(x, top, cellSize, low-top, "fill:"+string(b.Color))
	}
	canvas.Rect(x, y, cellSize, cellSize, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", colorStroke))
	canvas.Text(x+cellSize/2, y+cellSize/2+4, string(c.Hand), fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", labelColor(c)))
}

func px(percent float64) int { return int(math.Round(percent * cellSize / 100)) }

// White text on the darker raise colours.
func labelColor(c GridCell) string {
	r, g, b := dominantBand(c.Bands).Color.RGB()
	if 299*int(r)+587*int(g)+114*int(b) < 128*1000 {
		return "#ffffff"
	}
	return colorText
}

func title(s navigator.State) string {
	crumbs := s.Breadcrumbs()
	if len(crumbs) == 0 {
		return "no node selected"
	}
	labels := make([]string, len(crumbs))
	for i, c := range crumbs {
		labels[i] = c.Label
	}
	return strings.Join(labels, " / ")
}
