package palette

import (
	"math"
	"strings"
	"testing"

	"gto-rangeviewer/server/aggregate"
	"gto-rangeviewer/server/strategy"

	"pgregory.net/rapid"
)

func TestTableColors(t *testing.T) {
	tbl := NewTable([]float64{100, 900, 300, 200, 400, 600, 500, 300})
	if got := tbl.Raises(); len(got) != 7 || got[0] != 900 || got[6] != 100 {
		t.Fatalf("unexpected ranking %v", got)
	}
	cases := []struct {
		kind   strategy.ActionKind
		amount float64
		want   Color
	}{
		{strategy.Raise, 900, "#0d47a1"},
		{strategy.Raise, 600, "#1565c0"},
		{strategy.Raise, 200, "#64b5f6"},
		{strategy.Raise, 100, SmallRaise},
		{strategy.Raise, 12345, SmallRaise},
		{strategy.Call, 0, CallColor},
		{strategy.Check, 0, CheckColor},
		{strategy.Fold, 0, FoldColor},
	}
	for _, tc := range cases {
		if got := tbl.Color(tc.kind, tc.amount); got != tc.want {
			t.Fatalf("Color(%s,%v) = %s, want %s", tc.kind, tc.amount, got, tc.want)
		}
	}
}

func TestColorRGB(t *testing.T) {
	r, g, b := Color("#0d47a1").RGB()
	if r != 0x0d || g != 0x47 || b != 0xa1 {
		t.Fatalf("unexpected channels %d %d %d", r, g, b)
	}
	if r, g, b := Color("nope").RGB(); r|g|b != 0 {
		t.Fatalf("malformed colour must be black")
	}
}

func TestGradientReversesAndFills(t *testing.T) {
	tbl := NewTable([]float64{300})
	pr := []aggregate.Weighted{
		{Kind: strategy.Raise, Amount: 300, Frequency: 0.5},
		{Kind: strategy.Call, Frequency: 0.3},
	}
	bands := tbl.Gradient(pr)
	if len(bands) != 3 {
		t.Fatalf("expected 3 bands, got %+v", bands)
	}
	if bands[0].Kind != strategy.Call || bands[0].Start != 0 || math.Abs(bands[0].End-30) > 1e-9 {
		t.Fatalf("first band should be the call: %+v", bands[0])
	}
	if bands[1].Color != "#0d47a1" || math.Abs(bands[1].End-80) > 1e-9 {
		t.Fatalf("second band should be the raise: %+v", bands[1])
	}
	if bands[2].Color != Neutral || bands[2].End != 100 || math.Abs(bands[2].Size()-20) > 1e-9 {
		t.Fatalf("expected neutral filler of 20%%: %+v", bands[2])
	}
}

func TestGradientNoFillerWhenFull(t *testing.T) {
	pr := []aggregate.Weighted{
		{Kind: strategy.Call, Frequency: 0.1},
		{Kind: strategy.Fold, Frequency: 0.2},
		{Kind: strategy.Check, Frequency: 0.7},
	}
	bands := NewTable(nil).Gradient(pr)
	if len(bands) != 3 {
		t.Fatalf("expected no filler, got %+v", bands)
	}
	if bands[len(bands)-1].End != 100 {
		t.Fatalf("last band must end at 100, got %v", bands[len(bands)-1].End)
	}
}

func TestGradientEmpty(t *testing.T) {
	bands := NewTable(nil).Gradient(nil)
	if len(bands) != 1 || bands[0].Color != Neutral || bands[0].Start != 0 || bands[0].End != 100 {
		t.Fatalf("unexpected bands %+v", bands)
	}
}

func TestGradientCoverageProperty(t *testing.T) {
	kinds := []strategy.ActionKind{strategy.Raise, strategy.Call, strategy.Check, strategy.Fold}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		weights := make([]float64, n)
		sum := 0.0
		for i := range weights {
			weights[i] = rapid.Float64Range(0.001, 1).Draw(t, "w")
			sum += weights[i]
		}
		scale := rapid.Float64Range(0, 1).Draw(t, "scale")
		var pr []aggregate.Weighted
		s := 0.0
		for i, w := range weights {
			f := w / sum * scale
			s += f
			pr = append(pr, aggregate.Weighted{Kind: rapid.SampledFrom(kinds).Draw(t, "kind"), Amount: float64(100 * (i + 1)), Frequency: f})
		}
		bands := NewTable(nil).Gradient(pr)
		if bands[0].Start != 0 || bands[len(bands)-1].End != 100 {
			t.Fatalf("bands must span [0,100]: %+v", bands)
		}
		for i := 1; i < len(bands); i++ {
			if bands[i].Start != bands[i-1].End {
				t.Fatalf("gap between bands %d and %d: %+v", i-1, i, bands)
			}
		}
		last := bands[len(bands)-1]
		hasFiller := len(bands) == len(pr)+1
		if s < 1-1e-9 && n > 0 {
			if !hasFiller || last.Color != Neutral || math.Abs(last.Size()-100*(1-s)) > 1e-6 {
				t.Fatalf("expected filler of %v, got %+v", 100*(1-s), bands)
			}
		}
		if n > 0 && s >= 1-1e-12 && hasFiller {
			t.Fatalf("unexpected filler for full coverage: %+v", bands)
		}
	})
}

func TestCSS(t *testing.T) {
	bands := []Band{{Color: CallColor, Start: 0, End: 20}, {Color: "#0d47a1", Start: 20, End: 100}}
	got := CSS(bands)
	want := "linear-gradient(to top, #4caf50 0%, #4caf50 20%, #0d47a1 20%, #0d47a1 100%)"
	if got != want {
		t.Fatalf("CSS = %q\nwant %q", got, want)
	}
	if CSS(nil) != string(Neutral) {
		t.Fatalf("no bands must render the neutral colour")
	}
	if !strings.HasPrefix(CSS(NewTable(nil).Gradient(nil)), "linear-gradient(to top") {
		t.Fatalf("gradient expected")
	}
}

func TestLegend(t *testing.T) {
	tbl := NewTable([]float64{250, 300})
	got := tbl.Legend(100)
	labels := make([]string, len(got))
	for i, e := range got {
		labels[i] = e.Label
	}
	want := []string{"Raise 3BB", "Raise 2.5BB", "Call", "Check", "Fold"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	many := NewTable([]float64{1, 2, 3, 4, 5, 6, 7, 8}).Legend(0)
	if len(many) != 10 || many[6].Label != "Smaller raises" || many[0].Label != "Raise 8" {
		t.Fatalf("unexpected legend %+v", many)
	}
}
