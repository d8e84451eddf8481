package equity

import (
	"context"
	"errors"
	"math"
	"testing"

	"gto-rangeviewer/server/hands"
)

func TestDeckHas52DistinctCards(t *testing.T) {
	seen := map[any]bool{}
	for _, c := range deck {
		seen[c] = true
	}
	if len(deck) != 52 || len(seen) != 52 {
		t.Fatalf("deck has %d cards, %d distinct", len(deck), len(seen))
	}
}

func TestEstimateKnownHands(t *testing.T) {
	cases := []struct {
		hand hands.ID
		want float64
	}{
		{"AA", 0.852},
		{"72o", 0.346},
		{"AKs", 0.670},
	}
	for _, tc := range cases {
		res, err := Estimate(context.Background(), tc.hand, 24000, 7)
		if err != nil {
			t.Fatalf("Estimate(%s): %v", tc.hand, err)
		}
		if math.Abs(res.Equity-tc.want) > 0.025 {
			t.Fatalf("%s equity = %.3f, want about %.3f", tc.hand, res.Equity, tc.want)
		}
		if res.Samples < 24000 || res.Win+res.Tie > res.Samples {
			t.Fatalf("%s counts = %+v", tc.hand, res)
		}
	}
}

func TestEstimateDeterministic(t *testing.T) {
	a, _ := Estimate(context.Background(), "QJs", 2000, 42)
	b, _ := Estimate(context.Background(), "QJs", 2000, 42)
	if a != b {
		t.Fatalf("same seed gave %+v and %+v", a, b)
	}
}

func TestEstimateErrors(t *testing.T) {
	if _, err := Estimate(context.Background(), "ZZ", 100, 1); !errors.Is(err, ErrUnknownHand) {
		t.Fatalf("expected ErrUnknownHand, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Estimate(ctx, "AA", 100000, 1); err == nil {
		t.Fatalf("cancelled context should stop the estimate")
	}
}

func TestStrongerHandWinsMore(t *testing.T) {
	aces, err := Estimate(context.Background(), "AA", 4000, 3)
	if err != nil {
		t.Fatalf("Estimate(AA): %v", err)
	}
	trash, err := Estimate(context.Background(), "72o", 4000, 3)
	if err != nil {
		t.Fatalf("Estimate(72o): %v", err)
	}
	if aces.Equity <= 0.5 || trash.Equity >= 0.5 || aces.Win <= trash.Win {
		t.Fatalf("AA %+v should beat 72o %+v", aces, trash)
	}
}
