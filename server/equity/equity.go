// Package equity estimates preflop all-in equity of a hand class against a
// uniformly random opposing hand.
package equity

import (
	"context"
	"errors"
	"math/rand"
	"runtime"

	"gto-rangeviewer/server/hands"

	poker "github.com/paulhankin/poker"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownHand = errors.New("equity: unknown hand class")

type Result struct {
	Hand    hands.ID `json:"hand"`
	Samples int64    `json:"samples"`
	Win     int64    `json:"win"`
	Tie     int64    `json:"tie"`
	Equity  float64  `json:"equity"`
}

// deck is the 52 library cards, suits c,d,h,s and ranks ace..king.
var deck = func() []poker.Card {
	out := make([]poker.Card, 0, 52)
	for _, s := range []poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade} {
		// Library ranks: 1..13 (Ace=1).
		for r := 1; r <= 13; r++ {
			c, err := poker.MakeCard(s, poker.Rank(r))
			if err != nil {
				panic(err)
			}
			out = append(out, c)
		}
	}
	return out
}()

// Estimate runs about samples random runouts spread evenly over every combo
// of id. The same seed always gives the same result.
func Estimate(ctx context.Context, id hands.ID, samples int, seed int64) (Result, error) {
	combos := hands.Combos(id)
	if len(combos) == 0 {
		return Result{}, ErrUnknownHand
	}
	if samples < len(combos) {
		samples = len(combos)
	}
	per := (samples + len(combos) - 1) / len(combos)

	parts := make([]Result, len(combos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, c := range combos {
		g.Go(func() error {
			r, err := runCombo(ctx, c.Cards, per, seed+int64(i))
			parts[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Hand: id}
	for _, p := range parts {
		res.Samples += p.Samples
		res.Win += p.Win
		res.Tie += p.Tie
	}
	if res.Samples > 0 {
		res.Equity = (float64(res.Win) + 0.5*float64(res.Tie)) / float64(res.Samples)
	}
	return res, nil
}

func runCombo(ctx context.Context, hole [2]poker.Card, n int, seed int64) (Result, error) {
	avail := make([]poker.Card, 0, len(deck)-2)
	for _, c := range deck {
		if c != hole[0] && c != hole[1] {
			avail = append(avail, c)
		}
	}
	rng := rand.New(rand.NewSource(seed))

	var res Result
	var hero, villain [7]poker.Card
	hero[0], hero[1] = hole[0], hole[1]
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		// partial shuffle: the first 7 cards are 2 villain + 5 board
		for k := 0; k < 7; k++ {
			j := k + rng.Intn(len(avail)-k)
			avail[k], avail[j] = avail[j], avail[k]
		}
		villain[0], villain[1] = avail[0], avail[1]
		for b := 0; b < 5; b++ {
			hero[2+b] = avail[2+b]
			villain[2+b] = avail[2+b]
		}
		hs, vs := poker.Eval7(&hero), poker.Eval7(&villain)
		switch {
		case hs > vs:
			res.Win++
		case hs == vs:
			res.Tie++
		}
		res.Samples++
	}
	return res, nil
}
