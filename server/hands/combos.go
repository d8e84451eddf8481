package hands

import (
	"errors"
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

// TotalCombos is the number of distinct two-card holdings in a 52-card deck.
const TotalCombos = 1326

var ErrBadCards = errors.New("hands: bad hole cards")

const suitChars = "cdhs"

// Combo is one concrete two-card holding belonging to a hand class.
type Combo struct {
	Cards [2]poker.Card
	text  string
}

func (c Combo) String() string { return c.text }

// ComboCount returns how many concrete holdings make up id: 6 for a pair,
// 4 suited, 12 offsuit, 0 for an invalid id.
func ComboCount(id ID) int {
	switch id.Kind() {
	case Pair:
		return 6
	case Suited:
		return 4
	case Offsuit:
		return 12
	default:
		return 0
	}
}

// Combos enumerates the concrete holdings of id in suit order c,d,h,s.
func Combos(id ID) []Combo {
	hi, lo, kind, ok := Parse(id)
	if !ok {
		return nil
	}
	out := make([]Combo, 0, ComboCount(id))
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			switch kind {
			case Pair:
				if j <= i {
					continue
				}
			case Suited:
				if i != j {
					continue
				}
			case Offsuit:
				if i == j {
					continue
				}
			}
			a, errA := makeCard(hi, suitChars[i])
			b, errB := makeCard(lo, suitChars[j])
			if errA != nil || errB != nil {
				return nil
			}
			out = append(out, Combo{
				Cards: [2]poker.Card{a, b},
				text:  string([]byte{byte(hi), suitChars[i], byte(lo), suitChars[j]}),
			})
		}
	}
	return out
}

// FromHoleCards maps concrete hole cards such as "AsKd" or "Th Tc" to their
// hand class.
func FromHoleCards(s string) (ID, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) != 4 {
		return "", fmt.Errorf("%w: %q", ErrBadCards, s)
	}
	r1, s1 := Rank(upper(s[0])), lower(s[1])
	r2, s2 := Rank(upper(s[2])), lower(s[3])
	c1, err := makeCard(r1, s1)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrBadCards, s, err)
	}
	c2, err := makeCard(r2, s2)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrBadCards, s, err)
	}
	if c1 == c2 {
		return "", fmt.Errorf("%w: %q repeats a card", ErrBadCards, s)
	}
	if r1 == r2 {
		return Canonicalize(r1, r2), nil
	}
	hi, lo := r1, r2
	if lo.Index() < hi.Index() {
		hi, lo = lo, hi
	}
	if s1 == s2 {
		return Canonicalize(hi, lo), nil
	}
	return Canonicalize(lo, hi), nil
}

func makeCard(r Rank, suit byte) (poker.Card, error) {
	var zero poker.Card
	if !r.Valid() {
		return zero, fmt.Errorf("unknown rank %q", byte(r))
	}
	var s poker.Suit
	switch suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	case 's':
		s = poker.Spade
	default:
		return zero, fmt.Errorf("unknown suit %q", suit)
	}
	// library ranks run 1..13 with the ace at 1
	pr := poker.Rank(14 - r.Index())
	if r == 'A' {
		pr = poker.Rank(1)
	}
	return poker.MakeCard(s, pr)
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
