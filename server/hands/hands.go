package hands

import (
	"slices"
	"strings"
)

// Ranks lists the 13 card ranks from strongest to weakest. The order drives
// grid layout and suited/offsuit canonicalisation.
const Ranks = "AKQJT98765432"

// Count is the number of distinct starting-hand classes.
const Count = 169

// Rank is a single rank symbol, e.g. 'A' or 'T'.
type Rank byte

// Index returns the position of r in Ranks (0 = ace) or -1.
func (r Rank) Index() int { return strings.IndexByte(Ranks, byte(r)) }

func (r Rank) Valid() bool { return r.Index() >= 0 }

func (r Rank) String() string { return string(r) }

// RankAt returns the i-th strongest rank.
func RankAt(i int) Rank { return Rank(Ranks[i]) }

// Kind classifies a hand identity.
type Kind uint8

const (
	Invalid Kind = iota
	Pair
	Suited
	Offsuit
)

func (k Kind) String() string {
	switch k {
	case Pair:
		return "pair"
	case Suited:
		return "suited"
	case Offsuit:
		return "offsuit"
	default:
		return "invalid"
	}
}

// ID is the canonical identity of a starting-hand class: "AA", "AKs", "AKo".
type ID string

// Canonicalize maps a grid position (row rank a, column rank b) to its hand.
// The position whose row rank is strictly stronger is the suited hand; the
// mirror position is the offsuit hand of the same rank pair.
func Canonicalize(a, b Rank) ID {
	if a == b {
		return ID([]byte{byte(a), byte(a)})
	}
	if a.Index() < b.Index() {
		return ID([]byte{byte(a), byte(b), 's'})
	}
	return ID([]byte{byte(b), byte(a), 'o'})
}

var (
	grid [13][13]ID
	all  []ID
)

func init() {
	seen := make(map[ID]struct{}, Count)
	all = make([]ID, 0, Count)
	for i := range 13 {
		for j := range 13 {
			id := Canonicalize(RankAt(i), RankAt(j))
			grid[i][j] = id
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}
}

// All returns the 169 canonical hands in row-major grid order.
func All() []ID { return slices.Clone(all) }

// Grid returns the 13x13 layout: rows and columns both run A..2, suited hands
// above the diagonal.
func Grid() [13][13]ID { return grid }

// Parse splits a hand identity into its ranks (stronger first) and kind.
func Parse(id ID) (hi, lo Rank, kind Kind, ok bool) {
	s := string(id)
	switch len(s) {
	case 2:
		hi, lo = Rank(s[0]), Rank(s[1])
		if hi != lo || !hi.Valid() {
			return 0, 0, Invalid, false
		}
		return hi, lo, Pair, true
	case 3:
		hi, lo = Rank(s[0]), Rank(s[1])
		if !hi.Valid() || !lo.Valid() || hi.Index() >= lo.Index() {
			return 0, 0, Invalid, false
		}
		switch s[2] {
		case 's':
			return hi, lo, Suited, true
		case 'o':
			return hi, lo, Offsuit, true
		}
	}
	return 0, 0, Invalid, false
}

// Kind reports whether id is a pair, suited or offsuit hand.
func (id ID) Kind() Kind {
	_, _, k, _ := Parse(id)
	return k
}

func (id ID) Valid() bool { return id.Kind() != Invalid }

// Cell returns the grid row and column where id is drawn.
func (id ID) Cell() (row, col int, ok bool) {
	hi, lo, kind, ok := Parse(id)
	if !ok {
		return 0, 0, false
	}
	if kind == Offsuit {
		return lo.Index(), hi.Index(), true
	}
	return hi.Index(), lo.Index(), true
}
