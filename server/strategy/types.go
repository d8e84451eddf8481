package strategy

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gto-rangeviewer/server/hands"

	json "github.com/goccy/go-json"
)

// Position is a table seat. The export encodes it as 0 (EP) .. 7 (BB).
type Position uint8

const (
	EP Position = iota
	MP
	LJ
	HJ
	CO
	BU
	SB
	BB
)

// NoPosition stands for a player code that could not be read.
const NoPosition Position = math.MaxUint8

var positionNames = [...]string{"EP", "MP", "LJ", "HJ", "CO", "BU", "SB", "BB"}

// Positions lists every seat in table order.
func Positions() []Position { return []Position{EP, MP, LJ, HJ, CO, BU, SB, BB} }

func (p Position) Valid() bool { return int(p) < len(positionNames) }

func (p Position) String() string {
	if !p.Valid() {
		return "P" + strconv.Itoa(int(p))
	}
	return positionNames[p]
}

// ParsePosition accepts a seat name ("co", "BB") or its numeric code.
func ParsePosition(s string) (Position, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range positionNames {
		if name == s {
			return Position(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(positionNames) {
		return Position(n), nil
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

func (p Position) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

// UnmarshalJSON accepts a seat name or a numeric code. Codes outside the
// known seats are kept as-is and render as "P<n>"; anything unreadable
// becomes NoPosition. A stray player never fails the whole export.
func (p *Position) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*p = NoPosition
			return nil
		}
		v, err := ParsePosition(s)
		if err != nil {
			v = NoPosition
		}
		*p = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || f < 0 || f >= float64(NoPosition) || f != math.Trunc(f) {
		*p = NoPosition
		return nil
	}
	*p = Position(f)
	return nil
}

type ActionKind string

const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Raise ActionKind = "raise"
)

// KindFromCode maps an export action code. F, C and R are the codes the
// export uses; anything else is treated as a check.
func KindFromCode(code string) ActionKind {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "F":
		return Fold
	case "C":
		return Call
	case "R":
		return Raise
	default:
		return Check
	}
}

// ParseKind accepts either an export code ("R") or a kind name ("raise").
func ParseKind(s string) (ActionKind, error) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(s))) {
	case Fold, "f":
		return Fold, nil
	case Check, "x", "k":
		return Check, nil
	case Call, "c":
		return Call, nil
	case Raise, "r":
		return Raise, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Code is the single-letter export code for k.
func (k ActionKind) Code() string {
	switch k {
	case Fold:
		return "F"
	case Call:
		return "C"
	case Raise:
		return "R"
	default:
		return "X"
	}
}

// Action is one menu entry at a node. Only raises carry an amount; the
// constructor zeroes it for every other kind.
type Action struct {
	kind   ActionKind
	amount float64
	target int
}

func NewAction(kind ActionKind, amount float64, target int) Action {
	if kind != Raise {
		amount = 0
	}
	return Action{kind: kind, amount: amount, target: target}
}

// RaiseTo is a raise to amount chips leading to node target.
func RaiseTo(amount float64, target int) Action { return NewAction(Raise, amount, target) }

func (a Action) Kind() ActionKind { return a.kind }
func (a Action) Amount() float64 { return a.amount }
func (a Action) Target() int { return a.target }
func (a Action) IsRaise() bool { return a.kind == Raise }

// Label renders a short action name, sizing raises in big blinds when bb > 0.
func (a Action) Label(bb float64) string {
	switch a.kind {
	case Raise:
		return "R " + FormatBB(a.amount, bb)
	case Call:
		return "C"
	case Fold:
		return "F"
	default:
		return "X"
	}
}

type actionJSON struct {
	Kind   ActionKind `json:"kind"`
	Amount float64    `json:"amount"`
	Node   int        `json:"node"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Kind: a.kind, Amount: a.amount, Node: a.target})
}

// FormatBB renders chips as big blinds with at most one decimal ("2.5BB",
// "3BB"). Without a big blind the raw chip amount is shown.
func FormatBB(chips, bb float64) string {
	if bb <= 0 {
		return strconv.FormatFloat(chips, 'f', -1, 64)
	}
	s := strconv.FormatFloat(chips/bb, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + "BB"
}

// HandData is one hand's strategy at a node: played and evs are aligned with
// the node's action list.
type HandData struct {
	Weight float64 `json:"weight"`
	Played Vector  `json:"played"`
	EVs    Vector  `json:"evs"`
}

// UnmarshalJSON reads weight leniently: a number, a numeric string, or 0.
func (h *HandData) UnmarshalJSON(b []byte) error {
	var raw struct {
		Weight json.RawMessage `json:"weight"`
		Played Vector          `json:"played"`
		EVs    Vector          `json:"evs"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		*h = HandData{}
		return nil
	}
	*h = HandData{Weight: lenientFloat(raw.Weight), Played: raw.Played, EVs: raw.EVs}
	return nil
}

func lenientFloat(b []byte) float64 {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// Vector is a list of per-action numbers. Anything that does not decode as a
// number array (a string, an object) becomes an empty vector instead of
// failing the whole export.
type Vector []float64

func (v *Vector) UnmarshalJSON(b []byte) error {
	var xs []float64
	if err := json.Unmarshal(b, &xs); err != nil {
		*v = nil
		return nil
	}
	*v = xs
	return nil
}

// At returns v[i], or 0 when i is out of range.
func (v Vector) At(i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

// Node is one decision point of the strategy tree.
type Node struct {
	ID       int                   `json:"id"`
	Player   Position              `json:"player"`
	Street   int                   `json:"street"`
	Sequence []int                 `json:"sequence"`
	Actions  []Action              `json:"actions"`
	Hands    map[hands.ID]HandData `json:"-"`
}

// IsRoot reports whether n opens the preflop tree for its player.
func (n *Node) IsRoot() bool {
	return n != nil && len(n.Sequence) == 0 && n.Street == 0
}

// RaiseAmounts returns the node's raise sizes in menu order.
func (n *Node) RaiseAmounts() []float64 {
	var out []float64
	for _, a := range n.Actions {
		if a.IsRaise() {
			out = append(out, a.Amount())
		}
	}
	return out
}
