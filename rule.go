package qtm

import (
	"fmt"
	"strconv"
	"strings"
)

// Move is the head displacement of a transition.
type Move int

const (
	MoveLeft  Move = -1
	MoveStay  Move = 0
	MoveRight Move = 1
)

// ParseMove accepts L/R/S (N is an alias of S) or -1/0/1.
func ParseMove(s string) (Move, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "-1":
		return MoveLeft, nil
	case "S", "N", "0":
		return MoveStay, nil
	case "R", "1", "+1":
		return MoveRight, nil
	}

	return 0, fmt.Errorf("unknown head move %q", s)
}

func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "L"
	case MoveStay:
		return "S"
	case MoveRight:
		return "R"
	}
	return strconv.Itoa(int(m))
}

/*
TransitionRule is one weighted branch of the machine's transition function:
in CurrentState, reading Read under the head, write Write, move the head by
Move and enter NextState, with complex weight Amplitude.

Rule order does not matter. Rules that land on the same cell of the operator
add their amplitudes.
*/
type TransitionRule struct {
	CurrentState int
	Read         int
	Write        int
	Move         Move
	NextState    int
	Amplitude    complex128
}

func (r TransitionRule) String() string {
	return fmt.Sprintf("(q%d,%d)->(%d,%s,q%d)x%v",
		r.CurrentState, r.Read, r.Write, r.Move, r.NextState, r.Amplitude)
}

// validate returns the reason the rule does not fit the geometry, or "".
func (r TransitionRule) validate(g Geometry) string {
	switch {
	case r.CurrentState < 0 || r.CurrentState >= g.NumStates:
		return fmt.Sprintf("current state outside [0,%d)", g.NumStates)
	case r.NextState < 0 || r.NextState >= g.NumStates:
		return fmt.Sprintf("next state outside [0,%d)", g.NumStates)
	case r.Read < 0 || r.Read >= g.Base:
		return fmt.Sprintf("read symbol outside [0,%d)", g.Base)
	case r.Write < 0 || r.Write >= g.Base:
		return fmt.Sprintf("write symbol outside [0,%d)", g.Base)
	case r.Move < MoveLeft || r.Move > MoveRight:
		return "head move not in {-1,0,1}"
	}
	return ""
}

// ValidateRules checks every rule against the geometry.
func ValidateRules(rules []TransitionRule, g Geometry) error {
	for i, rule := range rules {
		if reason := rule.validate(g); reason != "" {
			return &RuleError{Position: i, Rule: rule, Reason: reason}
		}
	}
	return nil
}

// CountStates returns one more than the largest state id in the rules.
func CountStates(rules []TransitionRule) int {
	highest := -1
	for _, rule := range rules {
		highest = max(highest, rule.CurrentState, rule.NextState)
	}
	return highest + 1
}
