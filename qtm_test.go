package qtm

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
)

func init() {
	SetLogger(log.New(io.Discard))
}

var (
	// Writes 1 over every cell until the first blank, then sits on it.
	writeOnes = []TransitionRule{
		{CurrentState: 0, Read: 0, Write: 1, Move: MoveRight, NextState: 0, Amplitude: 1},
		{CurrentState: 0, Read: 1, Write: 1, Move: MoveRight, NextState: 0, Amplitude: 1},
		{CurrentState: 0, Read: Blank, Write: Blank, Move: MoveStay, NextState: 0, Amplitude: 1},
	}

	// Flips the bit under the head in place; a permutation of the whole space.
	flipBits = []TransitionRule{
		{CurrentState: 0, Read: 0, Write: 1, Move: MoveStay, NextState: 0, Amplitude: 1},
		{CurrentState: 0, Read: 1, Write: 0, Move: MoveStay, NextState: 0, Amplitude: 1},
		{CurrentState: 0, Read: Blank, Write: Blank, Move: MoveStay, NextState: 0, Amplitude: 1},
	}

	// Writes 1 and moves to state 1, which has no rules and is the halt state.
	writeAndHalt = []TransitionRule{
		{CurrentState: 0, Read: 0, Write: 1, Move: MoveStay, NextState: 1, Amplitude: 1},
	}
)

// hadamard applies H to the cell under the head every step.
func hadamard() []TransitionRule {
	h := complex(math.Sqrt2/2, 0)
	return []TransitionRule{
		{CurrentState: 0, Read: 0, Write: 0, Move: MoveStay, NextState: 0, Amplitude: h},
		{CurrentState: 0, Read: 0, Write: 1, Move: MoveStay, NextState: 0, Amplitude: h},
		{CurrentState: 0, Read: 1, Write: 0, Move: MoveStay, NextState: 0, Amplitude: h},
		{CurrentState: 0, Read: 1, Write: 1, Move: MoveStay, NextState: 0, Amplitude: -h},
		{CurrentState: 0, Read: Blank, Write: Blank, Move: MoveStay, NextState: 0, Amplitude: 1},
	}
}

func mustBuild(rules []TransitionRule, tapeLength int) (*Operator, Geometry) {
	g := DeriveGeometry(rules, tapeLength)
	op, err := Build(rules, g)
	if err != nil {
		panic(err)
	}
	return op, g
}

func mustMachine(rules []TransitionRule, tapeLength int, opts ...Option) *Machine {
	op, g := mustBuild(rules, tapeLength)
	m, err := NewMachine(op, g.NumStates, g.StartState, g.TapeLength, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// scriptedSource replays fixed draws.
type scriptedSource struct {
	draws []float64
	next  int
}

func (s *scriptedSource) Float64() float64 {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}
