package qtm

import (
	"fmt"
	"math"
)

const (
	// DefaultBase is the size of the tape alphabet {0, 1, blank}.
	DefaultBase = 3

	// Blank is the tape symbol of an empty cell.
	Blank = 2
)

/*
Geometry describes the finite configuration space a machine lives in.

Every configuration is a (head, state, tape) triple with the head somewhere
on a tape of TapeLength cells, the control in one of NumStates states and
each cell holding one of Base symbols. The amplitude vector and the operator
both have Dimension() = TapeLength * NumStates * Base^TapeLength entries
per side.

HaltState defaults to NumStates-1. When it equals StartState halting
detection is disabled.
*/
type Geometry struct {
	TapeLength int
	NumStates  int
	Base       int
	StartState int
	HaltState  int
}

// NewGeometry returns the default geometry for a tape and state count.
func NewGeometry(tapeLength, numStates int) Geometry {
	return Geometry{
		TapeLength: tapeLength,
		NumStates:  numStates,
		Base:       DefaultBase,
		StartState: 0,
		HaltState:  numStates - 1,
	}
}

/*
DeriveGeometry sizes a machine from its rules. The state count is one more
than the largest state id appearing on either side of any rule.
*/
func DeriveGeometry(rules []TransitionRule, tapeLength int) Geometry {
	return NewGeometry(tapeLength, CountStates(rules))
}

// Validate checks the geometry describes a non-empty, addressable space.
func (g Geometry) Validate() error {
	switch {
	case g.TapeLength <= 0:
		return fmt.Errorf("%w: tape length %d", ErrInvalidGeometry, g.TapeLength)
	case g.NumStates <= 0:
		return fmt.Errorf("%w: state count %d", ErrInvalidGeometry, g.NumStates)
	case g.Base < 2:
		return fmt.Errorf("%w: alphabet size %d", ErrInvalidGeometry, g.Base)
	case g.StartState < 0 || g.StartState >= g.NumStates:
		return fmt.Errorf("%w: start state %d outside [0,%d)", ErrInvalidGeometry, g.StartState, g.NumStates)
	case g.HaltState < 0 || g.HaltState >= g.NumStates:
		return fmt.Errorf("%w: halt state %d outside [0,%d)", ErrInvalidGeometry, g.HaltState, g.NumStates)
	}

	if _, err := g.Dimension(); err != nil {
		return err
	}

	return nil
}

// Dimension is the length of the amplitude vector.
func (g Geometry) Dimension() (int, error) {
	if g.TapeLength <= 0 || g.NumStates <= 0 || g.Base < 2 {
		return 0, fmt.Errorf("%w: empty configuration space", ErrInvalidGeometry)
	}

	size := 1
	for i := 0; i < g.TapeLength; i++ {
		if size > math.MaxInt/g.Base {
			return 0, fmt.Errorf("%w: %d^%d tape assignments overflow", ErrInvalidGeometry, g.Base, g.TapeLength)
		}
		size *= g.Base
	}

	for _, factor := range []int{g.NumStates, g.TapeLength} {
		if size > math.MaxInt/factor {
			return 0, fmt.Errorf("%w: dimension overflows", ErrInvalidGeometry)
		}
		size *= factor
	}

	return size, nil
}

// HaltingEnabled is false in the degenerate case StartState == HaltState.
func (g Geometry) HaltingEnabled() bool {
	return g.StartState != g.HaltState
}

func (g Geometry) String() string {
	dim, err := g.Dimension()
	if err != nil {
		return fmt.Sprintf("geometry{tape: %d, states: %d, base: %d, dimension: overflow}",
			g.TapeLength, g.NumStates, g.Base)
	}

	return fmt.Sprintf("geometry{tape: %d, states: %d, base: %d, start: %d, halt: %d, dimension: %d}",
		g.TapeLength, g.NumStates, g.Base, g.StartState, g.HaltState, dim)
}
