package qtm

import "fmt"

/*
Indexer maps machine configurations to positions in the amplitude vector
and back.

The mapping is a mixed-radix number with the head as the most significant
digit, then the control state, then the tape read as a base-Base number with
cell 0 as the least significant digit:

	index = head*(NumStates*Base^L) + state*Base^L + sum(tape[y]*Base^y)

Radix powers are computed once when the Indexer is built. An Indexer is
immutable and safe to share.
*/
type Indexer struct {
	tapeLength  int
	numStates   int
	base        int
	powers      []int // powers[y] == base^y for y in [0, tapeLength]
	stateStride int
	headStride  int
	size        int
}

// NewIndexer builds the radix tables for a geometry.
func NewIndexer(g Geometry) (*Indexer, error) {
	if g.TapeLength <= 0 || g.NumStates <= 0 || g.Base < 2 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, g)
	}

	size, err := g.Dimension()
	if err != nil {
		return nil, err
	}

	powers := make([]int, g.TapeLength+1)
	powers[0] = 1
	for y := 1; y <= g.TapeLength; y++ {
		powers[y] = powers[y-1] * g.Base
	}

	return &Indexer{
		tapeLength:  g.TapeLength,
		numStates:   g.NumStates,
		base:        g.Base,
		powers:      powers,
		stateStride: powers[g.TapeLength],
		headStride:  g.NumStates * powers[g.TapeLength],
		size:        size,
	}, nil
}

// Size is the number of configurations, i.e. the vector dimension.
func (ix *Indexer) Size() int {
	return ix.size
}

// Power returns Base^y for y in [0, TapeLength].
func (ix *Indexer) Power(y int) int {
	return ix.powers[y]
}

// Encode returns the vector index of a configuration.
func (ix *Indexer) Encode(head, state int, tape []int) (int, error) {
	if head < 0 || head >= ix.tapeLength {
		return 0, fmt.Errorf("%w: head %d outside [0,%d)", ErrIndexOutOfRange, head, ix.tapeLength)
	}

	if state < 0 || state >= ix.numStates {
		return 0, fmt.Errorf("%w: state %d outside [0,%d)", ErrIndexOutOfRange, state, ix.numStates)
	}

	if len(tape) != ix.tapeLength {
		return 0, fmt.Errorf("%w: tape has %d cells, want %d", ErrIndexOutOfRange, len(tape), ix.tapeLength)
	}

	index := head*ix.headStride + state*ix.stateStride
	for y, symbol := range tape {
		if symbol < 0 || symbol >= ix.base {
			return 0, fmt.Errorf("%w: symbol %d at cell %d outside [0,%d)", ErrIndexOutOfRange, symbol, y, ix.base)
		}
		index += symbol * ix.powers[y]
	}

	return index, nil
}

// Decode is the inverse of Encode.
func (ix *Indexer) Decode(index int) (head, state int, tape []int, err error) {
	if index < 0 || index >= ix.size {
		return 0, 0, nil, fmt.Errorf("%w: index %d outside [0,%d)", ErrIndexOutOfRange, index, ix.size)
	}

	head = index / ix.headStride
	rest := index % ix.headStride
	state = rest / ix.stateStride
	rest %= ix.stateStride

	tape = make([]int, ix.tapeLength)
	for y := range tape {
		tape[y] = rest % ix.base
		rest /= ix.base
	}

	return head, state, tape, nil
}

// StateOf extracts the control state of a valid index without decoding the tape.
func (ix *Indexer) StateOf(index int) int {
	return (index % ix.headStride) / ix.stateStride
}

// HeadOf extracts the head position of a valid index.
func (ix *Indexer) HeadOf(index int) int {
	return index / ix.headStride
}
