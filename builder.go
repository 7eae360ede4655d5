package qtm

import (
	"fmt"
	"math/cmplx"

	"github.com/theapemachine/errnie"
)

// cell addresses one matrix entry: amplitude flows from col into row.
type cell struct {
	row int
	col int
}

/*
Builder folds transition rules into an Operator.

For a rule (q1, r) -> (w, m, q2) with amplitude a and every head position i,
the rule moves amplitude a from each configuration with head i, state q1 and
r under the head to the configuration with head i+m, state q2 and w written
at cell i. The other cells are untouched, so the builder only walks the
Base^(TapeLength-1) assignments of those cells per position instead of the
full matrix.

When i+m falls off the tape the amplitude is routed into a self-loop on the
source configuration: head, state and tape stay as they were. This applies
to both ends of the tape.

Colliding contributions add. Nothing is visible until Operator is called,
and the result is immutable.
*/
type Builder struct {
	geometry      Geometry
	indexer       *Indexer
	zeroTolerance float64
	cells         map[cell]complex128
	folded        int
	boundary      int
}

// NewBuilder prepares an empty accumulation for a geometry.
func NewBuilder(g Geometry, config *Config) (*Builder, error) {
	if config == nil {
		config = NewConfig()
	}

	indexer, err := NewIndexer(g)
	if err != nil {
		return nil, err
	}

	return &Builder{
		geometry:      g,
		indexer:       indexer,
		zeroTolerance: config.ZeroTolerance,
		cells:         make(map[cell]complex128),
	}, nil
}

/*
Build validates every rule, folds them all and returns the Operator. No
operator is returned when any rule is invalid.
*/
func Build(rules []TransitionRule, g Geometry) (*Operator, error) {
	return BuildWithConfig(rules, g, nil)
}

// BuildWithConfig is Build with an explicit zero tolerance.
func BuildWithConfig(rules []TransitionRule, g Geometry, config *Config) (*Operator, error) {
	builder, err := NewBuilder(g, config)
	if err != nil {
		return nil, err
	}

	if err := ValidateRules(rules, g); err != nil {
		return nil, err
	}

	for i, rule := range rules {
		if err := builder.Fold(i, rule); err != nil {
			return nil, err
		}
	}

	return builder.Operator(), nil
}

// Fold adds one rule's contributions to the accumulation.
func (b *Builder) Fold(position int, rule TransitionRule) error {
	if reason := rule.validate(b.geometry); reason != "" {
		return &RuleError{Position: position, Rule: rule, Reason: reason}
	}

	var (
		length     = b.geometry.TapeLength
		base       = b.geometry.Base
		headStride = b.indexer.headStride
		stride     = b.indexer.stateStride
		move       = int(rule.Move)
	)

	for i := 0; i < length; i++ {
		place := b.indexer.Power(i)
		above := b.indexer.Power(length - i - 1)
		source := i*headStride + rule.CurrentState*stride + rule.Read*place

		target := i + move
		offTape := target < 0 || target >= length
		if offTape {
			b.boundary++
		}
		dest := target*headStride + rule.NextState*stride + rule.Write*place

		// z enumerates the cells above i, k the cells below it.
		for z := 0; z < above; z++ {
			for k := 0; k < place; k++ {
				others := k + base*place*z
				col := source + others
				row := dest + others
				if offTape {
					row = col
				}
				b.cells[cell{row: row, col: col}] += rule.Amplitude
			}
		}
	}

	b.folded++
	return nil
}

// Operator freezes the accumulation. Cells that cancelled to zero are dropped.
func (b *Builder) Operator() *Operator {
	cells := make(map[cell]complex128, len(b.cells))
	for c, v := range b.cells {
		if cmplx.Abs(v) > b.zeroTolerance {
			cells[c] = v
		}
	}

	op := newOperator(b.geometry, b.indexer.Size(), cells)

	errnie.Info(
		"Build - rules %d, %v, nonzero %d, boundary self-loops %d",
		b.folded,
		b.geometry,
		op.NNZ(),
		b.boundary,
	)

	logger.Debug("operator built",
		"rules", b.folded,
		"dimension", op.Dim(),
		"nonzero", op.NNZ(),
		"dropped", len(b.cells)-len(cells),
	)

	return op
}

func (b *Builder) String() string {
	return fmt.Sprintf("builder{%v, rules: %d, cells: %d}", b.geometry, b.folded, len(b.cells))
}
