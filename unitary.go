package qtm

import (
	"fmt"
	"math/cmplx"

	"github.com/theapemachine/errnie"
	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTolerance bounds each entry of U†U against the identity.
const DefaultTolerance = 1e-9

/*
UnitarityReport is the outcome of the diagnostic pass over an Operator.

Identity holds when U†U equals the identity on the sub-block of
configurations whose head is not on the last tape cell: a finite tape cannot
honour moves off its end, so that block is excluded (with a single-cell tape
the whole space is checked). RowsBounded holds when no row carries more than
unit squared magnitude.
*/
type UnitarityReport struct {
	Identity     bool
	RowsBounded  bool
	Block        int
	MaxDeviation float64
	Offending    *Entry
	HeavyRow     int
	HeavyRowMass float64
}

// Unitary is the combined verdict.
func (r UnitarityReport) Unitary() bool {
	return r.Identity && r.RowsBounded
}

func (r UnitarityReport) String() string {
	s := fmt.Sprintf("unitary: %t (identity: %t, rows bounded: %t, block: %d, max deviation: %.3g)",
		r.Unitary(), r.Identity, r.RowsBounded, r.Block, r.MaxDeviation)
	if r.Offending != nil {
		s += fmt.Sprintf(", worst U†U[%d,%d] = %v", r.Offending.Row, r.Offending.Col, r.Offending.Value)
	}
	if !r.RowsBounded {
		s += fmt.Sprintf(", row %d mass %.6g", r.HeavyRow, r.HeavyRowMass)
	}
	return s
}

// IsUnitary reports whether the operator passes both checks at DefaultTolerance.
func IsUnitary(op *Operator, g Geometry) bool {
	return CheckUnitarity(op, g, DefaultTolerance).Unitary()
}

/*
CheckUnitarity runs the identity and row-mass checks. It never fails: a
geometry that does not match the operator simply yields a negative report.
*/
func CheckUnitarity(op *Operator, g Geometry, tolerance float64) UnitarityReport {
	report := UnitarityReport{HeavyRow: -1}

	dim, err := g.Dimension()
	if err != nil || op == nil || dim != op.Dim() {
		errnie.Info("CheckUnitarity - geometry %v does not describe %v", g, op)
		return report
	}

	report.Block = dim
	if g.TapeLength > 1 {
		report.Block = (g.TapeLength - 1) * (dim / g.TapeLength)
	}

	report.Identity, report.MaxDeviation, report.Offending = checkIdentity(op, report.Block, tolerance)
	report.HeavyRow, report.HeavyRowMass = heaviestRow(op)
	report.RowsBounded = report.HeavyRowMass <= 1+tolerance

	errnie.Info("CheckUnitarity - %v", report)

	return report
}

// CheckRowAmplitudes reports whether every row's squared magnitudes sum to at most 1.
func CheckRowAmplitudes(op *Operator, tolerance float64) bool {
	_, mass := heaviestRow(op)
	return mass <= 1+tolerance
}

// checkIdentity accumulates U†U restricted to [0,block)^2 one row of U at a time.
func checkIdentity(op *Operator, block int, tolerance float64) (bool, float64, *Entry) {
	gram := make(map[cell]complex128)

	for r := 0; r < op.dim; r++ {
		lo, hi := op.rowPtr[r], op.rowPtr[r+1]
		for a := lo; a < hi; a++ {
			j := op.cols[a]
			if j >= block {
				break
			}
			left := cmplx.Conj(op.vals[a])
			for b := lo; b < hi; b++ {
				k := op.cols[b]
				if k >= block {
					break
				}
				gram[cell{row: j, col: k}] += left * op.vals[b]
			}
		}
	}

	var (
		worst     float64
		offending *Entry
	)

	note := func(row, col int, got complex128) {
		want := complex(0, 0)
		if row == col {
			want = 1
		}
		if deviation := cmplx.Abs(got - want); deviation > worst {
			worst = deviation
			offending = &Entry{Row: row, Col: col, Value: got}
		}
	}

	for c, v := range gram {
		note(c.row, c.col, v)
	}
	for j := 0; j < block; j++ {
		if _, ok := gram[cell{row: j, col: j}]; !ok {
			note(j, j, 0)
		}
	}

	return scalar.EqualWithinAbs(worst, 0, tolerance), worst, offending
}

func heaviestRow(op *Operator) (int, float64) {
	row, heaviest := -1, 0.0
	for r := 0; r < op.dim; r++ {
		var mass float64
		for k := op.rowPtr[r]; k < op.rowPtr[r+1]; k++ {
			v := op.vals[k]
			mass += real(v)*real(v) + imag(v)*imag(v)
		}
		if mass > heaviest {
			row, heaviest = r, mass
		}
	}
	return row, heaviest
}
