package qtm

import (
	"fmt"
	"sort"
)

// Entry is one nonzero cell of an Operator.
type Entry struct {
	Row   int
	Col   int
	Value complex128
}

/*
Operator is the sparse transfer matrix of a machine.

Entries are stored row-major (compressed sparse rows) with columns sorted
inside each row; cells that are not stored are zero. An Operator is never
modified after the Builder produces it, so one Operator can drive any number
of machines at once.
*/
type Operator struct {
	geometry Geometry
	dim      int
	rowPtr   []int
	cols     []int
	vals     []complex128
}

// newOperator freezes accumulated cells into row-major storage.
func newOperator(g Geometry, dim int, cells map[cell]complex128) *Operator {
	keys := make([]cell, 0, len(cells))
	for c := range cells {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})

	op := &Operator{
		geometry: g,
		dim:      dim,
		rowPtr:   make([]int, dim+1),
		cols:     make([]int, len(keys)),
		vals:     make([]complex128, len(keys)),
	}

	for i, c := range keys {
		op.rowPtr[c.row+1]++
		op.cols[i] = c.col
		op.vals[i] = cells[c]
	}
	for r := 0; r < dim; r++ {
		op.rowPtr[r+1] += op.rowPtr[r]
	}

	return op
}

// Dim is the side length of the square matrix.
func (op *Operator) Dim() int {
	return op.dim
}

// NNZ is the number of stored entries.
func (op *Operator) NNZ() int {
	return len(op.vals)
}

// Geometry returns the geometry the operator was built for.
func (op *Operator) Geometry() Geometry {
	return op.geometry
}

// At returns the cell value, zero when the cell is not stored.
func (op *Operator) At(row, col int) complex128 {
	if row < 0 || row >= op.dim {
		return 0
	}

	lo, hi := op.rowPtr[row], op.rowPtr[row+1]
	k := lo + sort.SearchInts(op.cols[lo:hi], col)
	if k < hi && op.cols[k] == col {
		return op.vals[k]
	}
	return 0
}

// Each visits stored entries in row-major order.
func (op *Operator) Each(fn func(Entry)) {
	for r := 0; r < op.dim; r++ {
		for k := op.rowPtr[r]; k < op.rowPtr[r+1]; k++ {
			fn(Entry{Row: r, Col: op.cols[k], Value: op.vals[k]})
		}
	}
}

// Row returns a copy of the stored entries of one row.
func (op *Operator) Row(row int) []Entry {
	if row < 0 || row >= op.dim {
		return nil
	}

	entries := make([]Entry, 0, op.rowPtr[row+1]-op.rowPtr[row])
	for k := op.rowPtr[row]; k < op.rowPtr[row+1]; k++ {
		entries = append(entries, Entry{Row: row, Col: op.cols[k], Value: op.vals[k]})
	}
	return entries
}

// applyRows writes rows [lo,hi) of op*src into dst.
func (op *Operator) applyRows(dst, src []complex128, lo, hi int) {
	for r := lo; r < hi; r++ {
		var sum complex128
		for k := op.rowPtr[r]; k < op.rowPtr[r+1]; k++ {
			if v := src[op.cols[k]]; v != 0 {
				sum += op.vals[k] * v
			}
		}
		dst[r] = sum
	}
}

func (op *Operator) String() string {
	return fmt.Sprintf("operator{dimension: %d, nonzero: %d}", op.dim, len(op.vals))
}
