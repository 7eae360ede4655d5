package qtm

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

/*
RandomSource supplies uniform draws from [0,1). *rand.Rand from math/rand/v2
satisfies it; tests substitute seeded or scripted sources.
*/
type RandomSource interface {
	Float64() float64
}

// globalSource draws from the auto-seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64()
}

// NewSeededSource returns a deterministic source for reproducible measurements.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

/*
Sample draws one configuration with probability proportional to its squared
amplitude.

The probabilities are renormalised by their sum before the walk, so small
drift in a near-unitary evolution does not bias the draw. Should the walk
still run off the end (a source returning 1, or rounding in the cumulative
sum) the last configuration is returned. An empty superposition, or one whose
probabilities sum to zero, yields ErrDegenerateSuperposition.
*/
func (sp Superposition) Sample(src RandomSource) (Configuration, error) {
	if len(sp) == 0 {
		return Configuration{}, fmt.Errorf("%w: nothing to measure", ErrDegenerateSuperposition)
	}

	probs := sp.Probabilities()
	total := floats.Sum(probs)
	if total <= 0 {
		return Configuration{}, fmt.Errorf("%w: total probability %g", ErrDegenerateSuperposition, total)
	}

	cumulative := floats.CumSum(make([]float64, len(probs)), probs)
	r := src.Float64() * total

	for i, upper := range cumulative {
		if r < upper {
			return sp[i], nil
		}
	}

	// Fallback collapse
	return sp[len(sp)-1], nil
}
