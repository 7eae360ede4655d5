package qtm

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

/*
Configuration is a decoded view of one nonzero entry of the amplitude
vector: where the head is, which control state the machine is in, what the
tape holds, and the complex amplitude attached to that assignment.

Configurations are produced on demand from the vector and are never the
primary state of a machine.
*/
type Configuration struct {
	Head        int
	State       int
	Tape        []int
	Amplitude   complex128
	Probability float64
}

func newConfiguration(head, state int, tape []int, amplitude complex128) Configuration {
	return Configuration{
		Head:        head,
		State:       state,
		Tape:        tape,
		Amplitude:   amplitude,
		Probability: real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude),
	}
}

// TapeString renders the tape with the head cell bracketed and blanks as '#'.
func (c Configuration) TapeString() string {
	cells := make([]string, len(c.Tape))
	for i, symbol := range c.Tape {
		s := strconv.Itoa(symbol)
		if symbol == Blank {
			s = "#"
		}
		if i == c.Head {
			s = "[" + s + "]"
		}
		cells[i] = s
	}
	return strings.Join(cells, " ")
}

func (c Configuration) String() string {
	return fmt.Sprintf("q%d : %s -> %.4f", c.State, c.TapeString(), c.Probability)
}

// Superposition is every configuration with nonzero amplitude at one step.
type Superposition []Configuration

// Probabilities lists the probability of each configuration in order.
func (sp Superposition) Probabilities() []float64 {
	probs := make([]float64, len(sp))
	for i, c := range sp {
		probs[i] = c.Probability
	}
	return probs
}

// TotalProbability should stay close to 1 for a unitary machine.
func (sp Superposition) TotalProbability() float64 {
	if len(sp) == 0 {
		return 0
	}
	return floats.Sum(sp.Probabilities())
}

// Classical reports whether the machine is in exactly one configuration.
func (sp Superposition) Classical() bool {
	return len(sp) == 1
}

func (sp Superposition) String() string {
	if len(sp) == 0 {
		return "{}"
	}

	lines := make([]string, len(sp))
	for i, c := range sp {
		lines[i] = c.String()
	}
	return "{ " + strings.Join(lines, ", ") + " }"
}
