package qtm

import (
	"fmt"
	"iter"
	"math/cmplx"
	"time"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// Phase is where a machine is in its lifecycle.
type Phase int

const (
	Uninitialized Phase = iota
	Ready
	Running
	Halted
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Outcome summarises one Execute call.
type Outcome struct {
	RunID   string
	Steps   int
	Halted  bool
	Phase   Phase
	Elapsed time.Duration
}

/*
Machine is a quantum Turing machine runtime.

It owns an amplitude vector over every configuration of its geometry and
evolves it by repeated application of a shared, read-only Operator. A
machine moves Uninitialized -> Ready (Initialize) -> Running (Step) ->
Halted (the run hit its step bound or every configuration reached the halt
state). Initialize may be called again at any point to start a fresh run.

A Machine is not safe for concurrent use. Separate machines may share one
Operator.
*/
type Machine struct {
	operator   *Operator
	indexer    *Indexer
	numStates  int
	startState int
	haltState  int
	tapeLength int

	config    *Config
	random    RandomSource
	observers []Observer
	logger    *log.Logger
	metrics   *Metrics
	stepper   *stepper

	vector  []complex128
	scratch []complex128
	phase   Phase
	steps   int
	runID   string
}

// Option configures a Machine.
type Option func(*Machine)

// WithHaltState overrides the default halt state of numStates-1.
func WithHaltState(state int) Option {
	return func(m *Machine) {
		m.haltState = state
	}
}

// WithRandom injects the source used by Measure and Collapse.
func WithRandom(src RandomSource) Option {
	return func(m *Machine) {
		if src != nil {
			m.random = src
		}
	}
}

// WithConfig sets tolerances and stepping parameters.
func WithConfig(config *Config) Option {
	return func(m *Machine) {
		if config != nil {
			m.config = config
		}
	}
}

// WithObserver registers an observer for every Execute call.
func WithObserver(observer Observer) Option {
	return func(m *Machine) {
		if observer != nil {
			m.observers = append(m.observers, observer)
		}
	}
}

// WithLogger replaces the package logger for this machine.
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

/*
NewMachine wraps an operator in a runtime. The operator's dimension must
match tapeLength * numStates * Base^tapeLength for the operator's alphabet.
*/
func NewMachine(op *Operator, numStates, startState, tapeLength int, opts ...Option) (*Machine, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operator", ErrInvalidGeometry)
	}

	m := &Machine{
		operator:   op,
		numStates:  numStates,
		startState: startState,
		haltState:  numStates - 1,
		tapeLength: tapeLength,
		config:     NewConfig(),
		random:     globalSource{},
		logger:     logger,
		metrics:    NewMetrics(),
	}

	for _, opt := range opts {
		opt(m)
	}

	g := m.Geometry()
	if err := g.Validate(); err != nil {
		return nil, err
	}

	indexer, err := NewIndexer(g)
	if err != nil {
		return nil, err
	}
	if indexer.Size() != op.Dim() {
		return nil, fmt.Errorf("%w: operator dimension %d, %v needs %d",
			ErrInvalidGeometry, op.Dim(), g, indexer.Size())
	}

	m.indexer = indexer
	m.stepper = newStepper(m.config)

	if !g.HaltingEnabled() {
		m.logger.Warn("halt state equals start state, halting detection disabled",
			"state", startState)
	}

	errnie.Info("NewMachine - %v", m)

	return m, nil
}

// Geometry describes the machine's configuration space.
func (m *Machine) Geometry() Geometry {
	return Geometry{
		TapeLength: m.tapeLength,
		NumStates:  m.numStates,
		Base:       m.operator.Geometry().Base,
		StartState: m.startState,
		HaltState:  m.haltState,
	}
}

// Phase returns the lifecycle phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Steps returns the number of steps applied since the last Initialize.
func (m *Machine) Steps() int {
	return m.steps
}

// RunID identifies the current run.
func (m *Machine) RunID() string {
	return m.runID
}

// Metrics exposes the machine's counters.
func (m *Machine) Metrics() *Metrics {
	return m.metrics
}

// Initialize starts a run with the head on cell 0.
func (m *Machine) Initialize(tape []int) error {
	return m.InitializeAt(tape, 0)
}

/*
InitializeAt starts a run: the vector becomes one-hot on the configuration
(head, startState, tape). Any previous run is discarded.
*/
func (m *Machine) InitializeAt(tape []int, head int) error {
	if len(tape) != m.tapeLength {
		return fmt.Errorf("%w: got %d cells, machine has %d", ErrTapeLengthMismatch, len(tape), m.tapeLength)
	}

	index, err := m.indexer.Encode(head, m.startState, tape)
	if err != nil {
		return err
	}

	n := m.indexer.Size()
	if len(m.vector) != n {
		m.vector = make([]complex128, n)
		m.scratch = make([]complex128, n)
	} else {
		clear(m.vector)
	}

	m.vector[index] = 1
	m.phase = Ready
	m.steps = 0
	m.runID = uuid.NewString()
	m.metrics.recordRun()

	m.logger.Debug("initialized", "run", m.runID, "head", head, "tape", tape, "index", index)

	return nil
}

/*
Step applies the operator once: V <- U*V. Only stored operator entries are
visited.
*/
func (m *Machine) Step() error {
	switch m.phase {
	case Uninitialized:
		return ErrNotInitialized
	case Halted:
		return fmt.Errorf("%w after %d steps, initialize a new run", ErrHalted, m.steps)
	}

	start := time.Now()

	if err := m.stepper.apply(m.operator, m.scratch, m.vector); err != nil {
		return fmt.Errorf("step %d: %w", m.steps+1, err)
	}
	m.vector, m.scratch = m.scratch, m.vector

	m.steps++
	m.phase = Running

	total := m.totalProbability()
	m.metrics.recordStep(start, total)

	m.logger.Debug("step",
		"run", m.runID,
		"step", m.steps,
		"probability", total,
		"elapsed", time.Since(start),
	)

	return nil
}

/*
Halting reports whether every configuration in the superposition is in the
halt state. It is always false when the start and halt states coincide, and
false for an empty superposition.
*/
func (m *Machine) Halting() bool {
	if m.startState == m.haltState || m.phase == Uninitialized {
		return false
	}

	found := false
	for i, v := range m.vector {
		if m.isZero(v) {
			continue
		}
		if m.indexer.StateOf(i) != m.haltState {
			return false
		}
		found = true
	}

	return found
}

/*
Execute runs the machine on a tape: initialize with the head at headStart,
then step until the superposition is halting or maxSteps steps were taken.
The observer, and any registered with WithObserver, is told about every
step. The final state is read with Superposition or Measure.
*/
func (m *Machine) Execute(tape []int, headStart, maxSteps int, onStep Observer) (Outcome, error) {
	started := time.Now()

	if err := m.InitializeAt(tape, headStart); err != nil {
		return Outcome{}, err
	}

	observers := m.observers
	if onStep != nil {
		observers = append(observers[:len(observers):len(observers)], onStep)
	}

	halted := m.Halting()
	for !halted && m.steps < maxSteps {
		if err := m.Step(); err != nil {
			return Outcome{RunID: m.runID, Steps: m.steps, Phase: m.phase}, err
		}

		halted = m.Halting()

		if len(observers) > 0 {
			snapshot := m.snapshot(halted)
			for _, observer := range observers {
				observer.OnStep(snapshot)
			}
		}
	}

	m.phase = Halted
	if halted {
		m.metrics.recordHalt()
	}

	outcome := Outcome{
		RunID:   m.runID,
		Steps:   m.steps,
		Halted:  halted,
		Phase:   m.phase,
		Elapsed: time.Since(started),
	}

	m.logger.Info("execution finished",
		"run", outcome.RunID,
		"steps", outcome.Steps,
		"halted", outcome.Halted,
		"elapsed", outcome.Elapsed,
	)

	if m.logger.GetLevel() <= log.DebugLevel {
		m.logger.Debug("final superposition", "run", m.runID, "dump", m.Dump())
	}

	return outcome, nil
}

/*
Run is the pull-style counterpart of Execute. Each iteration of the returned
sequence starts a fresh run, yields the initial snapshot (step 0) and then
one snapshot per step until halting or maxSteps. Breaking out of the loop
leaves the machine at the last yielded step.
*/
func (m *Machine) Run(tape []int, headStart, maxSteps int) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		if err := m.InitializeAt(tape, headStart); err != nil {
			yield(Snapshot{}, err)
			return
		}

		halted := m.Halting()
		if !yield(m.snapshot(halted), nil) {
			return
		}

		for !halted && m.steps < maxSteps {
			if err := m.Step(); err != nil {
				yield(Snapshot{RunID: m.runID, Step: m.steps}, err)
				return
			}

			halted = m.Halting()
			if !yield(m.snapshot(halted), nil) {
				return
			}
		}

		m.phase = Halted
	}
}

// Superposition decodes every configuration with nonzero amplitude.
func (m *Machine) Superposition() Superposition {
	sp := Superposition{}

	for i, v := range m.vector {
		if m.isZero(v) {
			continue
		}

		head, state, tape, err := m.indexer.Decode(i)
		if err != nil {
			// The vector is sized by the indexer, so every position decodes.
			panic(err)
		}
		sp = append(sp, newConfiguration(head, state, tape, v))
	}

	return sp
}

/*
Measure draws one configuration from the current superposition, weighted by
probability. The vector is left untouched; see Collapse.
*/
func (m *Machine) Measure() (Configuration, error) {
	c, err := m.Superposition().Sample(m.random)
	if err != nil {
		return Configuration{}, err
	}

	m.metrics.recordMeasurement()
	return c, nil
}

// Collapse measures and then projects the vector onto the outcome.
func (m *Machine) Collapse() (Configuration, error) {
	c, err := m.Measure()
	if err != nil {
		return Configuration{}, err
	}

	index, err := m.indexer.Encode(c.Head, c.State, c.Tape)
	if err != nil {
		return Configuration{}, err
	}

	clear(m.vector)
	m.vector[index] = 1

	c.Amplitude = 1
	c.Probability = 1

	m.logger.Debug("collapsed", "run", m.runID, "configuration", c.String())

	return c, nil
}

// Dump renders the current superposition in full for debugging.
func (m *Machine) Dump() string {
	return spew.Sdump(m.Superposition())
}

func (m *Machine) snapshot(halting bool) Snapshot {
	return Snapshot{
		RunID:         m.runID,
		Step:          m.steps,
		Halting:       halting,
		Superposition: m.Superposition(),
	}
}

func (m *Machine) totalProbability() float64 {
	var total float64
	for _, v := range m.vector {
		total += real(v)*real(v) + imag(v)*imag(v)
	}
	return total
}

func (m *Machine) isZero(v complex128) bool {
	return v == 0 || cmplx.Abs(v) <= m.config.ZeroTolerance
}

func (m *Machine) String() string {
	return fmt.Sprintf("QTM{states: %d, start: %d, halt: %d, tape: %d, dimension: %d, nonzero: %d}",
		m.numStates, m.startState, m.haltState, m.tapeLength, m.operator.Dim(), m.operator.NNZ())
}
