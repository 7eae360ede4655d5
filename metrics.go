package qtm

import (
	"math"
	"sort"
	"sync"
	"time"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

/*
Metrics tracks what a machine has done across its executions: how many
steps it took and how long they lasted, how far the total probability has
wandered from 1, and how often it was measured. A unitary machine keeps
MaxProbabilityDrift near zero; growth there points at the operator, not the
runtime.
*/
type Metrics struct {
	mu                   sync.RWMutex
	Runs                 int64
	StepCount            int64
	Measurements         int64
	TotalStepTime        time.Duration
	AverageStepLatency   time.Duration
	P95StepLatency       time.Duration
	P99StepLatency       time.Duration
	LastTotalProbability float64
	MaxProbabilityDrift  float64
	HaltedRuns           int64

	latencyWindows []timeWindow
	windowSize     int
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000), // Store last 1000 steps
		windowSize:     1000,
	}
}

func (m *Metrics) recordRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
	m.LastTotalProbability = 1
}

func (m *Metrics) recordHalt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HaltedRuns++
}

func (m *Metrics) recordMeasurement() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Measurements++
}

func (m *Metrics) recordStep(startTime time.Time, totalProbability float64) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalStepTime += duration
	m.StepCount++
	m.LastTotalProbability = totalProbability
	m.MaxProbabilityDrift = math.Max(m.MaxProbabilityDrift, math.Abs(totalProbability-1))

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageStepLatency = (m.AverageStepLatency*time.Duration(m.StepCount-1) + duration) / time.Duration(m.StepCount)

	m.latencyWindows = append(m.latencyWindows, timeWindow{
		duration: duration,
		count:    1,
	})

	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.P95StepLatency = sorted[p95Index]
		m.P99StepLatency = sorted[p99Index]
	}
}

// ExportMetrics returns a flat snapshot suitable for logging.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs":              m.Runs,
		"halted_runs":       m.HaltedRuns,
		"steps":             m.StepCount,
		"measurements":      m.Measurements,
		"avg_step_us":       m.AverageStepLatency.Microseconds(),
		"p95_step_us":       m.P95StepLatency.Microseconds(),
		"p99_step_us":       m.P99StepLatency.Microseconds(),
		"total_probability": m.LastTotalProbability,
		"max_drift":         m.MaxProbabilityDrift,
	}
}
