package sim

import (
	"math"
	"sync"

	"kuberbomber/internal/event"
)

// mttfWindow is how many recent failure intervals feed the adaptive MTTF.
const mttfWindow = 10

// MetricsEngine maintains the running reliability history and derives
// MTTF, MTBF, MTTR, availability, failure rate, and reliability at a
// fixed horizon. Updates are atomic per completed failure; concurrent
// recovery monitors may call Update without coordinating.
type MetricsEngine struct {
	mu sync.Mutex

	baseMTTFHours float64
	horizonHours  float64

	intervalsHours       []float64
	recoverySeconds      []float64
	totalRecoverySeconds float64
	totalFailures        int

	lastFailureSimHours float64
	haveLastFailure     bool
}

// NewMetricsEngine creates an engine seeded with the configured base MTTF
// prior and reporting horizon.
func NewMetricsEngine(baseMTTFHours, horizonHours float64) *MetricsEngine {
	if horizonHours <= 0 {
		horizonHours = 1000
	}
	return &MetricsEngine{baseMTTFHours: baseMTTFHours, horizonHours: horizonHours}
}

// Update records one completed failure. The recovery duration is appended
// unconditionally, capped values for timed-out recoveries included, so
// persistent unrecoverable failures stay visible in MTTR and availability.
func (e *MetricsEngine) Update(recoverySeconds, simHours float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.totalFailures++
	e.recoverySeconds = append(e.recoverySeconds, recoverySeconds)
	e.totalRecoverySeconds += recoverySeconds

	// The first failure has no predecessor, so no interval to record.
	if e.haveLastFailure {
		e.intervalsHours = append(e.intervalsHours, simHours-e.lastFailureSimHours)
	}
	e.lastFailureSimHours = simHours
	e.haveLastFailure = true
}

// CurrentMTTF returns the mean of the last few observed intervals, or the
// configured base MTTF while fewer than 2 observations exist. This is the
// adaptive prior the failure model draws from.
func (e *MetricsEngine) CurrentMTTF() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentMTTFLocked()
}

func (e *MetricsEngine) currentMTTFLocked() float64 {
	if len(e.intervalsHours) < 2 {
		return e.baseMTTFHours
	}
	return mean(tail(e.intervalsHours, mttfWindow))
}

// Snapshot derives all reported metrics at the given simulated time.
// Every derived field is zero when no failures have completed.
func (e *MetricsEngine) Snapshot(simHours float64) event.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := event.Metrics{
		TotalFailures:        e.totalFailures,
		FailureIntervals:     append([]float64(nil), e.intervalsHours...),
		RecoveryTimes:        append([]float64(nil), e.recoverySeconds...),
		TotalRecoverySeconds: e.totalRecoverySeconds,
		HorizonHours:         e.horizonHours,
	}
	if e.totalFailures == 0 {
		return m
	}

	if len(e.intervalsHours) > 0 {
		m.MTTFHours = mean(tail(e.intervalsHours, mttfWindow))
	}
	if simHours > 0 {
		m.MTBFHours = simHours / float64(e.totalFailures)
		m.FailureRatePerHour = float64(e.totalFailures) / simHours

		downtimeHours := e.totalRecoverySeconds / 3600
		m.AvailabilityPercent = math.Max(0, (simHours-downtimeHours)/simHours*100)
	}
	if len(e.recoverySeconds) > 0 {
		m.MTTRSeconds = mean(e.recoverySeconds)
	}
	if m.MTTFHours > 0 {
		m.ReliabilityAtHorizon = math.Exp(-(1 / m.MTTFHours) * e.horizonHours)
	}
	return m
}

// TotalFailures returns the completed-failure count.
func (e *MetricsEngine) TotalFailures() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFailures
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func tail(vals []float64, n int) []float64 {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}
