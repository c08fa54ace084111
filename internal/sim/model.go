package sim

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Distribution selects the statistical model for failure arrival intervals.
type Distribution string

const (
	// Exponential models memoryless failure arrival, the standard
	// assumption absent evidence of wear.
	Exponential Distribution = "exponential"
	// Weibull with shape > 1 models an increasing failure rate as the
	// system wears within the run.
	Weibull Distribution = "weibull"
	// Normal gives an artificially predictable cadence for demo runs.
	Normal Distribution = "normal"
)

// minIntervalHours floors every draw so an interval is never zero or negative.
const minIntervalHours = 1e-4

// ScaleFunc derives the Weibull scale parameter from the current MTTF and
// shape. Replaceable policy rather than hard-coded arithmetic.
type ScaleFunc func(mttfHours, shape float64) float64

// MedianScale picks the scale so the distribution's median equals the MTTF.
func MedianScale(mttfHours, shape float64) float64 {
	return mttfHours * math.Pow(math.Ln2, 1/shape)
}

// FailureModel draws the next failure interval from the configured
// distribution, parameterized by the caller's current MTTF estimate.
type FailureModel struct {
	dist  Distribution
	shape float64
	scale ScaleFunc

	mu   sync.Mutex
	rand *rand.Rand
}

// NewFailureModel builds a model with the given distribution and Weibull shape.
func NewFailureModel(dist Distribution, shape float64) *FailureModel {
	if shape <= 0 {
		shape = 2
	}
	return &FailureModel{
		dist:  dist,
		shape: shape,
		scale: MedianScale,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetScaleFunc replaces the Weibull scale derivation strategy.
func (m *FailureModel) SetScaleFunc(fn ScaleFunc) {
	if fn != nil {
		m.scale = fn
	}
}

// NextInterval draws the next failure interval in simulated hours.
// The result is always positive.
func (m *FailureModel) NextInterval(mttfHours float64) float64 {
	if mttfHours <= 0 {
		mttfHours = minIntervalHours
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var v float64
	switch m.dist {
	case Weibull:
		// Inverse CDF: scale * (-ln(1-u))^(1/shape)
		u := m.rand.Float64()
		v = m.scale(mttfHours, m.shape) * math.Pow(-math.Log(1-u), 1/m.shape)
	case Normal:
		v = mttfHours + m.rand.NormFloat64()*0.2*mttfHours
	case Exponential:
		v = m.rand.ExpFloat64() * mttfHours
	default:
		v = mttfHours
	}

	if v < minIntervalHours {
		v = minIntervalHours
	}
	return v
}
