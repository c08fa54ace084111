package sim

import "time"

// Clock tracks wall time since simulation start and scales it by the
// acceleration factor. Immutable once a run starts.
type Clock struct {
	start        time.Time
	acceleration float64
	now          func() time.Time
}

// NewClock starts a clock at the current wall time.
func NewClock(acceleration float64) *Clock {
	return newClockAt(acceleration, time.Now)
}

func newClockAt(acceleration float64, now func() time.Time) *Clock {
	return &Clock{start: now(), acceleration: acceleration, now: now}
}

// RealSeconds returns wall-clock seconds elapsed since the run started.
func (c *Clock) RealSeconds() float64 {
	return c.now().Sub(c.start).Seconds()
}

// SimulatedHours returns elapsed simulated hours under the acceleration factor.
func (c *Clock) SimulatedHours() float64 {
	return c.RealSeconds() / 3600 * c.acceleration
}

// Acceleration returns simulated hours per real hour.
func (c *Clock) Acceleration() float64 {
	return c.acceleration
}
