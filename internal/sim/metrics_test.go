package sim

import (
	"math"
	"sync"
	"testing"
)

func TestCurrentMTTFUsesBaseUntilTwoIntervals(t *testing.T) {
	e := NewMetricsEngine(5.0, 1000)
	if got := e.CurrentMTTF(); got != 5.0 {
		t.Fatalf("empty engine MTTF = %v, want base 5.0", got)
	}

	// First failure: no predecessor, no interval.
	e.Update(10, 100)
	if got := e.CurrentMTTF(); got != 5.0 {
		t.Fatalf("after 1 failure MTTF = %v, want base 5.0", got)
	}

	// Second failure yields one interval, still below the threshold.
	e.Update(10, 102)
	if got := e.CurrentMTTF(); got != 5.0 {
		t.Fatalf("after 1 interval MTTF = %v, want base 5.0", got)
	}

	// Third failure yields a second interval; adaptive MTTF takes over.
	e.Update(10, 106)
	if got, want := e.CurrentMTTF(), 3.0; got != want {
		t.Fatalf("adaptive MTTF = %v, want %v", got, want)
	}
}

func TestCurrentMTTFWindowsLastTen(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	sim := 0.0
	e.Update(0, sim)
	// 5 old intervals of 100h, then 10 recent intervals of 2h.
	for i := 0; i < 5; i++ {
		sim += 100
		e.Update(0, sim)
	}
	for i := 0; i < 10; i++ {
		sim += 2
		e.Update(0, sim)
	}
	if got := e.CurrentMTTF(); got != 2.0 {
		t.Fatalf("windowed MTTF = %v, want 2.0 (old intervals must age out)", got)
	}
}

func TestSnapshotZeroFailures(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	m := e.Snapshot(50)
	if m.TotalFailures != 0 || m.MTTFHours != 0 || m.MTBFHours != 0 ||
		m.MTTRSeconds != 0 || m.AvailabilityPercent != 0 || m.FailureRatePerHour != 0 ||
		m.ReliabilityAtHorizon != 0 {
		t.Fatalf("zero-failure snapshot has nonzero derived metrics: %+v", m)
	}
}

func TestSnapshotDerivedMetrics(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	e.Update(3600, 10) // 1h downtime
	e.Update(3600, 30) // 1h downtime, interval 20h
	m := e.Snapshot(40)

	if m.TotalFailures != 2 {
		t.Fatalf("TotalFailures = %d, want 2", m.TotalFailures)
	}
	if m.MTTFHours != 20 {
		t.Fatalf("MTTFHours = %v, want 20", m.MTTFHours)
	}
	if m.MTBFHours != 20 {
		t.Fatalf("MTBFHours = %v, want 40/2 = 20", m.MTBFHours)
	}
	if m.MTTRSeconds != 3600 {
		t.Fatalf("MTTRSeconds = %v, want 3600", m.MTTRSeconds)
	}
	if m.FailureRatePerHour != 0.05 {
		t.Fatalf("FailureRatePerHour = %v, want 0.05", m.FailureRatePerHour)
	}
	// 2h downtime over 40 simulated hours.
	if want := (40.0 - 2.0) / 40.0 * 100; math.Abs(m.AvailabilityPercent-want) > 1e-9 {
		t.Fatalf("AvailabilityPercent = %v, want %v", m.AvailabilityPercent, want)
	}
	if want := math.Exp(-1000.0 / 20.0); math.Abs(m.ReliabilityAtHorizon-want) > 1e-12 {
		t.Fatalf("ReliabilityAtHorizon = %v, want %v", m.ReliabilityAtHorizon, want)
	}
}

func TestAvailabilityClampedAtZero(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	// Downtime exceeding simulated time must not report negative availability.
	e.Update(100*3600, 1)
	m := e.Snapshot(1)
	if m.AvailabilityPercent != 0 {
		t.Fatalf("AvailabilityPercent = %v, want 0", m.AvailabilityPercent)
	}
}

func TestTimeoutRecoveriesCountInMTTR(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	e.Update(10, 1)
	e.Update(300, 2) // capped timeout value
	m := e.Snapshot(2)
	if m.MTTRSeconds != 155 {
		t.Fatalf("MTTRSeconds = %v, want 155", m.MTTRSeconds)
	}
	if m.TotalRecoverySeconds != 310 {
		t.Fatalf("TotalRecoverySeconds = %v, want 310", m.TotalRecoverySeconds)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Update(float64(i), float64(i))
		}(i)
	}
	wg.Wait()
	if got := e.TotalFailures(); got != 50 {
		t.Fatalf("TotalFailures = %d, want 50", got)
	}
	m := e.Snapshot(1000)
	if len(m.RecoveryTimes) != 50 {
		t.Fatalf("RecoveryTimes length = %d, want 50", len(m.RecoveryTimes))
	}
	if len(m.FailureIntervals) != 49 {
		t.Fatalf("FailureIntervals length = %d, want 49", len(m.FailureIntervals))
	}
}

func TestSnapshotCopiesSlices(t *testing.T) {
	e := NewMetricsEngine(1.0, 1000)
	e.Update(10, 1)
	m := e.Snapshot(1)
	m.RecoveryTimes[0] = -1
	if got := e.Snapshot(1).RecoveryTimes[0]; got != 10 {
		t.Fatalf("snapshot aliases internal state: %v", got)
	}
}
