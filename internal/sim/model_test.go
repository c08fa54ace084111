package sim

import (
	"math"
	"testing"
)

func TestNextIntervalAlwaysPositive(t *testing.T) {
	for _, dist := range []Distribution{Exponential, Weibull, Normal} {
		m := NewFailureModel(dist, 2)
		for i := 0; i < 10000; i++ {
			v := m.NextInterval(1.0)
			if v < minIntervalHours {
				t.Fatalf("%s: interval %v below floor %v", dist, v, minIntervalHours)
			}
		}
	}
}

func TestNextIntervalZeroMTTF(t *testing.T) {
	m := NewFailureModel(Exponential, 2)
	if v := m.NextInterval(0); v < minIntervalHours {
		t.Fatalf("zero MTTF produced interval %v", v)
	}
	if v := m.NextInterval(-5); v < minIntervalHours {
		t.Fatalf("negative MTTF produced interval %v", v)
	}
}

func TestMedianScale(t *testing.T) {
	// shape=1 degenerates to mttf*ln2, shape=2 to mttf*sqrt(ln2).
	if got, want := MedianScale(10, 1), 10*math.Ln2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("MedianScale(10,1) = %v, want %v", got, want)
	}
	if got, want := MedianScale(10, 2), 10*math.Sqrt(math.Ln2); math.Abs(got-want) > 1e-9 {
		t.Fatalf("MedianScale(10,2) = %v, want %v", got, want)
	}
}

func TestSetScaleFunc(t *testing.T) {
	m := NewFailureModel(Weibull, 2)
	called := false
	m.SetScaleFunc(func(mttf, shape float64) float64 {
		called = true
		return mttf
	})
	m.NextInterval(1.0)
	if !called {
		t.Fatalf("custom scale func not used")
	}

	// nil must not clobber the current strategy
	m.SetScaleFunc(nil)
	if v := m.NextInterval(1.0); v < minIntervalHours {
		t.Fatalf("interval after nil SetScaleFunc: %v", v)
	}
}

func TestExponentialMeanRoughlyMTTF(t *testing.T) {
	m := NewFailureModel(Exponential, 2)
	const mttf = 2.0
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.NextInterval(mttf)
	}
	got := sum / n
	if got < mttf*0.9 || got > mttf*1.1 {
		t.Fatalf("exponential sample mean %v, want ~%v", got, mttf)
	}
}

func TestNormalSpreadAroundMTTF(t *testing.T) {
	m := NewFailureModel(Normal, 2)
	const mttf = 10.0
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.NextInterval(mttf)
	}
	got := sum / n
	if got < mttf*0.95 || got > mttf*1.05 {
		t.Fatalf("normal sample mean %v, want ~%v", got, mttf)
	}
}
