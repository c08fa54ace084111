package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"kuberbomber/internal/cluster"
)

// scriptedProbe returns the scripted results in order, repeating the last.
type scriptedProbe struct {
	results []bool
	errs    []error
	calls   int
}

func (p *scriptedProbe) ProbeHealth(cluster.TargetRef) (bool, error) {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return p.results[i], err
}

func TestAwaitRecoverySuccess(t *testing.T) {
	probe := &scriptedProbe{results: []bool{false, false, true}}
	out := AwaitRecovery(context.Background(), cluster.TargetRef{Name: "pod-1"}, probe,
		time.Millisecond, time.Second)
	if !out.Recovered {
		t.Fatalf("expected recovery, got %+v", out)
	}
	if out.Duration <= 0 {
		t.Fatalf("expected positive duration, got %v", out.Duration)
	}
	if probe.calls < 3 {
		t.Fatalf("expected at least 3 probes, got %d", probe.calls)
	}
}

func TestAwaitRecoveryTimeoutDurationIsCapped(t *testing.T) {
	probe := &scriptedProbe{results: []bool{false}}
	timeout := 20 * time.Millisecond
	out := AwaitRecovery(context.Background(), cluster.TargetRef{Name: "pod-1"}, probe,
		time.Millisecond, timeout)
	if out.Recovered {
		t.Fatalf("expected timeout, got recovery")
	}
	if out.Duration != timeout.Seconds() {
		t.Fatalf("timeout duration = %v, want exactly %v", out.Duration, timeout.Seconds())
	}
}

func TestAwaitRecoveryProbeErrorsKeepPolling(t *testing.T) {
	probe := &scriptedProbe{
		results: []bool{false, false, true},
		errs:    []error{errors.New("probe flake"), nil, nil},
	}
	out := AwaitRecovery(context.Background(), cluster.TargetRef{Name: "node-1"}, probe,
		time.Millisecond, time.Second)
	if !out.Recovered {
		t.Fatalf("probe error must not abort monitoring: %+v", out)
	}
}

func TestAwaitRecoveryContextCancel(t *testing.T) {
	probe := &scriptedProbe{results: []bool{false}}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan RecoveryOutcome, 1)
	go func() {
		done <- AwaitRecovery(ctx, cluster.TargetRef{Name: "node-1"}, probe,
			time.Millisecond, time.Minute)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case out := <-done:
		if out.Recovered {
			t.Fatalf("cancelled monitor reported recovery")
		}
	case <-time.After(time.Second):
		t.Fatalf("monitor did not return after cancel")
	}
}
