package sim

import (
	"context"
	"time"

	"kuberbomber/internal/cluster"
)

// RecoveryOutcome reports how a monitored recovery ended.
type RecoveryOutcome struct {
	Recovered bool
	Duration  float64 // seconds; equals the timeout when Recovered is false
}

// AwaitRecovery polls the health probe at pollInterval until the target is
// healthy or timeout elapses. Probe errors count as "still unhealthy" and
// polling continues. On timeout the outcome carries the capped duration so
// unrecoverable failures still feed MTTR statistics.
//
// The context is an embedder-supplied drain bound, not the scheduler's stop
// signal: monitors for already-injected failures outlive stop() so their
// measurements are not lost. A cancelled context returns the elapsed time.
func AwaitRecovery(ctx context.Context, target cluster.TargetRef, probe cluster.HealthProber, pollInterval, timeout time.Duration) RecoveryOutcome {
	start := time.Now()
	deadline := start.Add(timeout)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return RecoveryOutcome{Recovered: false, Duration: time.Since(start).Seconds()}
		case now := <-ticker.C:
			if !now.Before(deadline) {
				return RecoveryOutcome{Recovered: false, Duration: timeout.Seconds()}
			}
			healthy, err := probe.ProbeHealth(target)
			if err != nil {
				continue
			}
			if healthy {
				return RecoveryOutcome{Recovered: true, Duration: time.Since(start).Seconds()}
			}
		}
	}
}
