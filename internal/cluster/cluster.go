// Capabilities the simulation engine consumes from an embedding cluster.
package cluster

import "kuberbomber/internal/event"

// TargetRef identifies one candidate target for failure injection.
type TargetRef struct {
	Name         string
	Kind         event.TargetKind
	ControlPlane bool
}

// TargetLister enumerates candidate targets for a failure mode.
type TargetLister interface {
	ListTargets(mode event.FailureMode) []TargetRef
}

// FailureInjector attempts the actual disruptive action. It returns an
// error only for unexpected conditions; an expected failure-to-inject is
// reported as success=false.
type FailureInjector interface {
	ApplyFailure(target TargetRef, mode event.FailureMode) (bool, error)
}

// HealthProber is a cheap idempotent health check for one target.
type HealthProber interface {
	ProbeHealth(target TargetRef) (bool, error)
}

// HealthScorer reports an overall cluster health score in [0,100].
// Used only for snapshotting event context, never for control decisions.
type HealthScorer interface {
	HealthScore() float64
}

// Interface bundles everything the scheduler needs from a cluster.
type Interface interface {
	TargetLister
	FailureInjector
	HealthProber
	HealthScorer
}
