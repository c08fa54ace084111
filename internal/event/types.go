// Reliability event structs with greptime tags
package event

import (
	"os"
	"time"
)

// Type identifies a lifecycle event in the simulation log.
type Type string

const (
	FailureInitiated  Type = "failure_initiated"
	FailureDetected   Type = "failure_detected"
	RecoveryStarted   Type = "recovery_started"
	RecoveryCompleted Type = "recovery_completed"
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
)

// FailureMode enumerates the kinds of disruption the scheduler can inject.
type FailureMode string

const (
	PodKill          FailureMode = "pod_kill"
	PodReboot        FailureMode = "pod_reboot"
	NodeReboot       FailureMode = "node_reboot"
	NodeKillAll      FailureMode = "node_kill_all"
	NodeKillCritical FailureMode = "node_kill_critical"
)

// AllModes lists every supported failure mode.
var AllModes = []FailureMode{PodKill, PodReboot, NodeReboot, NodeKillAll, NodeKillCritical}

// TargetKind tags what kind of object a failure was aimed at.
type TargetKind string

const (
	KindPod     TargetKind = "pod"
	KindNode    TargetKind = "node"
	KindProcess TargetKind = "process"
	KindCluster TargetKind = "cluster"
)

// Kind returns the target kind a failure mode operates on.
func (m FailureMode) Kind() TargetKind {
	switch m {
	case PodKill, PodReboot:
		return KindPod
	default:
		return KindNode
	}
}

// Destructive reports whether a mode is too disruptive for control-plane targets.
func (m FailureMode) Destructive() bool {
	switch m {
	case NodeReboot, NodeKillAll, NodeKillCritical:
		return true
	}
	return false
}

// Row represents one lifecycle event record for the event log.
type Row struct {
	Timestamp          time.Time   `json:"timestamp"`            // TIME INDEX
	SimulationHours    float64     `json:"simulation_time_hours"` // FIELD
	RealSeconds        float64     `json:"real_time_seconds"`     // FIELD
	EventType          Type        `json:"event_type"`            // TAG
	FailureMode        FailureMode `json:"failure_mode"`          // TAG
	Target             string      `json:"target"`                // FIELD
	TargetType         TargetKind  `json:"target_type"`           // TAG
	FailureID          string      `json:"failure_id"`            // FIELD
	StartTime          string      `json:"start_time"`
	EndTime            string      `json:"end_time"`
	DurationSeconds    float64     `json:"duration_seconds"`
	DurationHours      float64     `json:"duration_hours"`
	MTTFHours          float64     `json:"mttf_hours"`
	MTBFHours          float64     `json:"mtbf_hours"`
	MTTRSeconds        float64     `json:"mttr_seconds"`
	MTTRHours          float64     `json:"mttr_hours"`
	NextFailureInHours float64     `json:"next_failure_in_hours"`
	HealthBefore       float64     `json:"cluster_health_before"`
	HealthAfter        float64     `json:"cluster_health_after"`
	AdditionalInfo     string      `json:"additional_info"`
}

// EventTableName holds the table name used when writing to GreptimeDB.
// It defaults to "reliability_events" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var EventTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "reliability_events"
}()

func (Row) TableName() string {
	return EventTableName
}

// Failure tracks one injected failure from initiation through recovery.
// It is owned by the scheduler until handed to the event log, after which
// it is write-once history.
type Failure struct {
	ID                 string
	Mode               FailureMode
	Target             string
	TargetKind         TargetKind
	InitiatedAt        time.Time
	InitiatedSimHours  float64
	InjectionSucceeded bool
	RecoveryStartedAt  time.Time
	RecoveryFinishedAt time.Time
	RecoverySeconds    float64
	Recovered          bool
	HealthBefore       float64
}

// Metrics is a read-only snapshot of the aggregate reliability state.
type Metrics struct {
	TotalFailures        int       `json:"total_failures"`
	FailureIntervals     []float64 `json:"failure_intervals_hours"`
	RecoveryTimes        []float64 `json:"recovery_times_seconds"`
	TotalRecoverySeconds float64   `json:"total_recovery_seconds"`
	MTTFHours            float64   `json:"mttf_hours"`
	MTBFHours            float64   `json:"mtbf_hours"`
	MTTRSeconds          float64   `json:"mttr_seconds"`
	AvailabilityPercent  float64   `json:"availability_percent"`
	FailureRatePerHour   float64   `json:"failure_rate_per_hour"`
	ReliabilityAtHorizon float64   `json:"reliability_at_horizon"`
	HorizonHours         float64   `json:"horizon_hours"`
}
