// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kuberbomber/internal/event"
)

// ClusterConfig describes the simulated cluster inventory.
type ClusterConfig struct {
	Nodes                  int     `yaml:"nodes"`
	ControlPlaneNodes      int     `yaml:"control_plane_nodes"`
	PodsPerNode            int     `yaml:"pods_per_node"`
	PodRecoveryMinSeconds  float64 `yaml:"pod_recovery_min_seconds"`
	PodRecoveryMaxSeconds  float64 `yaml:"pod_recovery_max_seconds"`
	NodeRecoveryMinSeconds float64 `yaml:"node_recovery_min_seconds"`
	NodeRecoveryMaxSeconds float64 `yaml:"node_recovery_max_seconds"`
	InjectionFailureRate   float64 `yaml:"injection_failure_rate"`
}

// SimulationConfig is the root configuration for a reliability run.
type SimulationConfig struct {
	ClusterID                  string              `yaml:"cluster_id"`
	Acceleration               float64             `yaml:"acceleration"`
	BaseMTTFHours              float64             `yaml:"base_mttf_hours"`
	Distribution               string              `yaml:"distribution"`
	WeibullShape               float64             `yaml:"weibull_shape"`
	HorizonHours               float64             `yaml:"horizon_hours"`
	FailureModes               []event.FailureMode `yaml:"failure_modes"`
	PollIntervalSeconds        float64             `yaml:"poll_interval_seconds"`
	PodRecoveryTimeoutSeconds  float64             `yaml:"pod_recovery_timeout_seconds"`
	NodeRecoveryTimeoutSeconds float64             `yaml:"node_recovery_timeout_seconds"`
	DurationHours              float64             `yaml:"duration_hours"`
	Cluster                    ClusterConfig       `yaml:"cluster"`
}

// Distributions recognized by the failure model.
const (
	DistExponential = "exponential"
	DistWeibull     = "weibull"
	DistNormal      = "normal"
)

// Load loads YAML config, validates it against a CUE schema, and applies
// semantic checks plus defaults.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero-valued optional fields.
func (c *SimulationConfig) ApplyDefaults() {
	if c.ClusterID == "" {
		c.ClusterID = "cluster-01"
	}
	if c.Acceleration == 0 {
		c.Acceleration = 10000
	}
	if c.BaseMTTFHours == 0 {
		c.BaseMTTFHours = 1
	}
	if c.Distribution == "" {
		c.Distribution = DistExponential
	}
	if c.WeibullShape == 0 {
		c.WeibullShape = 2
	}
	if c.HorizonHours == 0 {
		c.HorizonHours = 1000
	}
	if len(c.FailureModes) == 0 {
		c.FailureModes = append([]event.FailureMode(nil), event.AllModes...)
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 10
	}
	if c.PodRecoveryTimeoutSeconds == 0 {
		c.PodRecoveryTimeoutSeconds = 300
	}
	if c.NodeRecoveryTimeoutSeconds == 0 {
		c.NodeRecoveryTimeoutSeconds = 1800
	}
	if c.Cluster.Nodes == 0 {
		c.Cluster.Nodes = 4
	}
	if c.Cluster.ControlPlaneNodes == 0 {
		c.Cluster.ControlPlaneNodes = 1
	}
	if c.Cluster.PodsPerNode == 0 {
		c.Cluster.PodsPerNode = 6
	}
	if c.Cluster.PodRecoveryMaxSeconds == 0 {
		c.Cluster.PodRecoveryMinSeconds = 5
		c.Cluster.PodRecoveryMaxSeconds = 60
	}
	if c.Cluster.NodeRecoveryMaxSeconds == 0 {
		c.Cluster.NodeRecoveryMinSeconds = 30
		c.Cluster.NodeRecoveryMaxSeconds = 300
	}
}

// Validate applies semantic checks the CUE schema cannot express.
func (c *SimulationConfig) Validate() error {
	if c.Acceleration <= 0 {
		return fmt.Errorf("acceleration must be > 0, got %v", c.Acceleration)
	}
	if c.BaseMTTFHours <= 0 {
		return fmt.Errorf("base_mttf_hours must be > 0, got %v", c.BaseMTTFHours)
	}
	switch c.Distribution {
	case DistExponential, DistWeibull, DistNormal:
	default:
		return fmt.Errorf("unknown distribution %q", c.Distribution)
	}
	if c.WeibullShape <= 0 {
		return fmt.Errorf("weibull_shape must be > 0, got %v", c.WeibullShape)
	}
	if len(c.FailureModes) == 0 {
		return fmt.Errorf("failure_modes must not be empty")
	}
	known := make(map[event.FailureMode]bool, len(event.AllModes))
	for _, m := range event.AllModes {
		known[m] = true
	}
	for _, m := range c.FailureModes {
		if !known[m] {
			return fmt.Errorf("unknown failure mode %q", m)
		}
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be > 0, got %v", c.PollIntervalSeconds)
	}
	if c.PodRecoveryTimeoutSeconds <= 0 || c.NodeRecoveryTimeoutSeconds <= 0 {
		return fmt.Errorf("recovery timeouts must be > 0")
	}
	if c.Cluster.ControlPlaneNodes >= c.Cluster.Nodes && c.Cluster.Nodes > 0 {
		return fmt.Errorf("control_plane_nodes (%d) must be fewer than nodes (%d)",
			c.Cluster.ControlPlaneNodes, c.Cluster.Nodes)
	}
	return nil
}
