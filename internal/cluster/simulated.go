package cluster

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"kuberbomber/internal/config"
	"kuberbomber/internal/event"
)

// SimCluster is an in-memory stand-in for a real cluster. Failed targets
// come back on their own after a randomized recovery delay, so the engine
// can run end to end without touching a real control plane.
type SimCluster struct {
	mu    sync.Mutex
	rand  *rand.Rand
	cfg   config.ClusterConfig
	nodes []*simNode
	pods  []*simPod
	now   func() time.Time
}

type simNode struct {
	ref       TargetRef
	downUntil time.Time
}

type simPod struct {
	ref       TargetRef
	node      *simNode
	downUntil time.Time
}

// NewSimCluster builds the simulated inventory from config.
func NewSimCluster(cfg config.ClusterConfig) *SimCluster {
	c := &SimCluster{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:  cfg,
		now:  time.Now,
	}
	for i := 0; i < cfg.Nodes; i++ {
		n := &simNode{ref: TargetRef{
			Name:         fmt.Sprintf("node-%d-%s", i, shortID()),
			Kind:         event.KindNode,
			ControlPlane: i < cfg.ControlPlaneNodes,
		}}
		c.nodes = append(c.nodes, n)
		for j := 0; j < cfg.PodsPerNode; j++ {
			c.pods = append(c.pods, &simPod{
				ref: TargetRef{
					Name: fmt.Sprintf("pod-%d-%d-%s", i, j, shortID()),
					Kind: event.KindPod,
				},
				node: n,
			})
		}
	}
	return c
}

func shortID() string {
	return uuid.New().String()[:8]
}

// ListTargets returns the inventory matching a failure mode's target kind.
func (c *SimCluster) ListTargets(mode event.FailureMode) []TargetRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	var refs []TargetRef
	switch mode.Kind() {
	case event.KindPod:
		for _, p := range c.pods {
			refs = append(refs, p.ref)
		}
	case event.KindNode:
		for _, n := range c.nodes {
			refs = append(refs, n.ref)
		}
	}
	return refs
}

// ApplyFailure marks the target unhealthy and schedules its automatic
// recovery. A configured injection_failure_rate makes a fraction of
// attempts report failure without taking the target down.
func (c *SimCluster) ApplyFailure(target TargetRef, mode event.FailureMode) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.InjectionFailureRate > 0 && c.rand.Float64() < c.cfg.InjectionFailureRate {
		return false, nil
	}

	until := c.now().Add(c.recoveryDelay(target.Kind))
	switch target.Kind {
	case event.KindPod:
		for _, p := range c.pods {
			if p.ref.Name == target.Name {
				p.downUntil = until
				return true, nil
			}
		}
	case event.KindNode:
		for _, n := range c.nodes {
			if n.ref.Name == target.Name {
				n.downUntil = until
				return true, nil
			}
		}
	}
	return false, fmt.Errorf("unknown target %s/%s", target.Kind, target.Name)
}

func (c *SimCluster) recoveryDelay(kind event.TargetKind) time.Duration {
	min, max := c.cfg.PodRecoveryMinSeconds, c.cfg.PodRecoveryMaxSeconds
	if kind == event.KindNode {
		min, max = c.cfg.NodeRecoveryMinSeconds, c.cfg.NodeRecoveryMaxSeconds
	}
	sec := min
	if max > min {
		sec += c.rand.Float64() * (max - min)
	}
	return time.Duration(sec * float64(time.Second))
}

// ProbeHealth reports whether a target has recovered. A pod on a downed
// node probes unhealthy even if the pod itself is up.
func (c *SimCluster) ProbeHealth(target TargetRef) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	switch target.Kind {
	case event.KindPod:
		for _, p := range c.pods {
			if p.ref.Name == target.Name {
				return now.After(p.downUntil) && now.After(p.node.downUntil), nil
			}
		}
	case event.KindNode:
		for _, n := range c.nodes {
			if n.ref.Name == target.Name {
				return now.After(n.downUntil), nil
			}
		}
	}
	return false, fmt.Errorf("unknown target %s/%s", target.Kind, target.Name)
}

// HealthScore weighs node and pod health into a 0-100 cluster score.
func (c *SimCluster) HealthScore() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.nodes) == 0 {
		return 0
	}
	nodesUp := 0
	for _, n := range c.nodes {
		if now.After(n.downUntil) {
			nodesUp++
		}
	}
	podsUp := 0
	for _, p := range c.pods {
		if now.After(p.downUntil) && now.After(p.node.downUntil) {
			podsUp++
		}
	}
	nodeScore := float64(nodesUp) / float64(len(c.nodes)) * 100
	podScore := 100.0
	if len(c.pods) > 0 {
		podScore = float64(podsUp) / float64(len(c.pods)) * 100
	}
	return nodeScore*0.4 + podScore*0.6
}
