package sim

import (
	"math/rand"
	"sync"
	"time"

	"kuberbomber/internal/cluster"
	"kuberbomber/internal/event"
)

// Selector picks an eligible target for a failure mode from the cluster
// inventory. Destructive node-level modes never touch control-plane nodes.
type Selector struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewSelector creates a selector with its own random source.
func NewSelector() *Selector {
	return &Selector{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Select returns a uniformly random eligible target. The second return is
// false when nothing is eligible; the caller should skip the cycle, not
// treat it as an error.
func (s *Selector) Select(mode event.FailureMode, inventory []cluster.TargetRef) (cluster.TargetRef, bool) {
	eligible := inventory[:0:0]
	for _, t := range inventory {
		if mode.Destructive() && t.ControlPlane {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return cluster.TargetRef{}, false
	}
	s.mu.Lock()
	idx := s.rand.Intn(len(eligible))
	s.mu.Unlock()
	return eligible[idx], true
}
