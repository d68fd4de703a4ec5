package system

import (
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/flow"
)

// FlowSystem advances simulated time and resumes due flows.
// Phase 0 (Flows).
type FlowSystem struct {
	sched *flow.Scheduler
	last  flow.TickStats
}

func NewFlowSystem(sched *flow.Scheduler) *FlowSystem {
	return &FlowSystem{sched: sched}
}

func (s *FlowSystem) Phase() coresys.Phase { return coresys.PhaseFlows }

func (s *FlowSystem) Update(dt float64) {
	s.last = s.sched.Tick(dt)
}

// Last returns the stats of the most recent tick.
func (s *FlowSystem) Last() flow.TickStats { return s.last }
