package system

// Phase defines execution ordering within a single simulation step.
type Phase int

const (
	PhaseFlows      Phase = iota // 0: advance clock, resume ready flows
	PhaseEvents                  // 1: deliver last step's events
	PhaseUpdate                  // 2: movement, direction choice, requests
	PhasePostUpdate              // 3: telemetry sampling
	PhasePersist                 // 4: journal flush
	PhaseCleanup                 // 5: destroy queued entities
)

var phaseNames = [...]string{"flows", "events", "update", "post_update", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements. dt is the step's
// simulated frame delta, not wall-clock time.
type System interface {
	Phase() Phase
	Update(dt float64)
}
