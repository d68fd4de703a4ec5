package system

import (
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
)

// EventSystem delivers the previous step's events. Phase 1 (Events).
type EventSystem struct {
	bus       *event.Bus
	delivered int
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ float64) {
	s.bus.SwapBuffers()
	s.delivered += s.bus.DispatchAll()
}

// Delivered returns how many events were dispatched so far.
func (s *EventSystem) Delivered() int { return s.delivered }
