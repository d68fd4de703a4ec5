package system

import (
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at step end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	destroyed int
}

// NewCleanupSystem also announces every destroyed entity on bus.
func NewCleanupSystem(world *ecs.World, bus *event.Bus) *CleanupSystem {
	world.OnDestroy(func(e ecs.EntityID) {
		event.Emit(bus, event.EntityDestroyed{Entity: e})
	})
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ float64) {
	s.destroyed += s.world.FlushDestroyQueue()
}

// Destroyed returns how many entities were destroyed so far.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
