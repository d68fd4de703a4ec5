package system

import (
	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
)

// MoverSystem interpolates grid moves. Phase 2 (Update), before BrainSystem.
//
// A move commits the Position change once, the first step its progress
// reaches 0.5, and ends when progress reaches 1.0. A single large delta can
// cross both thresholds; the Position still changes only once.
type MoverSystem struct {
	world  *ecs.World
	bus    *event.Bus
	pos    *ecs.Store[component.Position]
	movers *ecs.Store[component.Mover]
	moves  int
}

func NewMoverSystem(world *ecs.World, bus *event.Bus, pos *ecs.Store[component.Position], movers *ecs.Store[component.Mover]) *MoverSystem {
	return &MoverSystem{world: world, bus: bus, pos: pos, movers: movers}
}

func (s *MoverSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MoverSystem) Update(dt float64) {
	var bounds *component.Bounds
	if b, ok := ecs.GetResource[component.Bounds](s.world); ok {
		bounds = &b
	}
	for _, e := range s.movers.Entities() {
		if m, _ := s.movers.Get(e); m.Idle() {
			continue
		}
		from, ok := s.pos.Get(e)
		if !ok {
			continue
		}
		m, _ := s.movers.Mut(e)
		to := from
		if Interpolate(m, &to, bounds, dt) && to != from {
			s.pos.Set(e, to)
			s.moves++
			event.Emit(s.bus, event.Moved{Entity: e, FromX: from.X, FromY: from.Y, ToX: to.X, ToY: to.Y})
		}
	}
}

// Request starts a move for e. The first request wins while a move is in
// progress.
func (s *MoverSystem) Request(e ecs.EntityID, d component.Direction) bool {
	if m, ok := s.movers.Get(e); !ok || !m.Idle() || d == component.DirNone {
		return false
	}
	m, _ := s.movers.Mut(e)
	return m.Request(d)
}

// Moves returns how many Position changes the system committed so far.
func (s *MoverSystem) Moves() int { return s.moves }

// Interpolate advances m by dt and, on the commit step, moves p one cell in
// the pending direction, clamped to bounds when given. It reports whether
// this call committed.
func Interpolate(m *component.Mover, p *component.Position, bounds *component.Bounds, dt float64) bool {
	if m.Idle() {
		return false
	}
	m.Progress += m.Speed * float32(dt)

	committed := false
	if m.Progress >= 0.5 && !m.Committed {
		dx, dy := m.Pending.Delta()
		next := component.Position{X: p.X + dx, Y: p.Y + dy}
		if bounds != nil {
			next = bounds.Clamp(next)
		}
		*p = next
		m.Committed = true
		committed = true
	}
	if m.Progress >= 1.0 {
		*m = component.Mover{Speed: m.Speed}
	}
	return committed
}
