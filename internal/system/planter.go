package system

import (
	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/flow"
)

// ActionPlant names plant requests in events and the journal.
const ActionPlant = "plant"

// Abort reasons.
const (
	ReasonOwnerMoved = "owner moved"
	ReasonOwnerGone  = "owner gone"
)

// GrowthModel supplies plant stage durations (implemented by scripting.Engine).
type GrowthModel interface {
	PlantMaxStage() int
	PlantStageDuration(stage int) float64
}

// PlanterStores groups the component stores the planter reads and writes.
type PlanterStores struct {
	Pos    *ecs.Store[component.Position]
	Jobs   *ecs.Store[component.PlanJob]
	Plants *ecs.Store[component.Plant]
	Kinds  *ecs.Store[component.Kind]
}

// PlanterOptions configures a PlanterSystem.
type PlanterOptions struct {
	Delay    float64  // simulated units between request and commit
	Interval int      // steps between automatic requests, 0 = off
	Kinds    []string // entity kinds that plant automatically
}

// PlanterSystem turns plant requests into deferred actions. Phase 2 (Update).
//
// A request creates a PlanJob entity as a child of the owner and starts a
// flow scoped to it. The flow captures a premise on the owner's Position at
// request time, sleeps for the configured delay and plants at the snapshot
// position only if the owner has not moved since. Destroying the owner
// destroys the job and with it the pending flow.
type PlanterSystem struct {
	world  *ecs.World
	sched  *flow.Scheduler
	bus    *event.Bus
	log    *zap.Logger
	st     PlanterStores
	growth GrowthModel
	opts   PlanterOptions
	auto   map[string]bool
	steps  int
}

func NewPlanterSystem(world *ecs.World, sched *flow.Scheduler, bus *event.Bus, stores PlanterStores, growth GrowthModel, opts PlanterOptions, log *zap.Logger) *PlanterSystem {
	auto := make(map[string]bool, len(opts.Kinds))
	for _, k := range opts.Kinds {
		auto[k] = true
	}
	return &PlanterSystem{
		world:  world,
		sched:  sched,
		bus:    bus,
		log:    log,
		st:     stores,
		growth: growth,
		opts:   opts,
		auto:   auto,
	}
}

func (s *PlanterSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlanterSystem) Update(_ float64) {
	s.steps++
	if s.opts.Interval <= 0 || s.steps%s.opts.Interval != 0 {
		return
	}
	for _, e := range s.st.Kinds.Entities() {
		if k, _ := s.st.Kinds.Get(e); s.auto[k.Name] {
			s.Request(e)
		}
	}
}

// Request asks owner to plant at its current position after the configured
// delay. It returns the plan job entity, or false when owner has no Position.
func (s *PlanterSystem) Request(owner ecs.EntityID) (ecs.EntityID, bool) {
	target, ok := s.st.Pos.Get(owner)
	if !ok || !s.world.Alive(owner) {
		return ecs.NoEntity, false
	}
	premise := flow.Capture(s.world, owner, s.st.Pos.Kind())

	job := s.world.CreateEntity()
	s.world.SetParent(job, owner)
	s.st.Jobs.Set(job, component.PlanJob{Owner: owner, Target: target})

	s.sched.SpawnFor(job, func(f *flow.Flow) {
		f.SleepFor(s.opts.Delay)
		defer s.world.MarkForDestruction(job)

		if premise.Stale(f.World()) {
			reason := ReasonOwnerMoved
			if !f.World().Alive(owner) {
				reason = ReasonOwnerGone
			}
			s.log.Debug("plant aborted", zap.Stringer("owner", owner), zap.String("reason", reason))
			event.Emit(s.bus, event.ActionAborted{Action: ActionPlant, Entity: owner, Reason: reason, At: f.Now()})
			return
		}

		plant := s.plant(target, f.Now())
		event.Emit(s.bus, event.ActionCommitted{
			Action: ActionPlant,
			Entity: owner,
			Result: plant,
			X:      target.X,
			Y:      target.Y,
			At:     f.Now(),
		})
	})
	return job, true
}

func (s *PlanterSystem) plant(at component.Position, now float64) ecs.EntityID {
	e := s.world.CreateEntity()
	s.st.Pos.Set(e, at)
	s.st.Plants.Set(e, component.Plant{Planted: now})
	s.st.Kinds.Set(e, component.Kind{Name: "plant"})
	s.sched.SpawnFor(e, s.grow(e))
	return e
}

// grow advances a plant through its stages until the growth model's last one.
func (s *PlanterSystem) grow(e ecs.EntityID) flow.Body {
	return func(f *flow.Flow) {
		last := s.growth.PlantMaxStage()
		for {
			p, ok := s.st.Plants.Get(e)
			if !ok || p.Stage >= last {
				return
			}
			f.SleepFor(s.growth.PlantStageDuration(p.Stage))
			if m, ok := s.st.Plants.Mut(e); ok {
				m.Stage++
				s.log.Debug("plant grew", zap.Stringer("plant", e), zap.Int("stage", m.Stage))
			}
		}
	}
}
