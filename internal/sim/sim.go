// Package sim assembles the world, the flow scheduler and the systems into a
// runnable simulation.
package sim

import (
	"math"

	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/config"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/data"
	"github.com/odnodvorets/flowsim/internal/flow"
	"github.com/odnodvorets/flowsim/internal/mathx"
	"github.com/odnodvorets/flowsim/internal/system"
	"github.com/odnodvorets/flowsim/internal/telemetry"
)

// placementStream is the random stream used for spawn scatter. Entity ids
// never reach it.
const placementStream = math.MaxUint64

// Stores holds every component store of the simulation.
type Stores struct {
	Pos    *ecs.Store[component.Position]
	Movers *ecs.Store[component.Mover]
	Brains *ecs.Store[component.Brain]
	Jobs   *ecs.Store[component.PlanJob]
	Plants *ecs.Store[component.Plant]
	Kinds  *ecs.Store[component.Kind]
}

func newStores(w *ecs.World) Stores {
	return Stores{
		Pos:    ecs.NewStore[component.Position](w, "position"),
		Movers: ecs.NewStore[component.Mover](w, "mover"),
		Brains: ecs.NewStore[component.Brain](w, "brain"),
		Jobs:   ecs.NewStore[component.PlanJob](w, "plan_job"),
		Plants: ecs.NewStore[component.Plant](w, "plant"),
		Kinds:  ecs.NewStore[component.Kind](w, "kind"),
	}
}

// Deps are the collaborators built outside the simulation.
type Deps struct {
	Growth  system.GrowthModel
	Spawns  *data.SpawnList
	Journal system.JournalWriter     // nil = journal off
	Output  *telemetry.OutputManager // nil = CSV off
}

// Sim is one simulation run.
type Sim struct {
	cfg *config.Config
	log *zap.Logger

	World  *ecs.World
	Bus    *event.Bus
	Sched  *flow.Scheduler
	Runner *coresys.Runner
	Stores Stores

	Flows     *system.FlowSystem
	Events    *system.EventSystem
	Mover     *system.MoverSystem
	Brain     *system.BrainSystem
	Planter   *system.PlanterSystem
	Telemetry *system.TelemetrySystem
	Journal   *system.JournalSystem // nil when off
	Cleanup   *system.CleanupSystem

	spawns  *data.SpawnList
	commits int
	aborts  int
	closed  bool
}

// New wires a simulation. Entities are created by Populate.
func New(cfg *config.Config, deps Deps, log *zap.Logger) *Sim {
	w := ecs.NewWorld()
	bus := event.NewBus()
	sched := flow.NewScheduler(w, log.Named("flow"))
	st := newStores(w)

	ecs.SetResource(w, component.Bounds{
		MinX: cfg.World.MinX,
		MinY: cfg.World.MinY,
		MaxX: cfg.World.MaxX,
		MaxY: cfg.World.MaxY,
	})
	ecs.SetResource(w, component.Frame{Delta: cfg.Sim.FrameDelta})

	s := &Sim{
		cfg:    cfg,
		log:    log,
		World:  w,
		Bus:    bus,
		Sched:  sched,
		Runner: coresys.NewRunner(),
		Stores: st,
		spawns: deps.Spawns,
	}

	var planters []string
	if deps.Spawns != nil {
		for _, name := range deps.Spawns.Kinds() {
			if deps.Spawns.Kind(name).Plants {
				planters = append(planters, name)
			}
		}
	}

	s.Flows = system.NewFlowSystem(sched)
	s.Events = system.NewEventSystem(bus)
	s.Mover = system.NewMoverSystem(w, bus, st.Pos, st.Movers)
	s.Brain = system.NewBrainSystem(w, st.Brains, st.Movers, s.Mover, cfg.Sim.Seed)
	s.Planter = system.NewPlanterSystem(w, sched, bus, system.PlanterStores{
		Pos:    st.Pos,
		Jobs:   st.Jobs,
		Plants: st.Plants,
		Kinds:  st.Kinds,
	}, deps.Growth, system.PlanterOptions{
		Delay:    cfg.Planter.Delay,
		Interval: cfg.Planter.Interval,
		Kinds:    planters,
	}, log.Named("planter"))
	s.Telemetry = system.NewTelemetrySystem(w, sched, s.Flows, bus, cfg.Telemetry.Window, deps.Output, log.Named("telemetry"))
	if deps.Journal != nil {
		s.Journal = system.NewJournalSystem(deps.Journal, bus, cfg.Database.FlushEvery, log.Named("journal"))
	}
	s.Cleanup = system.NewCleanupSystem(w, bus)

	event.Subscribe(bus, func(event.ActionCommitted) { s.commits++ })
	event.Subscribe(bus, func(event.ActionAborted) { s.aborts++ })

	s.Runner.Register(s.Flows)
	s.Runner.Register(s.Events)
	s.Runner.Register(s.Mover)
	s.Runner.Register(s.Brain)
	s.Runner.Register(s.Planter)
	s.Runner.Register(s.Telemetry)
	if s.Journal != nil {
		s.Runner.Register(s.Journal)
	}
	s.Runner.Register(s.Cleanup)
	return s
}

// Populate creates the entities of the spawn list and returns how many.
func (s *Sim) Populate() int {
	if s.spawns == nil {
		return 0
	}
	rng := mathx.NewRand(s.cfg.Sim.Seed, placementStream)
	bounds := ecs.MustGetResource[component.Bounds](s.World)
	created := 0
	for _, sp := range s.spawns.Spawns {
		tmpl := s.spawns.Kind(sp.Kind)
		for i := 0; i < sp.Count; i++ {
			p := component.Position{X: sp.X, Y: sp.Y}
			if sp.RandomX > 0 {
				p.X += rng.Int32N(2*sp.RandomX+1) - sp.RandomX
			}
			if sp.RandomY > 0 {
				p.Y += rng.Int32N(2*sp.RandomY+1) - sp.RandomY
			}
			s.Spawn(tmpl, bounds.Clamp(p))
			created++
		}
	}
	s.log.Info("world populated", zap.Int("entities", created))
	return created
}

// Spawn creates one entity of kind tmpl at p.
func (s *Sim) Spawn(tmpl *data.KindTemplate, p component.Position) ecs.EntityID {
	e := s.World.CreateEntity()
	s.Stores.Pos.Set(e, p)
	s.Stores.Kinds.Set(e, component.Kind{Name: tmpl.Name})
	if tmpl.Speed > 0 {
		s.Stores.Movers.Set(e, component.Mover{Speed: tmpl.Speed})
	}
	if tmpl.Brain {
		s.Stores.Brains.Set(e, component.Brain{})
	}
	return e
}

// Step runs one simulation step with the configured frame delta.
func (s *Sim) Step() {
	frame := ecs.MustGetResource[component.Frame](s.World)
	frame.Step++
	ecs.SetResource(s.World, frame)
	s.Runner.Tick(frame.Delta)
}

// Now is the simulated time.
func (s *Sim) Now() float64 { return s.Sched.Now() }

// Summary describes a run so far.
type Summary struct {
	Steps          uint64
	SimTime        float64
	Entities       int
	Plants         int
	Flows          flow.Totals
	FlowsAlive     int
	Commits        int
	Aborts         int
	Moves          int
	Destroyed      int
	JournalWritten int
}

func (s *Sim) Summary() Summary {
	sum := Summary{
		Steps:      ecs.MustGetResource[component.Frame](s.World).Step,
		SimTime:    s.Now(),
		Entities:   s.World.Pool().Len(),
		Plants:     s.Stores.Plants.Len(),
		Flows:      s.Sched.Totals(),
		FlowsAlive: s.Sched.Len(),
		Commits:    s.commits,
		Aborts:     s.aborts,
		Moves:      s.Mover.Moves(),
		Destroyed:  s.Cleanup.Destroyed(),
	}
	if s.Journal != nil {
		sum.JournalWritten = s.Journal.Written()
	}
	return sum
}

// KindCounts returns how many placed entities of each kind exist.
func (s *Sim) KindCounts() map[string]int {
	counts := make(map[string]int)
	ecs.Each2(s.Stores.Pos, s.Stores.Kinds, func(_ ecs.EntityID, _ component.Position, k component.Kind) {
		counts[k.Name]++
	})
	return counts
}

// Close delivers pending events, flushes telemetry and the journal, and
// cancels every remaining flow. Safe to call twice.
func (s *Sim) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.Runner.TickPhase(coresys.PhaseEvents, 0)
	s.Telemetry.Flush()
	if s.Journal != nil {
		s.Journal.Flush()
	}
	s.Sched.Close()
	s.log.Info("simulation closed",
		zap.Float64("sim_time", s.Now()),
		zap.Uint64("flows_cancelled", s.Sched.Totals().Cancelled),
	)
}
