package system

import (
	"testing"

	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	"github.com/odnodvorets/flowsim/internal/flow"
)

type fixedGrowth struct {
	max      int
	duration float64
}

func (g fixedGrowth) PlantMaxStage() int             { return g.max }
func (g fixedGrowth) PlantStageDuration(int) float64 { return g.duration }

type planterFixture struct {
	world     *ecs.World
	bus       *event.Bus
	sched     *flow.Scheduler
	st        PlanterStores
	sys       *PlanterSystem
	committed []event.ActionCommitted
	aborted   []event.ActionAborted
}

func newPlanterFixture(opts PlanterOptions) *planterFixture {
	w := ecs.NewWorld()
	bus := event.NewBus()
	sched := flow.NewScheduler(w, zap.NewNop())
	st := PlanterStores{
		Pos:    ecs.NewStore[component.Position](w, "position"),
		Jobs:   ecs.NewStore[component.PlanJob](w, "plan_job"),
		Plants: ecs.NewStore[component.Plant](w, "plant"),
		Kinds:  ecs.NewStore[component.Kind](w, "kind"),
	}
	fx := &planterFixture{world: w, bus: bus, sched: sched, st: st}
	fx.sys = NewPlanterSystem(w, sched, bus, st, fixedGrowth{max: 2, duration: 100}, opts, zap.NewNop())
	event.Subscribe(bus, func(ev event.ActionCommitted) { fx.committed = append(fx.committed, ev) })
	event.Subscribe(bus, func(ev event.ActionAborted) { fx.aborted = append(fx.aborted, ev) })
	return fx
}

// step runs the parts of a simulation step the planter depends on.
func (fx *planterFixture) step(dt float64) {
	fx.sched.Tick(dt)
	fx.bus.SwapBuffers()
	fx.bus.DispatchAll()
	fx.world.FlushDestroyQueue()
}

func (fx *planterFixture) owner(x, y int32) ecs.EntityID {
	e := fx.world.CreateEntity()
	fx.st.Pos.Set(e, component.Position{X: x, Y: y})
	fx.st.Kinds.Set(e, component.Kind{Name: "player"})
	return e
}

func TestPlantCommitsAtSnapshot(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 1000})
	owner := fx.owner(5, 5)
	job, ok := fx.sys.Request(owner)
	if !ok {
		t.Fatal("Request failed")
	}
	if p, _ := fx.world.Parent(job); p != owner {
		t.Errorf("job parent = %v, want %v", p, owner)
	}

	for i := 0; i < 5; i++ {
		fx.step(500)
	}
	if len(fx.aborted) != 0 {
		t.Fatalf("aborted = %+v", fx.aborted)
	}
	if len(fx.committed) != 1 {
		t.Fatalf("committed = %+v, want one", fx.committed)
	}
	ev := fx.committed[0]
	if ev.X != 5 || ev.Y != 5 || ev.Entity != owner {
		t.Errorf("commit = %+v, want owner at (5,5)", ev)
	}
	if p, ok := fx.st.Pos.Get(ev.Result); !ok || p != (component.Position{X: 5, Y: 5}) {
		t.Errorf("plant position = %+v, %v", p, ok)
	}
	if fx.world.Alive(job) {
		t.Error("plan job should be destroyed when its flow ends")
	}
	if n := len(fx.world.Children(owner)); n != 0 {
		t.Errorf("owner still has %d children", n)
	}
}

func TestPlantAbortsWhenOwnerMoved(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 1000})
	owner := fx.owner(5, 5)
	fx.sys.Request(owner)
	fx.step(1)
	fx.st.Pos.Set(owner, component.Position{X: 6, Y: 5})

	for i := 0; i < 5; i++ {
		fx.step(500)
	}
	if len(fx.committed) != 0 {
		t.Errorf("committed = %+v after the owner moved", fx.committed)
	}
	if len(fx.aborted) != 1 || fx.aborted[0].Reason != ReasonOwnerMoved {
		t.Errorf("aborted = %+v", fx.aborted)
	}
	if fx.st.Plants.Len() != 0 {
		t.Errorf("%d plants created", fx.st.Plants.Len())
	}
}

func TestPlantCancelledWithOwner(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 1000})
	owner := fx.owner(5, 5)
	job, _ := fx.sys.Request(owner)
	fx.step(1)

	fx.world.MarkForDestruction(owner)
	fx.step(1)
	if fx.world.Alive(job) {
		t.Error("destroying the owner should destroy its plan job")
	}
	for i := 0; i < 5; i++ {
		fx.step(500)
	}
	if len(fx.committed)+len(fx.aborted) != 0 {
		t.Errorf("cancelled plant produced events: %+v %+v", fx.committed, fx.aborted)
	}
	if got := fx.sched.Totals().Cancelled; got != 1 {
		t.Errorf("Cancelled = %d, want 1", got)
	}
	if fx.sched.Len() != 0 {
		t.Errorf("Len() = %d, want 0", fx.sched.Len())
	}
}

func TestPlantGrowsThroughStages(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 10})
	owner := fx.owner(0, 0)
	fx.sys.Request(owner)
	for i := 0; i < 40; i++ {
		fx.step(20)
	}
	if len(fx.committed) != 1 {
		t.Fatalf("committed = %+v", fx.committed)
	}
	p, ok := fx.st.Plants.Get(fx.committed[0].Result)
	if !ok || p.Stage != 2 {
		t.Errorf("plant = %+v, want stage 2", p)
	}
	if fx.sched.Len() != 0 {
		t.Errorf("grown plant left %d flows", fx.sched.Len())
	}
}

func TestPlanterAutomation(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 10, Interval: 3, Kinds: []string{"player"}})
	fx.owner(1, 1)
	hare := fx.world.CreateEntity()
	fx.st.Pos.Set(hare, component.Position{})
	fx.st.Kinds.Set(hare, component.Kind{Name: "hare"})

	for i := 0; i < 6; i++ {
		fx.sys.Update(1)
	}
	if got := fx.st.Jobs.Len(); got != 2 {
		t.Errorf("plan jobs = %d, want 2 (player only, every 3 steps)", got)
	}
}

func TestRequestWithoutPosition(t *testing.T) {
	fx := newPlanterFixture(PlanterOptions{Delay: 10})
	e := fx.world.CreateEntity()
	if _, ok := fx.sys.Request(e); ok {
		t.Error("Request succeeded for an entity without Position")
	}
}
