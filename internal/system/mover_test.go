package system

import (
	"testing"

	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
)

type moverFixture struct {
	world  *ecs.World
	bus    *event.Bus
	pos    *ecs.Store[component.Position]
	movers *ecs.Store[component.Mover]
	sys    *MoverSystem
}

func newMoverFixture() *moverFixture {
	w := ecs.NewWorld()
	bus := event.NewBus()
	pos := ecs.NewStore[component.Position](w, "position")
	movers := ecs.NewStore[component.Mover](w, "mover")
	ecs.SetResource(w, component.Bounds{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100})
	return &moverFixture{
		world:  w,
		bus:    bus,
		pos:    pos,
		movers: movers,
		sys:    NewMoverSystem(w, bus, pos, movers),
	}
}

func (fx *moverFixture) spawn(x, y int32, speed float32) ecs.EntityID {
	e := fx.world.CreateEntity()
	fx.pos.Set(e, component.Position{X: x, Y: y})
	fx.movers.Set(e, component.Mover{Speed: speed})
	return e
}

func TestMoverScenario(t *testing.T) {
	fx := newMoverFixture()
	e := fx.spawn(20, 0, 0.001)
	if !fx.sys.Request(e, component.DirRight) {
		t.Fatal("Request on an idle mover failed")
	}

	for step := 1; step <= 12; step++ {
		fx.sys.Update(100)
		p, _ := fx.pos.Get(e)
		m, _ := fx.movers.Get(e)

		wantX := int32(20)
		if step >= 5 {
			wantX = 21
		}
		if p.X != wantX {
			t.Errorf("step %d: x = %d, want %d", step, p.X, wantX)
		}
		if idle := m.Idle(); idle != (step >= 10) {
			t.Errorf("step %d: idle = %v (progress %v)", step, idle, m.Progress)
		}
	}
	if fx.sys.Moves() != 1 {
		t.Errorf("Moves() = %d, want 1", fx.sys.Moves())
	}
}

func TestMoverClampAtBoundary(t *testing.T) {
	fx := newMoverFixture()
	e := fx.spawn(99, -100, 0.001)
	fx.sys.Request(e, component.DirRight)
	epoch := fx.world.Epoch()
	for i := 0; i < 10; i++ {
		fx.sys.Update(100)
	}
	p, _ := fx.pos.Get(e)
	m, _ := fx.movers.Get(e)
	if p.X != 99 {
		t.Errorf("x = %d, want clamped to 99", p.X)
	}
	if !m.Idle() {
		t.Error("mover should return to idle after a clamped move")
	}
	if fx.world.WasModifiedSince(e, fx.pos.Kind(), epoch) {
		t.Error("a clamped move should not write Position")
	}

	fx.sys.Request(e, component.DirUp)
	for i := 0; i < 10; i++ {
		fx.sys.Update(100)
	}
	if p, _ := fx.pos.Get(e); p.Y != -100 {
		t.Errorf("y = %d, want clamped to min -100", p.Y)
	}
}

func TestMoverFirstRequestWins(t *testing.T) {
	fx := newMoverFixture()
	e := fx.spawn(0, 0, 0.001)
	if !fx.sys.Request(e, component.DirDown) {
		t.Fatal("first request rejected")
	}
	if fx.sys.Request(e, component.DirLeft) {
		t.Error("second request accepted while moving")
	}
	if fx.sys.Request(e, component.DirNone) {
		t.Error("DirNone request accepted")
	}
	for i := 0; i < 10; i++ {
		fx.sys.Update(100)
	}
	if p, _ := fx.pos.Get(e); p != (component.Position{X: 0, Y: 1}) {
		t.Errorf("position = %+v, want {0 1}", p)
	}
}

func TestInterpolateOvershootCommitsOnce(t *testing.T) {
	m := component.Mover{Speed: 1}
	m.Request(component.DirLeft)
	p := component.Position{X: 5, Y: 5}
	if !Interpolate(&m, &p, nil, 3) {
		t.Error("overshooting step should still commit")
	}
	if p.X != 4 {
		t.Errorf("x = %d, want 4", p.X)
	}
	if !m.Idle() || m.Progress != 0 || m.Speed != 1 {
		t.Errorf("mover = %+v, want idle with speed kept", m)
	}
	if Interpolate(&m, &p, nil, 3) || p.X != 4 {
		t.Error("idle mover moved")
	}
}

func TestMoverEmitsMoved(t *testing.T) {
	fx := newMoverFixture()
	e := fx.spawn(0, 0, 0.5)
	fx.sys.Request(e, component.DirUp)

	var got []event.Moved
	event.Subscribe(fx.bus, func(ev event.Moved) { got = append(got, ev) })
	fx.sys.Update(1)
	fx.bus.SwapBuffers()
	fx.bus.DispatchAll()

	if len(got) != 1 || got[0].Entity != e || got[0].ToY != -1 {
		t.Errorf("Moved events = %+v", got)
	}
}
