package flow

import (
	"fmt"
	"math"

	"github.com/odnodvorets/flowsim/internal/core/ecs"
)

// TaskID identifies a flow within its scheduler. Zero is never assigned.
type TaskID uint64

// Body is the code of a flow. It runs on the simulation goroutine and may
// suspend itself only through the Flow it receives.
type Body func(f *Flow)

type flowState uint8

const (
	statePending   flowState = iota // spawned, first run on the next tick
	stateRunning                    // currently executing
	stateSleeping                   // waiting in the wakeup registry
	stateParked                     // waiting forever
	stateDone                       // body returned
	stateCancelled                  // dropped at a suspension point
)

func (s flowState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateRunning:
		return "running"
	case stateSleeping:
		return "sleeping"
	case stateParked:
		return "parked"
	case stateDone:
		return "done"
	case stateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// wake is what a flow hands back to the scheduler when it suspends.
type wake struct {
	release float64
	forever bool
}

// cancelSignal unwinds a cancelled flow's body from its suspension point.
type cancelSignal struct{}

// Flow is a suspendable unit of computation. The scheduler switches into it
// synchronously, so at most one flow (or the scheduler itself) runs at a time.
type Flow struct {
	id     TaskID
	entity ecs.EntityID
	sched  *Scheduler
	state  flowState

	next  func() (wake, bool)
	stop  func()
	yield func(wake) bool

	handle    Handle
	cancelled bool // set once cancellation was requested
}

func (f *Flow) ID() TaskID { return f.id }

// Entity returns the owning entity of an entity-scoped flow.
func (f *Flow) Entity() (ecs.EntityID, bool) {
	return f.entity, !f.entity.IsZero()
}

// World is the world handle the flow was spawned against.
func (f *Flow) World() *ecs.World { return f.sched.world }

// Scheduler returns the scheduler that owns the flow.
func (f *Flow) Scheduler() *Scheduler { return f.sched }

// Now is the scheduler's simulated time.
func (f *Flow) Now() float64 { return f.sched.Now() }

// SleepFor suspends the flow for d simulated units.
func (f *Flow) SleepFor(d float64) {
	if d < 0 || math.IsNaN(d) {
		panic(fmt.Sprintf("flow: invalid sleep duration %v", d))
	}
	f.SleepUntil(f.sched.Now() + d)
}

// maxRelease is the first time no bucket can represent. Sleeping until it or
// later (including +Inf) waits forever.
const maxRelease = float64(1 << 62)

// SleepUntil suspends the flow until the registry releases the bucket of t.
// A time that is not in the future returns immediately without suspending.
func (f *Flow) SleepUntil(t float64) {
	f.mustBeRunning("SleepUntil")
	if math.IsNaN(t) {
		panic("flow: sleep until NaN")
	}
	if t <= f.sched.Now() {
		return
	}
	if t >= maxRelease {
		f.suspend(wake{forever: true})
		return
	}
	f.suspend(wake{release: t})
}

// Park suspends the flow with no wakeup. Only cancellation ends it.
func (f *Flow) Park() {
	f.mustBeRunning("Park")
	f.suspend(wake{forever: true})
}

// Spawn starts a free flow on the next tick.
func (f *Flow) Spawn(body Body) TaskID {
	return f.sched.Spawn(body)
}

// SpawnFor starts a flow scoped to e on the next tick.
func (f *Flow) SpawnFor(e ecs.EntityID, body Body) TaskID {
	return f.sched.SpawnFor(e, body)
}

func (f *Flow) suspend(w wake) {
	if f.cancelled || !f.yield(w) {
		panic(cancelSignal{})
	}
}

func (f *Flow) mustBeRunning(op string) {
	if f.sched.running != f {
		panic(fmt.Sprintf("flow: %s called outside flow %d", op, f.id))
	}
}

// seq adapts body to the iterator shape iter.Pull expects. Each yield is one
// suspension; the cancel signal is swallowed so stop() returns cleanly.
func (f *Flow) seq(body Body) func(yield func(wake) bool) {
	return func(yield func(wake) bool) {
		f.yield = yield
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(cancelSignal); !ok {
					panic(r)
				}
			}
		}()
		body(f)
	}
}
