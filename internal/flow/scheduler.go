package flow

import (
	"fmt"
	"iter"
	"sort"

	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/core/ecs"
)

// TickStats describes one Scheduler.Tick.
type TickStats struct {
	Now       float64
	Started   int // flows that ran for the first time
	Woken     int // flows resumed from the registry
	Completed int // flows whose body returned during the tick
}

// Totals are cumulative scheduler counters.
type Totals struct {
	Spawned   uint64
	Started   uint64
	Woken     uint64
	Completed uint64
	Cancelled uint64
}

// Scheduler is a single-threaded cooperative scheduler for flows driven by
// simulated time. Each Tick advances the clock once, starts flows spawned
// before the tick, then drains the wakeup registry and resumes every released
// flow in drain order. Flows spawned during a tick first run on the next one.
//
// Entity-scoped flows are cancelled when their entity is destroyed: the
// scheduler hooks World.OnDestroy, and resumption also checks the entity's
// generation, so a recycled index cannot revive a dead flow.
type Scheduler struct {
	world  *ecs.World
	log    *zap.Logger
	clock  Clock
	timers *WakeupRegistry

	flows    map[TaskID]*Flow
	spawned  []*Flow
	byEntity map[ecs.EntityID][]TaskID
	nextID   TaskID
	nextSeq  uint64
	running  *Flow
	ticking  bool
	closed   bool

	totals Totals
	tick   TickStats
}

func NewScheduler(world *ecs.World, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		world:    world,
		log:      log,
		timers:   NewWakeupRegistry(),
		flows:    make(map[TaskID]*Flow),
		byEntity: make(map[ecs.EntityID][]TaskID),
	}
	world.OnDestroy(s.CancelEntity)
	return s
}

func (s *Scheduler) Now() float64            { return s.clock.Now() }
func (s *Scheduler) World() *ecs.World       { return s.world }
func (s *Scheduler) Totals() Totals          { return s.totals }
func (s *Scheduler) Timers() *WakeupRegistry { return s.timers }

// Len returns the number of live flows (pending, sleeping or parked).
func (s *Scheduler) Len() int { return len(s.flows) }

// Spawn registers a free flow. It first runs on the next Tick.
func (s *Scheduler) Spawn(body Body) TaskID {
	return s.spawn(ecs.NoEntity, body)
}

// SpawnFor registers a flow bound to e. It first runs on the next Tick and is
// cancelled if e is destroyed. Returns 0 when e is not alive.
func (s *Scheduler) SpawnFor(e ecs.EntityID, body Body) TaskID {
	if !s.world.Alive(e) {
		s.log.Debug("flow not spawned for dead entity", zap.Stringer("entity", e))
		return 0
	}
	return s.spawn(e, body)
}

func (s *Scheduler) spawn(e ecs.EntityID, body Body) TaskID {
	if s.closed {
		return 0
	}
	s.nextID++
	f := &Flow{
		id:     s.nextID,
		entity: e,
		sched:  s,
		state:  statePending,
	}
	f.next, f.stop = iter.Pull(f.seq(body))
	s.flows[f.id] = f
	s.spawned = append(s.spawned, f)
	if !e.IsZero() {
		s.byEntity[e] = append(s.byEntity[e], f.id)
	}
	s.totals.Spawned++
	s.log.Debug("flow spawned", zap.Uint64("task", uint64(f.id)), zap.Stringer("entity", e))
	return f.id
}

// Tick advances the clock by delta and runs every flow that is due.
func (s *Scheduler) Tick(delta float64) TickStats {
	if s.ticking {
		panic("flow: Tick called from inside a tick")
	}
	s.ticking = true
	defer func() { s.ticking = false }()

	s.clock.Advance(delta)
	s.tick = TickStats{Now: s.clock.Now()}

	starting := s.spawned
	s.spawned = nil
	for _, f := range starting {
		if f.state != statePending {
			continue // cancelled before its first run
		}
		s.tick.Started++
		s.totals.Started++
		s.resume(f)
	}

	for _, h := range s.timers.Drain(s.clock.Now()) {
		f, ok := s.flows[h.task]
		if !ok || f.state != stateSleeping || f.handle != h {
			continue
		}
		s.tick.Woken++
		s.totals.Woken++
		s.resume(f)
	}
	return s.tick
}

// resume switches into f until it suspends or returns.
func (s *Scheduler) resume(f *Flow) {
	if f.state == stateDone || f.state == stateCancelled {
		panic(fmt.Sprintf("flow: resume of finished flow %d (%s)", f.id, f.state))
	}
	if !f.entity.IsZero() && !s.world.Alive(f.entity) {
		s.cancel(f)
		return
	}

	f.state = stateRunning
	prev := s.running
	s.running = f
	w, ok := f.next()
	s.running = prev

	switch {
	case !ok && f.cancelled:
		s.finish(f, stateCancelled)
	case !ok:
		s.tick.Completed++
		s.finish(f, stateDone)
	case f.cancelled:
		s.stop(f)
		s.finish(f, stateCancelled)
	case w.forever:
		f.state = stateParked
	default:
		s.nextSeq++
		f.handle = Handle{task: f.id, seq: s.nextSeq}
		f.state = stateSleeping
		s.timers.Schedule(f.handle, w.release)
	}
}

// Cancel drops the flow with the given id. It reports whether the flow was
// still live.
func (s *Scheduler) Cancel(id TaskID) bool {
	f, ok := s.flows[id]
	if !ok {
		return false
	}
	s.cancel(f)
	return true
}

// CancelEntity drops every flow scoped to e.
func (s *Scheduler) CancelEntity(e ecs.EntityID) {
	ids := s.byEntity[e]
	if len(ids) == 0 {
		return
	}
	for _, id := range append([]TaskID(nil), ids...) {
		if f, ok := s.flows[id]; ok {
			s.cancel(f)
		}
	}
}

func (s *Scheduler) cancel(f *Flow) {
	switch f.state {
	case stateDone, stateCancelled:
		return
	case stateRunning:
		// stopped by resume once it reaches its next suspension point
		f.cancelled = true
		return
	case stateSleeping:
		s.timers.Remove(f.handle)
	}
	f.cancelled = true
	s.stop(f)
	s.finish(f, stateCancelled)
}

// stop unwinds a suspended coroutine. Only the body's deferred calls run.
func (s *Scheduler) stop(f *Flow) {
	prev := s.running
	s.running = f
	f.stop()
	s.running = prev
}

func (s *Scheduler) finish(f *Flow, state flowState) {
	f.state = state
	delete(s.flows, f.id)
	if !f.entity.IsZero() {
		ids := s.byEntity[f.entity]
		for i, id := range ids {
			if id == f.id {
				ids = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(ids) == 0 {
			delete(s.byEntity, f.entity)
		} else {
			s.byEntity[f.entity] = ids
		}
	}
	if state == stateCancelled {
		s.totals.Cancelled++
	} else {
		s.totals.Completed++
	}
	s.log.Debug("flow finished",
		zap.Uint64("task", uint64(f.id)),
		zap.Stringer("state", f.state),
		zap.Float64("now", s.clock.Now()),
	)
}

// Close cancels every remaining flow in id order and refuses new spawns.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	ids := make([]TaskID, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if f, ok := s.flows[id]; ok {
			s.cancel(f)
		}
	}
	s.spawned = nil
}
