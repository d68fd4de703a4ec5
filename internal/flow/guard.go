package flow

import "github.com/odnodvorets/flowsim/internal/core/ecs"

// Premise records what a deferred action assumed about one component of one
// entity when it was requested. After sleeping, the action checks Stale and
// silently does nothing if the premise no longer holds. Writers are never
// blocked; a late writer simply wins.
type Premise struct {
	Entity ecs.EntityID
	Kind   ecs.ComponentKind
	Token  ecs.Epoch
}

// Capture takes the world's current epoch as the premise token. Capture it
// together with a by-value snapshot of the data the action will need.
func Capture(w *ecs.World, e ecs.EntityID, kind ecs.ComponentKind) Premise {
	return Premise{Entity: e, Kind: kind, Token: w.Epoch()}
}

// Stale reports whether the component was written, removed, or its entity
// destroyed since the premise was captured.
func (p Premise) Stale(w *ecs.World) bool {
	return w.WasModifiedSince(p.Entity, p.Kind, p.Token)
}

// Defer runs the whole protocol from inside a flow for a single component:
// snapshot it, sleep for delay, then call commit with the snapshot unless the
// component changed meanwhile. It reports whether commit ran.
func Defer[T any](f *Flow, store *ecs.Store[T], e ecs.EntityID, delay float64, commit func(T)) bool {
	snapshot, ok := store.Get(e)
	if !ok {
		return false
	}
	premise := Capture(f.World(), e, store.Kind())
	f.SleepFor(delay)
	if premise.Stale(f.World()) {
		return false
	}
	commit(snapshot)
	return true
}
