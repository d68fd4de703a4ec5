package ecs

import "fmt"

// Epoch is the world's monotonic mutation counter. Every tracked mutation
// (entity creation, destruction, component write or removal) advances it.
// Tokens are only comparable through WasModifiedSince.
type Epoch uint64

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the parent/child relation, typed resources, and a deferred
// destruction queue flushed by CleanupSystem each step.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	epoch        Epoch

	parents  map[EntityID]EntityID
	children map[EntityID][]EntityID

	resources resources
	onDestroy []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		parents:      make(map[EntityID]EntityID),
		children:     make(map[EntityID][]EntityID),
		resources:    make(resources),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	id := w.pool.Create()
	w.bump()
	return id
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Epoch returns the current version token.
func (w *World) Epoch() Epoch {
	return w.epoch
}

func (w *World) bump() Epoch {
	w.epoch++
	return w.epoch
}

// WasModifiedSince reports whether component kind of entity id was written
// after token was captured. A dead entity or a missing component counts as
// modified: whatever premise depended on it no longer holds.
func (w *World) WasModifiedSince(id EntityID, kind ComponentKind, token Epoch) bool {
	store := w.registry.lookup(kind)
	if store == nil {
		panic(fmt.Sprintf("ecs: unknown component kind %d", kind))
	}
	if !w.Alive(id) {
		return true
	}
	at, ok := store.writtenAt(id)
	if !ok {
		return true
	}
	return at > token
}

// OnDestroy registers fn to run for every entity removed by FlushDestroyQueue.
// Hooks run after the entity is dead and its components are gone.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// MarkForDestruction queues an entity for end-of-step cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities queued for destruction.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and their descendants, clears
// their components and runs destroy hooks. Called by CleanupSystem at the end
// of each step. Returns the number of entities destroyed.
func (w *World) FlushDestroyQueue() int {
	destroyed := 0
	for i := 0; i < len(w.destroyQueue); i++ {
		id := w.destroyQueue[i]
		if !w.pool.Alive(id) {
			continue
		}
		// children are appended so the loop reaches them
		w.destroyQueue = append(w.destroyQueue, w.children[id]...)
		w.unlink(id)
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		w.bump()
		destroyed++
		for _, fn := range w.onDestroy {
			fn(id)
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}

// SetParent records child as a child of parent, replacing any earlier parent.
// Destroying the parent destroys the child.
func (w *World) SetParent(child, parent EntityID) {
	if !w.Alive(child) || !w.Alive(parent) {
		return
	}
	if old, ok := w.parents[child]; ok {
		w.detach(child, old)
	}
	w.parents[child] = parent
	w.children[parent] = append(w.children[parent], child)
	w.bump()
}

// Parent returns the parent of child, if any.
func (w *World) Parent(child EntityID) (EntityID, bool) {
	p, ok := w.parents[child]
	return p, ok
}

// Children returns a copy of the children of parent in insertion order.
func (w *World) Children(parent EntityID) []EntityID {
	kids := w.children[parent]
	out := make([]EntityID, len(kids))
	copy(out, kids)
	return out
}

func (w *World) unlink(id EntityID) {
	if p, ok := w.parents[id]; ok {
		w.detach(id, p)
	}
	delete(w.children, id)
}

func (w *World) detach(child, parent EntityID) {
	delete(w.parents, child)
	kids := w.children[parent]
	for i, k := range kids {
		if k == child {
			w.children[parent] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	if len(w.children[parent]) == 0 {
		delete(w.children, parent)
	}
}
