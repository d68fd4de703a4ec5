package ecs

// ComponentKind identifies one component store inside a World. Kinds are
// handed out in registration order.
type ComponentKind uint16

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// trackedStore is a Removable that remembers when each entity's component
// was last written.
type trackedStore interface {
	Removable
	Kind() ComponentKind
	Name() string
	writtenAt(id EntityID) (Epoch, bool)
}

// Store is a generic typed store for one component type. Entities are kept in
// a dense slice so iteration order is deterministic for a given history.
//
// Get is the immutable view and returns a copy. Mut and Set are the mutable
// views; both stamp the entity's last-written epoch, which is what
// World.WasModifiedSince reads.
type Store[T any] struct {
	world   *World
	kind    ComponentKind
	name    string
	data    map[EntityID]*T
	written map[EntityID]Epoch
	dense   []EntityID
	index   map[EntityID]int
}

// NewStore creates a store for T and registers it with w under a new kind.
func NewStore[T any](w *World, name string) *Store[T] {
	s := &Store[T]{
		world:   w,
		name:    name,
		data:    make(map[EntityID]*T, 256),
		written: make(map[EntityID]Epoch, 256),
		dense:   make([]EntityID, 0, 256),
		index:   make(map[EntityID]int, 256),
	}
	s.kind = w.registry.Register(s)
	return s
}

func (s *Store[T]) Kind() ComponentKind { return s.kind }
func (s *Store[T]) Name() string        { return s.name }

// Set inserts or replaces the component. Writes to dead entities are dropped.
func (s *Store[T]) Set(id EntityID, c T) {
	if !s.world.Alive(id) {
		return
	}
	if p, ok := s.data[id]; ok {
		*p = c
	} else {
		v := c
		s.data[id] = &v
		s.index[id] = len(s.dense)
		s.dense = append(s.dense, id)
	}
	s.written[id] = s.world.bump()
}

// Get returns a copy of the component.
func (s *Store[T]) Get(id EntityID) (T, bool) {
	p, ok := s.data[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// Mut returns a pointer to the component and marks it written.
func (s *Store[T]) Mut(id EntityID) (*T, bool) {
	p, ok := s.data[id]
	if !ok {
		return nil, false
	}
	s.written[id] = s.world.bump()
	return p, true
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[i] = moved
	s.index[moved] = i
	s.dense = s.dense[:last]
	delete(s.index, id)
	delete(s.data, id)
	delete(s.written, id)
	s.world.bump()
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.dense)
}

// Each visits every component read-only.
func (s *Store[T]) Each(fn func(EntityID, T)) {
	for _, id := range s.snapshot() {
		if p, ok := s.data[id]; ok {
			fn(id, *p)
		}
	}
}

// EachMut visits every component through the mutable view.
func (s *Store[T]) EachMut(fn func(EntityID, *T)) {
	for _, id := range s.snapshot() {
		if p, ok := s.data[id]; ok {
			s.written[id] = s.world.bump()
			fn(id, p)
		}
	}
}

// Entities returns a copy of the ids that currently hold T.
func (s *Store[T]) Entities() []EntityID {
	return s.snapshot()
}

// snapshot lets callbacks add or remove components while iterating.
func (s *Store[T]) snapshot() []EntityID {
	ids := make([]EntityID, len(s.dense))
	copy(ids, s.dense)
	return ids
}

func (s *Store[T]) writtenAt(id EntityID) (Epoch, bool) {
	e, ok := s.written[id]
	return e, ok
}
