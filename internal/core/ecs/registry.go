package ecs

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []trackedStore
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]trackedStore, 0, 16),
	}
}

// Register adds a component store to the registry and returns its kind.
func (r *Registry) Register(store trackedStore) ComponentKind {
	r.stores = append(r.stores, store)
	return ComponentKind(len(r.stores) - 1)
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

func (r *Registry) lookup(kind ComponentKind) trackedStore {
	if int(kind) >= len(r.stores) {
		return nil
	}
	return r.stores[kind]
}

// Names lists store names in kind order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.stores))
	for i, s := range r.stores {
		names[i] = s.Name()
	}
	return names
}
