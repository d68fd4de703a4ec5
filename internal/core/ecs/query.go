package ecs

// Each2 iterates over entities that have both component A and B, passing
// copies. It walks the smaller store and checks the larger one. Writes must
// go through Store.Mut or Store.Set so staleness checks see them.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, A, B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.snapshot() {
			if a, ok := sa.data[id]; ok {
				if b, ok := sb.data[id]; ok {
					fn(id, *a, *b)
				}
			}
		}
		return
	}
	for _, id := range sb.snapshot() {
		if b, ok := sb.data[id]; ok {
			if a, ok := sa.data[id]; ok {
				fn(id, *a, *b)
			}
		}
	}
}
