package component

import "github.com/odnodvorets/flowsim/internal/core/ecs"

// Plant is a crop growing through stages. Planted is the simulated time it
// was created.
type Plant struct {
	Stage   int
	Planted float64
}

// PlanJob marks a pending plant request. The entity is a child of Owner and
// carries the target Position.
type PlanJob struct {
	Owner  ecs.EntityID
	Target Position
}

// Kind tags an entity with its spawn-list kind ("player", "hare", ...).
type Kind struct {
	Name string
}
