package event

import "github.com/odnodvorets/flowsim/internal/core/ecs"

// ActionCommitted is emitted when a deferred action survives its staleness
// check and takes effect.
type ActionCommitted struct {
	Action string
	Entity ecs.EntityID // entity the action was requested for
	Result ecs.EntityID // entity the action produced, if any
	X, Y   int32
	At     float64 // simulated time of the commit
}

// ActionAborted is emitted when a deferred action's premise went stale.
type ActionAborted struct {
	Action string
	Entity ecs.EntityID
	Reason string
	At     float64
}

// EntityDestroyed is emitted for every entity removed by the cleanup phase.
type EntityDestroyed struct {
	Entity ecs.EntityID
}

// Moved is emitted when a mover commits a grid step.
type Moved struct {
	Entity       ecs.EntityID
	FromX, FromY int32
	ToX, ToY     int32
}
