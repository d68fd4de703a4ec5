package system

import (
	"math/rand/v2"

	"github.com/odnodvorets/flowsim/internal/component"
	"github.com/odnodvorets/flowsim/internal/core/ecs"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/mathx"
)

// RepeatChance is the probability that an idle brain keeps its last heading.
const RepeatChance = 0.75

// BrainSystem picks a new heading for every idle mover that has a Brain.
// Phase 2 (Update), after MoverSystem so a finished move is followed by a new
// request in the same step.
//
// Each brain draws from its own PCG stream seeded from (world seed, entity),
// so a run is reproducible regardless of spawn order.
type BrainSystem struct {
	world  *ecs.World
	brains *ecs.Store[component.Brain]
	movers *ecs.Store[component.Mover]
	mover  *MoverSystem
	seed   uint64
	rngs   map[ecs.EntityID]*rand.Rand
}

func NewBrainSystem(world *ecs.World, brains *ecs.Store[component.Brain], movers *ecs.Store[component.Mover], mover *MoverSystem, seed uint64) *BrainSystem {
	s := &BrainSystem{
		world:  world,
		brains: brains,
		movers: movers,
		mover:  mover,
		seed:   seed,
		rngs:   make(map[ecs.EntityID]*rand.Rand),
	}
	world.OnDestroy(func(e ecs.EntityID) { delete(s.rngs, e) })
	return s
}

func (s *BrainSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BrainSystem) Update(_ float64) {
	for _, e := range s.brains.Entities() {
		m, ok := s.movers.Get(e)
		if !ok || !m.Idle() {
			continue
		}
		b, _ := s.brains.Mut(e)
		b.Last, _ = ChooseDirection(s.rng(e), b.Last)
		s.mover.Request(e, b.Last)
	}
}

func (s *BrainSystem) rng(e ecs.EntityID) *rand.Rand {
	r, ok := s.rngs[e]
	if !ok {
		r = mathx.NewRand(s.seed, uint64(e))
		s.rngs[e] = r
	}
	return r
}

// ChooseDirection repeats last with probability RepeatChance, otherwise
// picks uniformly among the four headings (which may pick last again).
// repeated reports which branch was taken. A brain with no last heading
// always picks uniformly.
func ChooseDirection(r *rand.Rand, last component.Direction) (d component.Direction, repeated bool) {
	if last != component.DirNone && r.Float64() < RepeatChance {
		return last, true
	}
	return component.Directions[r.IntN(len(component.Directions))], false
}
