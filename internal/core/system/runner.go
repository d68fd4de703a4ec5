package system

import (
	"fmt"
	"sort"
)

// Runner executes systems in phase order each step. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	steps   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs one simulation step. A negative dt is a caller bug.
func (r *Runner) Tick(dt float64) {
	if dt < 0 {
		panic(fmt.Sprintf("system: negative frame delta %v", dt))
	}
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.steps++
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt float64) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Steps returns how many full steps have run.
func (r *Runner) Steps() uint64 { return r.steps }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
