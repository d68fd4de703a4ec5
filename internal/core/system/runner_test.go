package system

import (
	"reflect"
	"testing"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(float64) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"mover", PhaseUpdate, &log})
	r.Register(recorder{"brain", PhaseUpdate, &log})
	r.Register(recorder{"flows", PhaseFlows, &log})
	r.Register(recorder{"planter", PhaseUpdate, &log})

	r.Tick(16)

	want := []string{"flows", "mover", "brain", "planter", "cleanup"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("order = %v, want %v", log, want)
	}
	if r.Steps() != 1 {
		t.Errorf("Steps() = %d, want 1", r.Steps())
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"mover", PhaseUpdate, &log})
	r.Register(recorder{"flows", PhaseFlows, &log})

	r.TickPhase(PhaseFlows, 1)
	if !reflect.DeepEqual(log, []string{"flows"}) {
		t.Errorf("TickPhase ran %v", log)
	}
	if r.Steps() != 0 {
		t.Error("TickPhase must not count as a full step")
	}
}

func TestRunnerRejectsNegativeDelta(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("negative delta should panic")
		}
	}()
	NewRunner().Tick(-1)
}

func TestPhaseString(t *testing.T) {
	if PhaseFlows.String() != "flows" || PhaseCleanup.String() != "cleanup" {
		t.Errorf("unexpected names %q %q", PhaseFlows, PhaseCleanup)
	}
	if Phase(42).String() != "unknown" {
		t.Error("out of range phase should be unknown")
	}
}
