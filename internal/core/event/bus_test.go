package event

import (
	"testing"

	"github.com/odnodvorets/flowsim/internal/core/ecs"
)

func TestBusDeliversNextStep(t *testing.T) {
	b := NewBus()
	var got []ActionCommitted
	Subscribe(b, func(ev ActionCommitted) { got = append(got, ev) })

	Emit(b, ActionCommitted{Action: "plant", X: 5, Y: 5})
	if b.Queued() != 1 {
		t.Fatalf("Queued() = %d, want 1", b.Queued())
	}
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatalf("events must not be visible before a swap, delivered %d", n)
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 1 {
		t.Errorf("DispatchAll() = %d, want 1", n)
	}
	if len(got) != 1 || got[0].X != 5 {
		t.Errorf("handler got %v", got)
	}

	// next swap clears the delivered batch
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Errorf("event delivered twice: %v", got)
	}
}

func TestBusKeepsTypesApart(t *testing.T) {
	b := NewBus()
	var commits, aborts, destroyed int
	Subscribe(b, func(ActionCommitted) { commits++ })
	Subscribe(b, func(ActionAborted) { aborts++ })
	Subscribe(b, func(EntityDestroyed) { destroyed++ })

	Emit(b, ActionAborted{Action: "plant", Reason: "stale"})
	Emit(b, ActionAborted{Action: "plant", Reason: "stale"})
	Emit(b, EntityDestroyed{Entity: ecs.NewEntityID(3, 1)})
	b.SwapBuffers()
	b.DispatchAll()

	if commits != 0 || aborts != 2 || destroyed != 1 {
		t.Errorf("commits=%d aborts=%d destroyed=%d, want 0 2 1", commits, aborts, destroyed)
	}
}
