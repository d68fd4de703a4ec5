package system

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/core/event"
	"github.com/odnodvorets/flowsim/internal/persist"
)

type fakeJournal struct {
	batches [][]persist.JournalEntry
	fail    bool
}

func (f *fakeJournal) WriteBatch(_ context.Context, entries []persist.JournalEntry) error {
	if f.fail {
		return errors.New("db down")
	}
	f.batches = append(f.batches, append([]persist.JournalEntry(nil), entries...))
	return nil
}

func TestJournalFlushesEveryInterval(t *testing.T) {
	bus := event.NewBus()
	repo := &fakeJournal{}
	js := NewJournalSystem(repo, bus, 2, zap.NewNop())

	event.Emit(bus, event.ActionCommitted{Action: ActionPlant, Entity: 1, Result: 2, X: 3, Y: 4, At: 10})
	event.Emit(bus, event.ActionAborted{Action: ActionPlant, Entity: 5, Reason: ReasonOwnerMoved, At: 11})
	bus.SwapBuffers()
	bus.DispatchAll()

	js.Update(1)
	if len(repo.batches) != 0 || js.Pending() != 2 {
		t.Fatalf("flushed early: batches=%d pending=%d", len(repo.batches), js.Pending())
	}
	js.Update(1)
	if len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("batches = %+v", repo.batches)
	}
	got := repo.batches[0]
	if got[0].Outcome != persist.OutcomeCommitted || got[0].Result != 2 || got[0].X != 3 {
		t.Errorf("commit entry = %+v", got[0])
	}
	if got[1].Outcome != persist.OutcomeAborted || got[1].Reason != ReasonOwnerMoved {
		t.Errorf("abort entry = %+v", got[1])
	}
	if js.Written() != 2 || js.Pending() != 0 {
		t.Errorf("Written() = %d Pending() = %d", js.Written(), js.Pending())
	}
}

func TestJournalKeepsFailedBatch(t *testing.T) {
	bus := event.NewBus()
	repo := &fakeJournal{fail: true}
	js := NewJournalSystem(repo, bus, 1, zap.NewNop())

	event.Emit(bus, event.ActionAborted{Action: ActionPlant, Entity: 1, Reason: ReasonOwnerGone})
	bus.SwapBuffers()
	bus.DispatchAll()

	js.Update(1)
	if js.Pending() != 1 || js.Written() != 0 {
		t.Fatalf("failed flush: pending=%d written=%d", js.Pending(), js.Written())
	}
	repo.fail = false
	js.Flush()
	if js.Pending() != 0 || len(repo.batches) != 1 {
		t.Errorf("retry: pending=%d batches=%d", js.Pending(), len(repo.batches))
	}
}
