package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/persist"
)

// JournalWriter stores a batch of action outcomes atomically
// (persist.JournalRepo in production).
type JournalWriter interface {
	WriteBatch(ctx context.Context, entries []persist.JournalEntry) error
}

// JournalSystem buffers deferred-action outcomes and flushes them every
// interval steps. Phase 4 (Persist).
//
// A failed batch stays buffered and is retried with the next flush.
type JournalSystem struct {
	repo      JournalWriter
	log       *zap.Logger
	pending   []persist.JournalEntry
	tickCount int
	interval  int
	step      uint64
	written   int
}

func NewJournalSystem(repo JournalWriter, bus *event.Bus, intervalSteps int, log *zap.Logger) *JournalSystem {
	if intervalSteps < 1 {
		intervalSteps = 1
	}
	s := &JournalSystem{repo: repo, log: log, interval: intervalSteps}
	event.Subscribe(bus, func(ev event.ActionCommitted) {
		s.pending = append(s.pending, persist.JournalEntry{
			Step:    s.step,
			SimTime: ev.At,
			Action:  ev.Action,
			Outcome: persist.OutcomeCommitted,
			Entity:  uint64(ev.Entity),
			Result:  uint64(ev.Result),
			X:       ev.X,
			Y:       ev.Y,
		})
	})
	event.Subscribe(bus, func(ev event.ActionAborted) {
		s.pending = append(s.pending, persist.JournalEntry{
			Step:    s.step,
			SimTime: ev.At,
			Action:  ev.Action,
			Outcome: persist.OutcomeAborted,
			Entity:  uint64(ev.Entity),
			Reason:  ev.Reason,
		})
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ float64) {
	s.step++
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.flush()
}

// Flush writes everything still buffered. Called for graceful shutdown.
func (s *JournalSystem) Flush() {
	s.flush()
}

// Written returns how many entries reached the writer.
func (s *JournalSystem) Written() int { return s.written }

// Pending returns how many entries wait for the next flush.
func (s *JournalSystem) Pending() int { return len(s.pending) }

func (s *JournalSystem) flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.WriteBatch(ctx, s.pending); err != nil {
		s.log.Error("journal flush failed", zap.Int("entries", len(s.pending)), zap.Error(err))
		return
	}
	s.written += len(s.pending)
	s.log.Debug("journal flushed", zap.Int("entries", len(s.pending)))
	s.pending = s.pending[:0]
}
