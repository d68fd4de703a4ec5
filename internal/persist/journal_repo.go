package persist

import (
	"context"
	"fmt"
)

// Outcomes recorded in the journal.
const (
	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
)

// JournalEntry is one deferred-action outcome.
type JournalEntry struct {
	Step    uint64
	SimTime float64
	Action  string // "plant", ...
	Outcome string
	Entity  uint64
	Result  uint64 // 0 when the action produced nothing
	X, Y    int32
	Reason  string
}

type JournalRepo struct {
	db   *DB
	seed uint64
}

// NewJournalRepo writes entries tagged with the run's seed.
func NewJournalRepo(db *DB, seed uint64) *JournalRepo {
	return &JournalRepo{db: db, seed: seed}
}

// WriteBatch atomically writes a batch of entries in a single transaction.
func (r *JournalRepo) WriteBatch(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		var result *int64
		var x, y *int32
		var reason *string
		if e.Outcome == OutcomeCommitted {
			res := int64(e.Result)
			result, x, y = &res, &e.X, &e.Y
		} else {
			reason = &e.Reason
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO action_journal (run_seed, step, sim_time, action, outcome, entity, result, x, y, reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			int64(r.seed), int64(e.Step), e.SimTime, e.Action, e.Outcome, int64(e.Entity), result, x, y, reason,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

// CountRun returns how many entries the current run has written.
func (r *JournalRepo) CountRun(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM action_journal WHERE run_seed = $1`, int64(r.seed),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
