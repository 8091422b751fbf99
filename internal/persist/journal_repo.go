package persist

import (
	"context"
	"fmt"
)

// JournalEntry is one creation-notification record. The journal is the
// durable trail of everything the registry ever announced; consumers read
// the pending entries and flip processed.
type JournalEntry struct {
	Seq      int64 // assigned by the store, zero on insert
	EntityID int64
	Name     string
	DNA      int64
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteBatch appends a batch of journal entries in a single transaction.
// All-or-nothing; a failed batch leaves no partial rows.
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
		if _, err := tx.Exec(ctx,
			`INSERT INTO creation_journal (entity_id, name, dna)
			 VALUES ($1, $2, $3)`,
			e.EntityID, e.Name, e.DNA,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadPending returns all unprocessed journal entries in sequence order.
func (r *JournalRepo) LoadPending(ctx context.Context) ([]JournalEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT seq, entity_id, name, dna FROM creation_journal
		 WHERE processed = FALSE ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Seq, &e.EntityID, &e.Name, &e.DNA); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkProcessed marks all pending journal entries as processed.
func (r *JournalRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE creation_journal SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
