package persist

import (
	"context"
	"fmt"
	"time"
)

// EntityRow mirrors one row of the append-only entities table. id is the
// registry identifier; rows are never updated or deleted.
type EntityRow struct {
	ID        int64
	Name      string
	DNA       int64
	CreatedAt time.Time
}

type EntityRepo struct {
	db *DB
}

func NewEntityRepo(db *DB) *EntityRepo {
	return &EntityRepo{db: db}
}

// InsertBatch writes a batch of newly created entities in a single
// transaction. All-or-nothing: a failed batch leaves no partial rows.
func (r *EntityRepo) InsertBatch(ctx context.Context, rows []EntityRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("entities begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entities (id, name, dna) VALUES ($1, $2, $3)`,
			e.ID, e.Name, e.DNA,
		); err != nil {
			return fmt.Errorf("entities insert id=%d: %w", e.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadAll returns every stored entity in identifier order, for rebuilding
// the in-memory registry at boot.
func (r *EntityRepo) LoadAll(ctx context.Context) ([]EntityRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, dna, created_at FROM entities ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("entities query: %w", err)
	}
	defer rows.Close()

	var out []EntityRow
	for rows.Next() {
		var e EntityRow
		if err := rows.Scan(&e.ID, &e.Name, &e.DNA, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("entities scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entities.
func (r *EntityRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM entities`).Scan(&n)
	return n, err
}
