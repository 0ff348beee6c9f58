package repository

import (
	"context"
	"database/sql"
)

// CounterRepo backs the fairness rotation with a per-service counter
// in the service_counters table. The increment is a single atomic
// statement, so every serving process sees one strictly increasing
// sequence per service and the rotation survives restarts – an
// in-process counter would reset on every deploy and diverge across
// horizontally scaled instances, which is exactly the bug this table
// exists to avoid.
type CounterRepo struct {
	db *sql.DB
}

// NewCounterRepo returns a new CounterRepo bound to the given database.
func NewCounterRepo(db *sql.DB) *CounterRepo { return &CounterRepo{db: db} }

// Next increments and returns the counter for a service, creating
// the row on first use. LAST_INSERT_ID(expr) makes the incremented
// value readable from the same round trip without a second query,
// and the whole upsert is atomic under InnoDB.
func (r *CounterRepo) Next(ctx context.Context, serviceID uint64) (uint64, error) {
	const q = `INSERT INTO service_counters (service_id, counter) VALUES (?, LAST_INSERT_ID(1))
	           ON DUPLICATE KEY UPDATE counter = LAST_INSERT_ID(counter + 1)`
	result, err := r.db.ExecContext(ctx, q, serviceID)
	if err != nil {
		return 0, err
	}
	n, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}
