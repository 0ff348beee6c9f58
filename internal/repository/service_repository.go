package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// ServiceRepo provides CRUD operations for the service catalog.
// The booking engine treats services as read-only input; mutation
// happens through admin endpoints. Withdrawing a service is the one
// operation with engine-visible side effects: every active
// appointment for the service is cancelled in the same transaction
// so the freed windows become claimable again.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *ServiceRepo) DB() *sql.DB { return r.db }

// Create inserts a new service and populates the generated ID and
// timestamps on the provided record. Status defaults to active when
// empty.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	if s.Status == "" {
		s.Status = model.ServiceActive
	}
	const q = `INSERT INTO services (name, description, category, base_price_cents, status) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Category, s.BasePriceCents, s.Status)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM services WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a single service. ErrNotFound is returned when no
// row exists for the given ID.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `SELECT id, name, description, category, base_price_cents, status, created_at, updated_at
	           FROM services WHERE id = ?`
	var s model.Service
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Category, &s.BasePriceCents, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActive returns all services currently open for booking,
// ordered by name for deterministic output.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	const q = `SELECT id, name, description, category, base_price_cents, status, created_at, updated_at
	           FROM services WHERE status = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, model.ServiceActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.BasePriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Update applies partial edits to a service. Nil pointers leave the
// corresponding column untouched. ErrNotFound is returned when the
// service does not exist.
func (r *ServiceRepo) Update(ctx context.Context, id uint64, name, description, status *string, basePriceCents *uint32) error {
	query := `UPDATE services SET updated_at = CURRENT_TIMESTAMP`
	args := make([]interface{}, 0, 5)
	if name != nil {
		query += `, name = ?`
		args = append(args, *name)
	}
	if description != nil {
		query += `, description = ?`
		args = append(args, *description)
	}
	if status != nil {
		query += `, status = ?`
		args = append(args, *status)
	}
	if basePriceCents != nil {
		query += `, base_price_cents = ?`
		args = append(args, *basePriceCents)
	}
	query += ` WHERE id = ?`
	args = append(args, id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Withdraw marks a service as withdrawn and cancels all of its
// active appointments in one transaction. It returns the number of
// appointments that were cancelled; withdrawing an already-withdrawn
// service is a no-op that returns zero. Freed windows no longer block
// new claims because the overlap check only considers reserved and
// confirmed rows.
func (r *ServiceRepo) Withdraw(ctx context.Context, id uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock the row and read its status first. An UPDATE affecting zero
	// rows cannot tell a missing service from one already withdrawn,
	// because MySQL reports only rows it actually changed.
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM services WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if status == model.ServiceWithdrawn {
		// Repeat withdrawal is a no-op, not an error.
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE services SET status = ? WHERE id = ?`, model.ServiceWithdrawn, id); err != nil {
		return 0, err
	}
	// Cascade: every appointment still holding the doctor's calendar
	// for this service is cancelled.
	statusIn, statusArgs := activeStatusIn()
	args := append([]interface{}{model.StatusCancelled, id}, statusArgs...)
	result, err := tx.ExecContext(ctx,
		`UPDATE appointments SET status = ? WHERE service_id = ? AND `+statusIn,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("cascade cancel appointments: %w", err)
	}
	cancelled, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return cancelled, nil
}
