package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// AppointmentRepo provides data access to the appointments table.
// TryClaim is the single exclusivity-critical operation of the whole
// platform: the overlap check and the insert execute in one InnoDB
// transaction, with the doctor's time range locked through the
// (doctor_id, starts_at, ends_at) index, so that two concurrent
// claims on overlapping windows serialize and exactly one wins. All
// timestamps are stored and compared in UTC.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// activeStatusIn expands model.ActiveStatuses into an IN clause and
// its arguments, so every query that means "still holds the calendar"
// stays in sync with the status model.
func activeStatusIn() (string, []interface{}) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(model.ActiveStatuses)), ",")
	args := make([]interface{}, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		args[i] = s
	}
	return `status IN (` + placeholders + `)`, args
}

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *AppointmentRepo) DB() *sql.DB { return r.db }

// Claim carries everything TryClaim needs to reserve one concrete
// window. TTL is ignored when Permanent is set; otherwise a zero TTL
// falls back to the caller's default before reaching the repository.
type Claim struct {
	DoctorID    uint64
	PatientID   uint64
	ServiceID   uint64
	StartsAt    time.Time
	EndsAt      time.Time
	ChargeCents uint32
	TTL         time.Duration
	Permanent   bool
}

// TryClaim atomically checks the doctor's calendar for a conflicting
// active appointment and, when the window is free, inserts a new
// reservation. It returns (nil, nil) when the slot is already taken:
// losing a claim is a normal outcome and the caller's search simply
// moves on to the next candidate. A non-nil error means the
// transaction itself failed; callers treat that as a non-claim too,
// the transaction is rolled back and no partial state survives.
// Only a successfully committed insert yields a non-nil appointment.
//
// Permanent claims are created directly in confirmed status with no
// expiry; everything else starts as a reserved hold that lapses at
// now+TTL unless confirmed first.
func (r *AppointmentRepo) TryClaim(ctx context.Context, c Claim) (*model.Appointment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Overlap test on the half-open range [starts_at, ends_at):
	// existing.start < end AND existing.end > start. FOR UPDATE takes
	// next-key locks on the scanned index range, which is what keeps
	// a concurrent claim from inserting into the same gap before we
	// commit. LIMIT 2 lets us spot an invariant breach without
	// scanning the whole day.
	statusIn, statusArgs := activeStatusIn()
	overlapQ := `SELECT id FROM appointments
	             WHERE doctor_id = ? AND ` + statusIn + `
	               AND starts_at < ? AND ends_at > ?
	             LIMIT 2 FOR UPDATE`
	args := append([]interface{}{c.DoctorID}, statusArgs...)
	args = append(args, c.EndsAt.UTC(), c.StartsAt.UTC())
	rows, err := tx.QueryContext(ctx, overlapQ, args...)
	if err != nil {
		return nil, err
	}
	var conflicts []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		conflicts = append(conflicts, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(conflicts) > 1 {
		// Two active appointments already overlap each other: the
		// exclusivity guarantee was broken upstream. Never repair
		// silently; surface it for an operator.
		log.Printf("integrity: overlapping active appointments for doctor=%d ids=%v window=[%s,%s)",
			c.DoctorID, conflicts, c.StartsAt.UTC().Format(time.RFC3339), c.EndsAt.UTC().Format(time.RFC3339))
	}
	if len(conflicts) > 0 {
		return nil, nil
	}
	status := model.StatusReserved
	var expiresAt interface{}
	if c.Permanent {
		status = model.StatusConfirmed
	} else {
		expiresAt = time.Now().UTC().Add(c.TTL).Format("2006-01-02 15:04:05")
	}
	const ins = `INSERT INTO appointments
	             (doctor_id, patient_id, service_id, starts_at, ends_at, charge_cents, status, reservation_expires_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		c.DoctorID, c.PatientID, c.ServiceID,
		c.StartsAt.UTC().Format("2006-01-02 15:04:05"), c.EndsAt.UTC().Format("2006-01-02 15:04:05"),
		c.ChargeCents, status, expiresAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	appt, err := getByIDTx(ctx, tx, uint64(id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return appt, nil
}

const apptColumns = `id, doctor_id, patient_id, service_id, starts_at, ends_at, charge_cents, status, reservation_expires_at, created_at, updated_at`

// GetByID returns a single appointment or ErrNotFound.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (*model.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = ?`, id)
	appt, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return appt, err
}

func getByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Appointment, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = ?`, id)
	return scanAppointment(row)
}

// rowScanner lets scanAppointment work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*model.Appointment, error) {
	var a model.Appointment
	var expires sql.NullTime
	err := row.Scan(
		&a.ID, &a.DoctorID, &a.PatientID, &a.ServiceID,
		&a.StartsAt, &a.EndsAt, &a.ChargeCents, &a.Status,
		&expires, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time.UTC()
		a.ReservationExpiresAt = &t
	}
	return &a, nil
}

// UpdateStatusFrom transitions an appointment to a new status only
// when its current status is one of the allowed source states. It
// returns ErrNotFound when the appointment does not exist and
// ErrConflict when it exists but is not in an allowed state – the
// guard and the update are a single statement, so a racing
// transition cannot slip between check and write.
func (r *AppointmentRepo) UpdateStatusFrom(ctx context.Context, id uint64, to string, from ...string) error {
	if len(from) == 0 {
		return ErrConflict
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := make([]interface{}, 0, len(from)+2)
	args = append(args, to, id)
	for _, s := range from {
		args = append(args, s)
	}
	query := `UPDATE appointments SET status = ? WHERE id = ? AND status IN (` + placeholders + `)`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from an illegal transition.
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM appointments WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ExpireOverdue flips every reserved appointment whose hold deadline
// has passed to expired and returns how many rows changed. The
// update is idempotent – re-running it is harmless – and it may run
// concurrently with new claims because an expired row no longer
// matches the claim-time overlap check.
func (r *AppointmentRepo) ExpireOverdue(ctx context.Context) (int64, error) {
	const q = `UPDATE appointments SET status = ?
	           WHERE status = ? AND reservation_expires_at IS NOT NULL AND reservation_expires_at <= UTC_TIMESTAMP()`
	result, err := r.db.ExecContext(ctx, q, model.StatusExpired, model.StatusReserved)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListByPatient returns a patient's appointments newest-first.
func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID uint64) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments WHERE patient_id = ? ORDER BY starts_at DESC`
	rows, err := r.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListFilter narrows the admin appointment listing. Zero values mean
// "no filter". Page is 1-based; PerPage caps the page size.
type ListFilter struct {
	DoctorID  uint64
	ServiceID uint64
	Status    string
	From      time.Time
	To        time.Time
	Page      int
	PerPage   int
}

// List returns appointments matching the filter plus the total count
// for pagination, ordered by start time descending.
func (r *AppointmentRepo) List(ctx context.Context, f ListFilter) ([]model.Appointment, int64, error) {
	where := ` WHERE 1=1`
	args := make([]interface{}, 0, 6)
	if f.DoctorID != 0 {
		where += ` AND doctor_id = ?`
		args = append(args, f.DoctorID)
	}
	if f.ServiceID != 0 {
		where += ` AND service_id = ?`
		args = append(args, f.ServiceID)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if !f.From.IsZero() {
		where += ` AND starts_at >= ?`
		args = append(args, f.From.UTC().Format("2006-01-02 15:04:05"))
	}
	if !f.To.IsZero() {
		where += ` AND starts_at <= ?`
		args = append(args, f.To.UTC().Format("2006-01-02 15:04:05"))
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	query := `SELECT ` + apptColumns + ` FROM appointments` + where + ` ORDER BY starts_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// ActiveInRange returns a doctor's reserved and confirmed
// appointments intersecting [from, to), ordered by start time. The
// schedule view uses this to mark windows booked or free.
func (r *AppointmentRepo) ActiveInRange(ctx context.Context, doctorID, serviceID uint64, from, to time.Time) ([]model.Appointment, error) {
	statusIn, statusArgs := activeStatusIn()
	q := `SELECT ` + apptColumns + ` FROM appointments
	      WHERE doctor_id = ? AND service_id = ? AND ` + statusIn + `
	        AND starts_at < ? AND ends_at > ?
	      ORDER BY starts_at`
	args := append([]interface{}{doctorID, serviceID}, statusArgs...)
	args = append(args, to.UTC().Format("2006-01-02 15:04:05"), from.UTC().Format("2006-01-02 15:04:05"))
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows *sql.Rows) ([]model.Appointment, error) {
	appts := make([]model.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}
