package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// ScheduleRepo provides data access to a doctor's availability: the
// services the doctor offers (doctor_services) and the weekly
// recurring slot templates (slot_templates). The booking engine only
// reads this data; administrative endpoints mutate it. The
// same-service overlap invariant for templates is enforced here at
// creation time, inside a transaction, so the engine never has to
// re-check it.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// AssignService records that a doctor offers a service with the
// given default charge and populates the generated ID on the
// assignment. ErrConflict is returned when the assignment already
// exists.
func (r *ScheduleRepo) AssignService(ctx context.Context, ds *model.DoctorService) error {
	const check = `SELECT id FROM doctor_services WHERE doctor_id = ? AND service_id = ?`
	var existing uint64
	err := r.db.QueryRowContext(ctx, check, ds.DoctorID, ds.ServiceID).Scan(&existing)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	const q = `INSERT INTO doctor_services (doctor_id, service_id, charge_cents) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, ds.DoctorID, ds.ServiceID, ds.ChargeCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ds.ID = uint64(id)
	return nil
}

// RemoveService deletes a doctor's service assignment. Templates for
// the pair are removed as well so the doctor stops qualifying for
// the service entirely. ErrNotFound is returned when no assignment
// exists.
func (r *ScheduleRepo) RemoveService(ctx context.Context, doctorID, serviceID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	result, err := tx.ExecContext(ctx, `DELETE FROM doctor_services WHERE doctor_id = ? AND service_id = ?`, doctorID, serviceID)
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM slot_templates WHERE doctor_id = ? AND service_id = ?`, doctorID, serviceID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// AddTemplate inserts a weekly slot template after validating it
// against the overlap invariant: within one weekday no two templates
// for the same service may overlap. The check and the insert run in
// one transaction with the doctor's existing rows locked so that two
// concurrent AddTemplate calls cannot both pass validation.
// ErrConflict is returned for overlapping windows, ErrNotFound when
// the doctor does not offer the service.
func (r *ScheduleRepo) AddTemplate(ctx context.Context, t *model.SlotTemplate) error {
	if t.StartMin >= t.EndMin {
		return fmt.Errorf("%w: template start must precede end", ErrConflict)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// The service must be assigned to the doctor first; the
	// assignment also supplies the default charge used when the
	// template itself carries none.
	var assigned uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM doctor_services WHERE doctor_id = ? AND service_id = ? FOR UPDATE`,
		t.DoctorID, t.ServiceID,
	).Scan(&assigned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	// Lock every existing window for this doctor/service/weekday and
	// test overlap in one place. Locking the whole set, not just a
	// first clash, keeps two concurrent inserts serialized on the
	// same rows.
	const windowsQ = `SELECT start_min, end_min FROM slot_templates
	                  WHERE doctor_id = ? AND service_id = ? AND weekday = ?
	                  FOR UPDATE`
	rows, err := tx.QueryContext(ctx, windowsQ, t.DoctorID, t.ServiceID, int(t.Weekday))
	if err != nil {
		return err
	}
	for rows.Next() {
		var existing model.SlotTemplate
		if err := rows.Scan(&existing.StartMin, &existing.EndMin); err != nil {
			rows.Close()
			return err
		}
		if t.Overlaps(existing) {
			rows.Close()
			return ErrConflict
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	const ins = `INSERT INTO slot_templates (doctor_id, service_id, weekday, start_min, end_min, charge_cents)
	             VALUES (?, ?, ?, ?, ?, ?)`
	var charge interface{}
	if t.ChargeCents != nil {
		charge = *t.ChargeCents
	}
	result, err := tx.ExecContext(ctx, ins, t.DoctorID, t.ServiceID, int(t.Weekday), t.StartMin, t.EndMin, charge)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteTemplate removes a single slot template owned by the given
// doctor. ErrNotFound is returned when no matching row exists.
func (r *ScheduleRepo) DeleteTemplate(ctx context.Context, doctorID, templateID uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM slot_templates WHERE id = ? AND doctor_id = ?`, templateID, doctorID)
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

// TemplatesForDoctor returns all of a doctor's templates for one
// service ordered by weekday and start time. Used by the schedule
// view endpoint.
func (r *ScheduleRepo) TemplatesForDoctor(ctx context.Context, doctorID, serviceID uint64) ([]model.SlotTemplate, error) {
	const q = `SELECT id, doctor_id, service_id, weekday, start_min, end_min, charge_cents, created_at
	           FROM slot_templates
	           WHERE doctor_id = ? AND service_id = ?
	           ORDER BY weekday, start_min`
	rows, err := r.db.QueryContext(ctx, q, doctorID, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// ProvidersForService returns every doctor qualifying for the
// service – listed in doctor_services or owning at least one slot
// template for it – together with the doctor-level default charge
// and the service's templates grouped by weekday. Doctors are
// ordered by ID so the fairness rotation starts from a stable base
// order. An empty slice is a normal outcome, not an error.
func (r *ScheduleRepo) ProvidersForService(ctx context.Context, serviceID uint64) ([]model.ProviderOffering, error) {
	// Union of assignment-level and template-level qualification.
	const docQ = `SELECT d.doctor_id, COALESCE(ds.charge_cents, 0)
	              FROM (
	                    SELECT doctor_id FROM doctor_services WHERE service_id = ?
	                    UNION
	                    SELECT doctor_id FROM slot_templates WHERE service_id = ?
	              ) d
	              LEFT JOIN doctor_services ds ON ds.doctor_id = d.doctor_id AND ds.service_id = ?
	              ORDER BY d.doctor_id`
	rows, err := r.db.QueryContext(ctx, docQ, serviceID, serviceID, serviceID)
	if err != nil {
		return nil, err
	}
	providers := make([]model.ProviderOffering, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var p model.ProviderOffering
		if err := rows.Scan(&p.DoctorID, &p.DefaultChargeCents); err != nil {
			rows.Close()
			return nil, err
		}
		p.Templates = make(map[time.Weekday][]model.SlotTemplate)
		index[p.DoctorID] = len(providers)
		providers = append(providers, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return providers, nil
	}
	const tplQ = `SELECT id, doctor_id, service_id, weekday, start_min, end_min, charge_cents, created_at
	              FROM slot_templates
	              WHERE service_id = ?
	              ORDER BY doctor_id, weekday, start_min`
	trows, err := r.db.QueryContext(ctx, tplQ, serviceID)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	templates, err := scanTemplates(trows)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		idx, ok := index[t.DoctorID]
		if !ok {
			continue
		}
		providers[idx].Templates[t.Weekday] = append(providers[idx].Templates[t.Weekday], t)
	}
	return providers, nil
}

// scanTemplates reads slot_template rows into models, mapping the
// nullable charge column onto a pointer.
func scanTemplates(rows *sql.Rows) ([]model.SlotTemplate, error) {
	templates := make([]model.SlotTemplate, 0)
	for rows.Next() {
		var t model.SlotTemplate
		var weekday int
		var charge sql.NullInt64
		if err := rows.Scan(&t.ID, &t.DoctorID, &t.ServiceID, &weekday, &t.StartMin, &t.EndMin, &charge, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Weekday = time.Weekday(weekday)
		if charge.Valid {
			c := uint32(charge.Int64)
			t.ChargeCents = &c
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
