package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

func newMockRepo(t *testing.T) (*AppointmentRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAppointmentRepo(db), mock
}

func apptRows(id uint64, start, end time.Time, status string, expires *time.Time) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "doctor_id", "patient_id", "service_id", "starts_at", "ends_at",
		"charge_cents", "status", "reservation_expires_at", "created_at", "updated_at",
	})
	var exp interface{}
	if expires != nil {
		exp = *expires
	}
	now := time.Now().UTC()
	rows.AddRow(id, 1, 7, 10, start, end, 5000, status, exp, now, now)
	return rows
}

func TestTryClaimInsertsWhenWindowFree(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	expires := time.Now().UTC().Add(10 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT id, doctor_id, patient_id").
		WithArgs(uint64(42)).
		WillReturnRows(apptRows(42, start, end, model.StatusReserved, &expires))
	mock.ExpectCommit()

	appt, err := repo.TryClaim(context.Background(), Claim{
		DoctorID: 1, PatientID: 7, ServiceID: 10,
		StartsAt: start, EndsAt: end, ChargeCents: 5000,
		TTL: 10 * time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, appt)
	assert.Equal(t, uint64(42), appt.ID)
	assert.Equal(t, model.StatusReserved, appt.Status)
	require.NotNil(t, appt.ReservationExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaimLosesToExistingAppointment(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectRollback()

	appt, err := repo.TryClaim(context.Background(), Claim{
		DoctorID: 1, PatientID: 7, ServiceID: 10,
		StartsAt: start, EndsAt: start.Add(30 * time.Minute),
		TTL: 10 * time.Minute,
	})
	require.NoError(t, err)
	assert.Nil(t, appt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaimSecondClaimantLosesWindow(t *testing.T) {
	// Two claims on the same window, back to back: the first finds the
	// range empty and commits; the second's overlap scan sees the row
	// the first just inserted and backs off without writing anything.
	// Against live InnoDB the second transaction would block on the
	// range lock until the first commits, then observe exactly this.
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	expires := time.Now().UTC().Add(10 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT id, doctor_id, patient_id").
		WithArgs(uint64(42)).
		WillReturnRows(apptRows(42, start, end, model.StatusReserved, &expires))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectRollback()

	claim := Claim{
		DoctorID: 1, PatientID: 7, ServiceID: 10,
		StartsAt: start, EndsAt: end, ChargeCents: 5000,
		TTL: 10 * time.Minute,
	}
	winner, err := repo.TryClaim(context.Background(), claim)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, uint64(42), winner.ID)

	claim.PatientID = 8
	loser, err := repo.TryClaim(context.Background(), claim)
	require.NoError(t, err)
	assert.Nil(t, loser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaimPermanentInsertsConfirmed(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(uint64(1), uint64(7), uint64(10),
			start.Format("2006-01-02 15:04:05"), end.Format("2006-01-02 15:04:05"),
			uint32(5000), model.StatusConfirmed, nil).
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectQuery("SELECT id, doctor_id, patient_id").
		WillReturnRows(apptRows(43, start, end, model.StatusConfirmed, nil))
	mock.ExpectCommit()

	appt, err := repo.TryClaim(context.Background(), Claim{
		DoctorID: 1, PatientID: 7, ServiceID: 10,
		StartsAt: start, EndsAt: end, ChargeCents: 5000,
		Permanent: true,
	})
	require.NoError(t, err)
	require.NotNil(t, appt)
	assert.Equal(t, model.StatusConfirmed, appt.Status)
	assert.Nil(t, appt.ReservationExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromGuardedTransition(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(model.StatusConfirmed, uint64(9), model.StatusReserved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusFrom(context.Background(), 9, model.StatusConfirmed, model.StatusReserved)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromWrongState(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM appointments").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.StatusExpired))

	err := repo.UpdateStatusFrom(context.Background(), 9, model.StatusConfirmed, model.StatusReserved)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	err := repo.UpdateStatusFrom(context.Background(), 9, model.StatusConfirmed, model.StatusReserved)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOverdue(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(model.StatusExpired, model.StatusReserved).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
