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

func newMockScheduleRepo(t *testing.T) (*ScheduleRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScheduleRepo(db), mock
}

func TestAssignServicePopulatesID(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO doctor_services").
		WithArgs(uint64(1), uint64(10), uint32(5000)).
		WillReturnResult(sqlmock.NewResult(42, 1))

	ds := &model.DoctorService{DoctorID: 1, ServiceID: 10, ChargeCents: 5000}
	require.NoError(t, repo.AssignService(context.Background(), ds))
	assert.Equal(t, uint64(42), ds.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignServiceDuplicate(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	err := repo.AssignService(context.Background(), &model.DoctorService{DoctorID: 1, ServiceID: 10})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTemplateRejectsOverlap(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT start_min, end_min FROM slot_templates").
		WillReturnRows(sqlmock.NewRows([]string{"start_min", "end_min"}).AddRow(9*60+30, 10*60+30))
	mock.ExpectRollback()

	err := repo.AddTemplate(context.Background(), &model.SlotTemplate{
		DoctorID: 1, ServiceID: 10, Weekday: time.Monday,
		StartMin: 9 * 60, EndMin: 10 * 60,
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTemplateAcceptsAdjacentWindow(t *testing.T) {
	// Windows are half-open: a 10:00-11:00 template right after an
	// existing 09:00-10:00 one shares a boundary but does not overlap.
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT start_min, end_min FROM slot_templates").
		WillReturnRows(sqlmock.NewRows([]string{"start_min", "end_min"}).AddRow(9*60, 10*60))
	mock.ExpectExec("INSERT INTO slot_templates").
		WillReturnResult(sqlmock.NewResult(16, 1))
	mock.ExpectCommit()

	tpl := &model.SlotTemplate{
		DoctorID: 1, ServiceID: 10, Weekday: time.Monday,
		StartMin: 10 * 60, EndMin: 11 * 60,
	}
	require.NoError(t, repo.AddTemplate(context.Background(), tpl))
	assert.Equal(t, uint64(16), tpl.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTemplateRequiresAssignment(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.AddTemplate(context.Background(), &model.SlotTemplate{
		DoctorID: 1, ServiceID: 10, Weekday: time.Monday,
		StartMin: 9 * 60, EndMin: 10 * 60,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTemplateInserts(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM doctor_services").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT start_min, end_min FROM slot_templates").
		WillReturnRows(sqlmock.NewRows([]string{"start_min", "end_min"}))
	mock.ExpectExec("INSERT INTO slot_templates").
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectCommit()

	tpl := &model.SlotTemplate{
		DoctorID: 1, ServiceID: 10, Weekday: time.Monday,
		StartMin: 9 * 60, EndMin: 10 * 60,
	}
	require.NoError(t, repo.AddTemplate(context.Background(), tpl))
	assert.Equal(t, uint64(15), tpl.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTemplateInvertedRange(t *testing.T) {
	repo, _ := newMockScheduleRepo(t)
	err := repo.AddTemplate(context.Background(), &model.SlotTemplate{
		DoctorID: 1, ServiceID: 10, Weekday: time.Monday,
		StartMin: 10 * 60, EndMin: 9 * 60,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProvidersForServiceGroupsTemplates(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT d.doctor_id").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "charge_cents"}).
			AddRow(1, 5000).
			AddRow(2, 7000))
	mock.ExpectQuery("SELECT id, doctor_id, service_id, weekday").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "doctor_id", "service_id", "weekday", "start_min", "end_min", "charge_cents", "created_at",
		}).
			AddRow(1, 1, 10, int(time.Monday), 9*60, 12*60, nil, now).
			AddRow(2, 1, 10, int(time.Wednesday), 14*60, 17*60, 9900, now).
			AddRow(3, 2, 10, int(time.Monday), 8*60, 11*60, nil, now))

	providers, err := repo.ProvidersForService(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, uint64(1), providers[0].DoctorID)
	assert.Equal(t, uint32(5000), providers[0].DefaultChargeCents)
	require.Len(t, providers[0].TemplatesFor(time.Monday), 1)
	require.Len(t, providers[0].TemplatesFor(time.Wednesday), 1)
	require.NotNil(t, providers[0].TemplatesFor(time.Wednesday)[0].ChargeCents)
	assert.Equal(t, uint32(9900), *providers[0].TemplatesFor(time.Wednesday)[0].ChargeCents)

	assert.Equal(t, uint64(2), providers[1].DoctorID)
	assert.Empty(t, providers[1].TemplatesFor(time.Wednesday))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvidersForServiceEmpty(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)

	mock.ExpectQuery("SELECT d.doctor_id").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "charge_cents"}))

	providers, err := repo.ProvidersForService(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, providers)
}
