package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

func newMockServiceRepo(t *testing.T) (*ServiceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServiceRepo(db), mock
}

func TestWithdrawCascadesCancellation(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM services").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.ServiceActive))
	mock.ExpectExec("UPDATE services SET status").
		WithArgs(model.ServiceWithdrawn, uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(model.StatusCancelled, uint64(10), model.StatusReserved, model.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	cancelled, err := repo.Withdraw(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawUnknownService(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := repo.Withdraw(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawAlreadyWithdrawnIsIdempotent(t *testing.T) {
	// A repeat withdrawal must not report the service missing; it
	// simply has nothing left to cancel.
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM services").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.ServiceWithdrawn))
	mock.ExpectRollback()

	cancelled, err := repo.Withdraw(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectQuery("SELECT id, name, description").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "category", "base_price_cents", "status", "created_at", "updated_at",
		}))

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
