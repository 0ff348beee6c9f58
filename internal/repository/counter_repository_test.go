package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterNext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCounterRepo(db)

	// LAST_INSERT_ID carries the incremented counter back through
	// the driver's LastInsertId.
	mock.ExpectExec("INSERT INTO service_counters").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(4, 1))

	n, err := repo.Next(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterNextFirstUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCounterRepo(db)

	mock.ExpectExec("INSERT INTO service_counters").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := repo.Next(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
