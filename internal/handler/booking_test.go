package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aanchal7915/holy-heart-backend/internal/booking"
	"github.com/Aanchal7915/holy-heart-backend/internal/middleware"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
)

func newBookingFixture(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	serviceRepo := repository.NewServiceRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)
	engine := booking.NewEngine(
		booking.NewCatalog(scheduleRepo),
		booking.NewOrderingPolicy(repository.NewCounterRepo(db)),
		apptRepo,
		serviceRepo,
	)
	lifecycle := booking.NewLifecycleManager(apptRepo)
	return NewBookingHandler(engine, lifecycle, apptRepo, serviceRepo), mock
}

func bookRequest(t *testing.T, body string, userID uint64) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/appointments/book", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxRole, middleware.RolePatient)
	}
	return c
}

func TestBookRequiresAuthentication(t *testing.T) {
	h, _ := newBookingFixture(t)
	c := bookRequest(t, `{"service_id": 1}`, 0)
	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusUnauthorized, c.Response().Status)
}

func TestBookValidation(t *testing.T) {
	h, _ := newBookingFixture(t)
	cases := []struct {
		name string
		body string
	}{
		{"missing service", `{}`},
		{"bad mode", `{"service_id": 1, "mode": "whole-day"}`},
		{"bad time", `{"service_id": 1, "time": "quarter past nine"}`},
		{"bad date", `{"service_id": 1, "date": "31-08-2026"}`},
		{"negative duration", `{"service_id": 1, "duration_min": -15}`},
		{"oversized duration", `{"service_id": 1, "duration_min": 65566}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := bookRequest(t, tc.body, 7)
			require.NoError(t, h.Book(c))
			assert.Equal(t, http.StatusBadRequest, c.Response().Status)
		})
	}
}

func TestBookNoProviderForService(t *testing.T) {
	h, mock := newBookingFixture(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, name, description").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "category", "base_price_cents", "status", "created_at", "updated_at",
		}).AddRow(1, "ECG", "", "test", 20000, "active", now, now))
	mock.ExpectQuery("SELECT d.doctor_id").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "charge_cents"}))

	c := bookRequest(t, `{"service_id": 1}`, 7)
	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusNotFound, c.Response().Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClockMinutes(t *testing.T) {
	min, err := clockMinutes("09:15")
	require.NoError(t, err)
	assert.Equal(t, 9*60+15, min)

	_, err = clockMinutes("24:00")
	assert.Error(t, err)
	_, err = clockMinutes("09:60")
	assert.Error(t, err)
	_, err = clockMinutes("915")
	assert.Error(t, err)
}
