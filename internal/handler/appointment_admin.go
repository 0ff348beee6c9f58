package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/booking"
	"github.com/Aanchal7915/holy-heart-backend/internal/model"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
)

// AdminAppointmentHandler gives staff a filtered, paginated view over
// every appointment plus the completion transition that patients
// cannot trigger themselves.
type AdminAppointmentHandler struct {
	Repo      *repository.AppointmentRepo
	Lifecycle *booking.LifecycleManager
}

// NewAdminAppointmentHandler constructs an AdminAppointmentHandler.
func NewAdminAppointmentHandler(repo *repository.AppointmentRepo, lifecycle *booking.LifecycleManager) *AdminAppointmentHandler {
	if repo == nil || lifecycle == nil {
		panic("nil dependency passed to NewAdminAppointmentHandler")
	}
	return &AdminAppointmentHandler{Repo: repo, Lifecycle: lifecycle}
}

// List handles GET /v1/appointments. Query parameters narrow the
// result: doctor_id, service_id, status, from, to (RFC 3339 or
// YYYY-MM-DD), page and per_page.
func (h *AdminAppointmentHandler) List(c echo.Context) error {
	var f repository.ListFilter
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor_id"})
		}
		f.DoctorID = id
	}
	if v := c.QueryParam("service_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service_id"})
		}
		f.ServiceID = id
	}
	f.Status = c.QueryParam("status")
	if v := c.QueryParam("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
		f.To = t
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	if v := c.QueryParam("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.PerPage = n
		}
	}

	appts, total, err := h.Repo.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(appts))
	for i := range appts {
		out = append(out, apptJSON(&appts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"appointments": out,
		"total":        total,
	})
}

// Complete handles POST /v1/appointments/:id/complete. Staff mark a
// confirmed appointment as honored once the visit happened; any
// other starting status answers 409.
func (h *AdminAppointmentHandler) Complete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx := c.Request().Context()
	if err := h.Lifecycle.Complete(ctx, id); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "only confirmed appointments can be completed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	appt, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": apptJSON(appt)})
}

// UpdateStatus handles PATCH /v1/appointments/:id/status. It lets an
// admin drive any legal lifecycle transition; the target state
// decides which source states are acceptable, identical to the
// patient-facing endpoints.
func (h *AdminAppointmentHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	switch body.Status {
	case model.StatusConfirmed:
		err = h.Lifecycle.Confirm(ctx, id)
	case model.StatusCancelled:
		err = h.Lifecycle.Cancel(ctx, id)
	case model.StatusCompleted:
		err = h.Lifecycle.Complete(ctx, id)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be confirmed, cancelled or completed"})
	}
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not in a state that allows this change"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	appt, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": apptJSON(appt)})
}

// parseTimeParam accepts either a full RFC 3339 timestamp or a bare
// date, both interpreted as UTC.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
