package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/booking"
	"github.com/Aanchal7915/holy-heart-backend/internal/middleware"
	"github.com/Aanchal7915/holy-heart-backend/internal/queue"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
	queue_publisher "github.com/Aanchal7915/holy-heart-backend/internal/service"
)

// BookingHandler exposes the slot search and the reservation
// lifecycle to patients. All methods assume JWT authentication and
// role validation already happened in middleware; the patient ID is
// always taken from the token, never from the request body.
type BookingHandler struct {
	Engine      *booking.Engine
	Lifecycle   *booking.LifecycleManager
	ApptRepo    *repository.AppointmentRepo
	ServiceRepo *repository.ServiceRepo
}

// NewBookingHandler constructs a BookingHandler. All dependencies
// must be non-nil.
func NewBookingHandler(engine *booking.Engine, lifecycle *booking.LifecycleManager, apptRepo *repository.AppointmentRepo, serviceRepo *repository.ServiceRepo) *BookingHandler {
	if engine == nil || lifecycle == nil || apptRepo == nil || serviceRepo == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Lifecycle: lifecycle, ApptRepo: apptRepo, ServiceRepo: serviceRepo}
}

// Book handles POST /v1/appointments/book. The body selects a
// service and optionally narrows the search:
//
//	{
//	  "service_id":   12,           // required
//	  "doctor_id":    3,            // optional preferred doctor
//	  "date":         "2026-09-01", // optional, restricts to one day
//	  "time":         "09:15",      // optional preferred clock time
//	  "duration_min": 30,           // optional
//	  "mode":         "slice",      // optional, "block" or "slice"
//	  "permanent":    false         // optional, book confirmed without a hold
//	}
//
// A successful claim answers 201 with the appointment. A search that
// finds nothing answers with a structured reason: 404 when no doctor
// offers the service at all, 409 when providers exist but every
// window in the search horizon is taken.
func (h *BookingHandler) Book(c echo.Context) error {
	patientID := middleware.UserID(c)
	if patientID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		ServiceID   uint64 `json:"service_id"`
		DoctorID    uint64 `json:"doctor_id"`
		Date        string `json:"date"`
		Time        string `json:"time"`
		DurationMin int    `json:"duration_min"`
		Mode        string `json:"mode"`
		Permanent   bool   `json:"permanent"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id is required"})
	}
	if body.DurationMin < 0 || body.DurationMin > 24*60 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min must be between 0 and 1440"})
	}

	req := booking.Request{
		ServiceID:         body.ServiceID,
		PatientID:         patientID,
		PreferredDoctorID: body.DoctorID,
		PreferredMin:      -1,
		Duration:          time.Duration(body.DurationMin) * time.Minute,
		Permanent:         body.Permanent,
	}
	if body.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", body.Date, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		req.PreferredDate = &day
	}
	if body.Time != "" {
		min, err := clockMinutes(body.Time)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, expected HH:MM"})
		}
		req.PreferredMin = min
	}
	switch body.Mode {
	case "":
	case string(booking.ModeBlock), string(booking.ModeSlice):
		req.Mode = booking.Mode(body.Mode)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mode must be block or slice"})
	}

	result, err := h.Engine.Book(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking search failed"})
	}
	switch result.Reason {
	case booking.ReasonNoProvider:
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":  "no doctor offers this service",
			"reason": string(result.Reason),
		})
	case booking.ReasonNoAvailability:
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "no free slot in the search window",
			"reason": string(result.Reason),
		})
	}

	appt := result.Appointment
	h.publishBooked(appt.ID)
	return c.JSON(http.StatusCreated, echo.Map{"appointment": apptJSON(appt)})
}

// publishBooked emits the appointment.booked event in the background
// so broker hiccups never delay or fail the booking response.
func (h *BookingHandler) publishBooked(apptID uint64) {
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		appt, err := h.ApptRepo.GetByID(bg, apptID)
		if err != nil {
			return
		}
		serviceName := ""
		if svc, err := h.ServiceRepo.GetByID(bg, appt.ServiceID); err == nil {
			serviceName = svc.Name
		}
		_ = queue_publisher.PublishAppointmentBooked(bg, queue.AppointmentBookedEvent{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			ServiceID:     appt.ServiceID,
			ServiceName:   serviceName,
			Status:        appt.Status,
			StartsAt:      appt.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:        appt.EndsAt.UTC().Format(time.RFC3339),
			ChargeCents:   appt.ChargeCents,
			BookedAt:      time.Now().UTC().Format(time.RFC3339),
		})
	}()
}

// Confirm handles POST /v1/appointments/:id/confirm. Only the owning
// patient may confirm, and only while the hold is still reserved; a
// hold that lapsed or was cancelled answers 409.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Confirm)
}

// Cancel handles POST /v1/appointments/:id/cancel. The owning
// patient may cancel a reserved or confirmed appointment.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Cancel)
}

func (h *BookingHandler) transition(c echo.Context, apply func(context.Context, uint64) error) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx := c.Request().Context()

	appt, err := h.ApptRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if appt.PatientID != userID && c.Get(middleware.CtxRole) != middleware.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := apply(ctx, id); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not in a state that allows this change"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	updated, err := h.ApptRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": apptJSON(updated)})
}

// Get handles GET /v1/appointments/:id. Patients see only their own
// appointments; admins and doctors may inspect any.
func (h *BookingHandler) Get(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	appt, err := h.ApptRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	if appt.PatientID != userID && role == middleware.RolePatient {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": apptJSON(appt)})
}

// MyAppointments handles GET /v1/my-appointments and lists every
// appointment ever booked by the authenticated patient, newest
// first.
func (h *BookingHandler) MyAppointments(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	appts, err := h.ApptRepo.ListByPatient(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(appts))
	for i := range appts {
		out = append(out, apptJSON(&appts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": out})
}
