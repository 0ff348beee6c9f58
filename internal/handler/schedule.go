package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/middleware"
	"github.com/Aanchal7915/holy-heart-backend/internal/model"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
)

// ScheduleHandler manages doctor availability: which services a
// doctor offers, the weekly slot templates behind them, and the
// public day-by-day schedule view patients browse before booking.
type ScheduleHandler struct {
	ScheduleRepo *repository.ScheduleRepo
	ApptRepo     *repository.AppointmentRepo

	// SearchDays bounds the public schedule view; it matches the
	// booking engine's rolling window so patients never see days the
	// engine would not consider.
	SearchDays int
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(scheduleRepo *repository.ScheduleRepo, apptRepo *repository.AppointmentRepo, searchDays int) *ScheduleHandler {
	if scheduleRepo == nil || apptRepo == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	if searchDays <= 0 {
		searchDays = 14
	}
	return &ScheduleHandler{ScheduleRepo: scheduleRepo, ApptRepo: apptRepo, SearchDays: searchDays}
}

// doctorScope resolves which doctor a doctor-admin request acts on.
// Doctors only ever manage their own schedule; admins may act on any
// doctor via the :doctor_id path parameter.
func doctorScope(c echo.Context) (uint64, error) {
	role, _ := c.Get(middleware.CtxRole).(string)
	if role == middleware.RoleAdmin {
		return pathID(c, "doctor_id")
	}
	if id := middleware.UserID(c); id != 0 {
		return id, nil
	}
	return 0, repository.ErrForbidden
}

// AssignService handles POST /v1/doctors/:doctor_id/services. It
// declares that the doctor offers a service at a default charge.
func (h *ScheduleHandler) AssignService(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var body struct {
		ServiceID   uint64 `json:"service_id"`
		ChargeCents uint32 `json:"charge_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id is required"})
	}
	ds := &model.DoctorService{
		DoctorID:    doctorID,
		ServiceID:   body.ServiceID,
		ChargeCents: body.ChargeCents,
	}
	if err := h.ScheduleRepo.AssignService(c.Request().Context(), ds); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "doctor already offers this service"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign service"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           ds.ID,
		"doctor_id":    ds.DoctorID,
		"service_id":   ds.ServiceID,
		"charge_cents": ds.ChargeCents,
	})
}

// RemoveService handles DELETE /v1/doctors/:doctor_id/services/:id.
// It drops the assignment and every slot template behind it; already
// booked appointments stay untouched.
func (h *ScheduleHandler) RemoveService(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	serviceID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	if err := h.ScheduleRepo.RemoveService(c.Request().Context(), doctorID, serviceID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove service"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddTemplate handles POST /v1/doctors/:doctor_id/slots. Templates
// are weekly windows in minutes from midnight; overlap with an
// existing template for the same service and weekday is rejected.
func (h *ScheduleHandler) AddTemplate(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var body struct {
		ServiceID   uint64  `json:"service_id"`
		Weekday     int     `json:"weekday"`
		Start       string  `json:"start"` // "HH:MM"
		End         string  `json:"end"`   // "HH:MM"
		ChargeCents *uint32 `json:"charge_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id is required"})
	}
	if body.Weekday < 0 || body.Weekday > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be 0 (Sunday) through 6 (Saturday)"})
	}
	startMin, err := clockMinutes(body.Start)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start, expected HH:MM"})
	}
	endMin, err := clockMinutes(body.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end, expected HH:MM"})
	}
	if endMin <= startMin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
	}

	tpl := &model.SlotTemplate{
		DoctorID:    doctorID,
		ServiceID:   body.ServiceID,
		Weekday:     time.Weekday(body.Weekday),
		StartMin:    uint16(startMin),
		EndMin:      uint16(endMin),
		ChargeCents: body.ChargeCents,
	}
	if err := h.ScheduleRepo.AddTemplate(c.Request().Context(), tpl); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor does not offer this service"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "template overlaps an existing window"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add template"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"template": templateJSON(tpl)})
}

// DeleteTemplate handles DELETE /v1/doctors/:doctor_id/slots/:id.
func (h *ScheduleHandler) DeleteTemplate(c echo.Context) error {
	doctorID, err := doctorScope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	templateID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	if err := h.ScheduleRepo.DeleteTemplate(c.Request().Context(), doctorID, templateID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete template"})
	}
	return c.NoContent(http.StatusNoContent)
}

func templateJSON(t *model.SlotTemplate) echo.Map {
	var charge interface{}
	if t.ChargeCents != nil {
		charge = *t.ChargeCents
	}
	return echo.Map{
		"id":           t.ID,
		"doctor_id":    t.DoctorID,
		"service_id":   t.ServiceID,
		"weekday":      int(t.Weekday),
		"start":        minutesClock(t.StartMin),
		"end":          minutesClock(t.EndMin),
		"charge_cents": charge,
	}
}

func minutesClock(min uint16) string {
	return time.Time{}.Add(time.Duration(min) * time.Minute).Format("15:04")
}

// ScheduleView handles GET /v1/doctors/:id/schedule?service_id=N.
// It projects the doctor's weekly templates for one service onto the
// next SearchDays calendar days and overlays the already-claimed
// appointments, so patients can see where the engine will look
// before they book. The view is advisory: the booking transaction
// remains the only authority on whether a window is actually free.
func (h *ScheduleHandler) ScheduleView(c echo.Context) error {
	doctorID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor id"})
	}
	serviceID, err := strconv.ParseUint(c.QueryParam("service_id"), 10, 64)
	if err != nil || serviceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id query parameter is required"})
	}

	ctx := c.Request().Context()
	templates, err := h.ScheduleRepo.TemplatesForDoctor(ctx, doctorID, serviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	byWeekday := make(map[time.Weekday][]model.SlotTemplate)
	for _, t := range templates {
		byWeekday[t.Weekday] = append(byWeekday[t.Weekday], t)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	until := today.AddDate(0, 0, h.SearchDays)
	booked, err := h.ApptRepo.ActiveInRange(ctx, doctorID, serviceID, today, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	bookedByDay := make(map[string][]echo.Map)
	for i := range booked {
		a := &booked[i]
		day := a.StartsAt.UTC().Format("2006-01-02")
		bookedByDay[day] = append(bookedByDay[day], echo.Map{
			"starts_at": a.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":   a.EndsAt.UTC().Format(time.RFC3339),
			"status":    a.Status,
		})
	}

	days := make([]echo.Map, 0, h.SearchDays)
	for i := 0; i < h.SearchDays; i++ {
		day := today.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		windows := make([]echo.Map, 0)
		for _, t := range byWeekday[day.Weekday()] {
			windows = append(windows, templateJSON(&t))
		}
		entry := echo.Map{
			"date":    key,
			"weekday": int(day.Weekday()),
			"windows": windows,
		}
		if b, ok := bookedByDay[key]; ok {
			entry["booked"] = b
		} else {
			entry["booked"] = []echo.Map{}
		}
		days = append(days, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"doctor_id":  doctorID,
		"service_id": serviceID,
		"days":       days,
	})
}
