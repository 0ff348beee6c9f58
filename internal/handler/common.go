package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// clockMinutes parses an "HH:MM" clock time into minutes from
// midnight. Used for the optional preferred-time field on booking
// requests.
func clockMinutes(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// apptJSON shapes one appointment for API responses. Timestamps go
// out as RFC 3339 UTC; the hold expiry is null for permanent and
// already-confirmed bookings.
func apptJSON(a *model.Appointment) echo.Map {
	var expires interface{}
	if a.ReservationExpiresAt != nil {
		expires = a.ReservationExpiresAt.UTC().Format(time.RFC3339)
	}
	return echo.Map{
		"id":                     a.ID,
		"doctor_id":              a.DoctorID,
		"patient_id":             a.PatientID,
		"service_id":             a.ServiceID,
		"starts_at":              a.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":                a.EndsAt.UTC().Format(time.RFC3339),
		"charge_cents":           a.ChargeCents,
		"status":                 a.Status,
		"reservation_expires_at": expires,
	}
}
