package model

import "time"

// Appointment statuses. An appointment starts life as a reserved,
// time-limited hold (unless booked permanently, in which case it is
// created confirmed) and moves through exactly one of the terminal
// states expired, cancelled or completed.
const (
	StatusReserved  = "reserved"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
	StatusCompleted = "completed"
)

// ActiveStatuses are the statuses that block a doctor's calendar.
// The core invariant of the platform is that for one doctor no two
// appointments in an active status ever overlap.
var ActiveStatuses = []string{StatusReserved, StatusConfirmed}

// Appointment is a concrete reservation of a doctor's time as
// stored in the `appointments` table. Start and end are absolute UTC
// timestamps, never weekday-relative.
//
// Fields:
//  ID                   – primary key identifier.
//  DoctorID             – doctor whose time is claimed.
//  PatientID            – patient the slot was claimed for.
//  ServiceID            – service being delivered.
//  StartsAt             – appointment start (UTC).
//  EndsAt               – appointment end (UTC, exclusive).
//  ChargeCents          – charge for this appointment in cents.
//  Status               – see status constants above.
//  ReservationExpiresAt – when a reserved hold lapses (nil for
//                         permanent/confirmed bookings).
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Appointment struct {
	ID                   uint64     // appointments.id
	DoctorID             uint64     // appointments.doctor_id
	PatientID            uint64     // appointments.patient_id
	ServiceID            uint64     // appointments.service_id
	StartsAt             time.Time  // appointments.starts_at
	EndsAt               time.Time  // appointments.ends_at
	ChargeCents          uint32     // appointments.charge_cents
	Status               string     // appointments.status
	ReservationExpiresAt *time.Time // appointments.reservation_expires_at (nullable)
	CreatedAt            time.Time  // appointments.created_at
	UpdatedAt            time.Time  // appointments.updated_at
}

// Active reports whether the appointment currently blocks its
// doctor's calendar.
func (a Appointment) Active() bool {
	return a.Status == StatusReserved || a.Status == StatusConfirmed
}
