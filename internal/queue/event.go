// Package queue defines message payloads exchanged over the message broker.
package queue

// AppointmentBookedEvent is published when a slot is successfully claimed,
// whether as a timed hold or a permanent booking. It carries enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type AppointmentBookedEvent struct {
	AppointmentID uint64 `json:"appointment_id"`
	PatientID     uint64 `json:"patient_id"`
	DoctorID      uint64 `json:"doctor_id"`
	ServiceID     uint64 `json:"service_id"`
	ServiceName   string `json:"service_name"`
	Status        string `json:"status"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	ChargeCents   uint32 `json:"charge_cents"`
	BookedAt      string `json:"booked_at"`
}
