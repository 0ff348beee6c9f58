package model

import "time"

// DoctorService records that a doctor offers a service, together
// with the doctor-level default charge for one appointment. A slot
// template may override this charge for a specific weekly window.
//
// Fields:
//  ID          – primary key identifier.
//  DoctorID    – doctor offering the service.
//  ServiceID   – service being offered.
//  ChargeCents – default charge per appointment in cents.
//  CreatedAt   – creation timestamp.
type DoctorService struct {
	ID          uint64    // doctor_services.id
	DoctorID    uint64    // doctor_services.doctor_id
	ServiceID   uint64    // doctor_services.service_id
	ChargeCents uint32    // doctor_services.charge_cents
	CreatedAt   time.Time // doctor_services.created_at
}

// SlotTemplate is one recurring weekly availability window for a
// doctor/service pair. Times are stored as minutes from midnight so
// that templates are independent of any concrete date; the booking
// engine instantiates them onto calendar days. Within one weekday no
// two templates for the same service may overlap – this is enforced
// when templates are created, not by the engine.
//
// Fields:
//  ID          – primary key identifier.
//  DoctorID    – owning doctor.
//  ServiceID   – service this window serves.
//  Weekday     – 0=Sunday .. 6=Saturday, matching time.Weekday.
//  StartMin    – window start, minutes from midnight.
//  EndMin      – window end, minutes from midnight (exclusive).
//  ChargeCents – optional charge override for this window (nil falls
//                back to the doctor-level default).
//  CreatedAt   – creation timestamp.
type SlotTemplate struct {
	ID          uint64       // slot_templates.id
	DoctorID    uint64       // slot_templates.doctor_id
	ServiceID   uint64       // slot_templates.service_id
	Weekday     time.Weekday // slot_templates.weekday
	StartMin    uint16       // slot_templates.start_min
	EndMin      uint16       // slot_templates.end_min
	ChargeCents *uint32      // slot_templates.charge_cents (nullable)
	CreatedAt   time.Time    // slot_templates.created_at
}

// Overlaps reports whether two templates collide on the half-open
// minute ranges [StartMin, EndMin).
func (t SlotTemplate) Overlaps(o SlotTemplate) bool {
	return t.StartMin < o.EndMin && t.EndMin > o.StartMin
}

// ProviderOffering is the catalog view of one qualifying doctor for
// a service: the doctor, the best-known default charge and the
// weekly templates restricted to the requested service, grouped by
// weekday for cheap lookup inside the search loop.
type ProviderOffering struct {
	DoctorID           uint64
	DefaultChargeCents uint32
	Templates          map[time.Weekday][]SlotTemplate
}

// TemplatesFor returns the provider's templates for the given
// weekday. A missing weekday simply yields an empty slice.
func (p ProviderOffering) TemplatesFor(day time.Weekday) []SlotTemplate {
	return p.Templates[day]
}
