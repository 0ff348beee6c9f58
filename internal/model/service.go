package model

import "time"

// Service categories. The category decides how a clinic block is
// booked: diagnostic tests occupy the whole template block, while
// treatments and OPD sessions are sliced into individual
// appointments of the requested duration.
const (
	CategoryTest      = "test"
	CategoryTreatment = "treatment"
	CategoryOPDS      = "opds"
)

// Service statuses. A withdrawn service is gone for good and
// withdrawing it cancels every active appointment that references
// it; an inactive service is merely hidden from booking.
const (
	ServiceActive    = "active"
	ServiceInactive  = "inactive"
	ServiceWithdrawn = "withdrawn"
)

// Service represents a clinic offering as stored in the `services`
// table. The booking engine only ever reads services; creation and
// edits happen through the admin endpoints.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – display name of the offering.
//  Description    – free-form description.
//  Category       – one of test, treatment, opds.
//  BasePriceCents – default price when no doctor/slot charge applies.
//  Status         – active, inactive or withdrawn.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Service struct {
	ID             uint64    // services.id
	Name           string    // services.name
	Description    string    // services.description
	Category       string    // services.category
	BasePriceCents uint32    // services.base_price_cents
	Status         string    // services.status
	CreatedAt      time.Time // services.created_at
	UpdatedAt      time.Time // services.updated_at
}
