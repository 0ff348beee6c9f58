// Package booking implements the cross-provider slot allocation and
// reservation engine: finding which doctors can serve a service, the
// order in which they are tried, the concrete time windows proposed
// for each doctor and day, the atomic claim of one window, and the
// lifecycle of the resulting reservation.
package booking

import (
	"context"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// ProviderSource is the slice of the schedule repository the catalog
// needs: every qualifying doctor for a service with hydrated weekly
// templates.
type ProviderSource interface {
	ProvidersForService(ctx context.Context, serviceID uint64) ([]model.ProviderOffering, error)
}

// Catalog is the read-only availability view the search runs
// against. It owns the charge resolution rule: a slot-level charge
// overrides the doctor-level default, which overrides zero.
type Catalog struct {
	providers ProviderSource
}

// NewCatalog returns a Catalog backed by the given provider source.
func NewCatalog(providers ProviderSource) *Catalog {
	return &Catalog{providers: providers}
}

// FindProviders returns every doctor who can serve the service. An
// empty slice means "no provider offers this service" and is a
// normal negative outcome for the caller, never an error.
func (c *Catalog) FindProviders(ctx context.Context, serviceID uint64) ([]model.ProviderOffering, error) {
	return c.providers.ProvidersForService(ctx, serviceID)
}

// ResolveCharge picks the effective charge for one template under a
// provider: the template's own override when present, otherwise the
// provider's doctor-level default.
func ResolveCharge(p model.ProviderOffering, t model.SlotTemplate) uint32 {
	if t.ChargeCents != nil {
		return *t.ChargeCents
	}
	return p.DefaultChargeCents
}
