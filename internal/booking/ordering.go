package booking

import (
	"context"
	"fmt"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// CounterSource yields one strictly increasing, durable sequence per
// service. It must be shared by every serving process – the fairness
// rotation is only fair when all instances draw from the same
// counter.
type CounterSource interface {
	Next(ctx context.Context, serviceID uint64) (uint64, error)
}

// OrderingPolicy decides the order in which qualifying doctors are
// tried. An explicitly preferred doctor always goes first; without a
// preference the list is rotated round-robin so successive unrelated
// requests for the same service spread across providers.
type OrderingPolicy struct {
	counters CounterSource
}

// NewOrderingPolicy returns an OrderingPolicy drawing rotations from
// the given counter source.
func NewOrderingPolicy(counters CounterSource) *OrderingPolicy {
	return &OrderingPolicy{counters: counters}
}

// Order arranges providers for the search. With a preferred doctor
// present in the list, that doctor moves to the front and the rest
// keep their relative order; the counter is not consumed. Otherwise
// the per-service counter is incremented and the list rotated by
// counter mod len(providers).
func (o *OrderingPolicy) Order(ctx context.Context, serviceID uint64, providers []model.ProviderOffering, preferredDoctorID uint64) ([]model.ProviderOffering, error) {
	if len(providers) == 0 {
		return providers, nil
	}
	if preferredDoctorID != 0 {
		for i, p := range providers {
			if p.DoctorID == preferredDoctorID {
				ordered := make([]model.ProviderOffering, 0, len(providers))
				ordered = append(ordered, p)
				ordered = append(ordered, providers[:i]...)
				ordered = append(ordered, providers[i+1:]...)
				return ordered, nil
			}
		}
		// Preferred doctor does not serve this service; fall through
		// to the fairness rotation.
	}
	n, err := o.counters.Next(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("fairness counter: %w", err)
	}
	start := int(n % uint64(len(providers)))
	ordered := make([]model.ProviderOffering, 0, len(providers))
	ordered = append(ordered, providers[start:]...)
	ordered = append(ordered, providers[:start]...)
	return ordered, nil
}
