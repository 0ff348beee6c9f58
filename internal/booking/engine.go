package booking

import (
	"context"
	"log"
	"time"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
)

// Search defaults. Each can be overridden per Engine via config or
// per request where the Request field exists.
const (
	DefaultSearchDays = 14
	DefaultDuration   = 30 * time.Minute
	DefaultHoldTTL    = 600 * time.Second
)

// Reason classifies a negative search outcome. Callers must be able
// to tell "nothing offered" from "nothing free" without parsing
// errors; neither is a fault.
type Reason string

const (
	ReasonNoProvider     Reason = "no-provider-for-service"
	ReasonNoAvailability Reason = "no-availability-found"
)

// Claimer is the slice of the appointment repository the engine
// needs: the atomic check-then-insert of one concrete window.
type Claimer interface {
	TryClaim(ctx context.Context, c repository.Claim) (*model.Appointment, error)
}

// ServiceSource resolves a service so the engine can check that it
// is bookable and derive the default mode from its category.
type ServiceSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Service, error)
}

// Request describes one booking search.
type Request struct {
	ServiceID         uint64
	PatientID         uint64
	PreferredDoctorID uint64     // 0: no preference, fairness rotation applies
	PreferredDate     *time.Time // nil: scan the rolling window instead
	PreferredMin      int        // preferred clock time in minutes from midnight; negative: none
	Duration          time.Duration
	Mode              Mode // empty: derived from the service category
	Permanent         bool // create the appointment confirmed, without expiry
	TTL               time.Duration
}

// Result is the outcome of a search: either a claimed appointment or
// a structured reason why none could be claimed.
type Result struct {
	Appointment *model.Appointment
	Reason      Reason
}

// Engine runs the greedy first-fit search: earliest date, then
// provider order from the ordering policy, then candidate priority
// within a provider's day. The first successful claim wins and the
// search stops immediately. The loop itself is sequential; all
// mutual exclusion lives inside the claim transaction, so nothing is
// locked across iterations and a lost claim costs nothing but the
// next iteration.
type Engine struct {
	Catalog  *Catalog
	Ordering *OrderingPolicy
	Claims   Claimer
	Services ServiceSource

	SearchDays int
	Duration   time.Duration
	Stride     time.Duration
	HoldTTL    time.Duration

	// Now is the clock used to anchor the rolling window; tests
	// override it. Nil means time.Now.
	Now func() time.Time
}

// NewEngine wires an engine with default tunables.
func NewEngine(catalog *Catalog, ordering *OrderingPolicy, claims Claimer, services ServiceSource) *Engine {
	return &Engine{
		Catalog:    catalog,
		Ordering:   ordering,
		Claims:     claims,
		Services:   services,
		SearchDays: DefaultSearchDays,
		Duration:   DefaultDuration,
		Stride:     DefaultStride,
		HoldTTL:    DefaultHoldTTL,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Book locates and claims the first free window for the request.
// It returns a Result carrying either the reserved appointment or a
// negative reason; the error return is reserved for infrastructure
// failures outside any single claim attempt (catalog or counter
// queries). Individual claim failures never abort the search.
func (e *Engine) Book(ctx context.Context, req Request) (Result, error) {
	svc, err := e.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if err == repository.ErrNotFound {
			return Result{Reason: ReasonNoProvider}, nil
		}
		return Result{}, err
	}
	if svc.Status != model.ServiceActive {
		return Result{Reason: ReasonNoProvider}, nil
	}

	providers, err := e.Catalog.FindProviders(ctx, req.ServiceID)
	if err != nil {
		return Result{}, err
	}
	if len(providers) == 0 {
		return Result{Reason: ReasonNoProvider}, nil
	}

	ordered, err := e.Ordering.Order(ctx, req.ServiceID, providers, req.PreferredDoctorID)
	if err != nil {
		return Result{}, err
	}

	duration := req.Duration
	if duration <= 0 {
		duration = e.Duration
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = e.HoldTTL
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeForCategory(svc.Category)
	}

	now := e.now().UTC()
	var days []time.Time
	if req.PreferredDate != nil {
		days = []time.Time{req.PreferredDate.UTC().Truncate(24 * time.Hour)}
	} else {
		today := now.Truncate(24 * time.Hour)
		for i := 0; i < e.SearchDays; i++ {
			days = append(days, today.AddDate(0, 0, i))
		}
	}

	for _, day := range days {
		for _, provider := range ordered {
			templates := provider.TemplatesFor(day.Weekday())
			if len(templates) == 0 {
				continue
			}
			candidates := GenerateCandidates(CandidateRequest{
				Day:          day,
				Templates:    templates,
				Provider:     provider,
				Duration:     duration,
				Stride:       e.Stride,
				PreferredMin: req.PreferredMin,
				Mode:         mode,
			})
			for _, cand := range candidates {
				if !cand.Start.After(now) {
					// Never propose a window that has already begun.
					continue
				}
				appt, err := e.Claims.TryClaim(ctx, repository.Claim{
					DoctorID:    provider.DoctorID,
					PatientID:   req.PatientID,
					ServiceID:   req.ServiceID,
					StartsAt:    cand.Start,
					EndsAt:      cand.End,
					ChargeCents: cand.ChargeCents,
					TTL:         ttl,
					Permanent:   req.Permanent,
				})
				if err != nil {
					// Transient store fault: treated as a lost claim,
					// the search moves on without retrying this
					// candidate.
					log.Printf("booking: claim failed doctor=%d start=%s: %v",
						provider.DoctorID, cand.Start.Format(time.RFC3339), err)
					continue
				}
				if appt != nil {
					return Result{Appointment: appt}, nil
				}
			}
		}
	}
	return Result{Reason: ReasonNoAvailability}, nil
}
