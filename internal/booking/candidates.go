package booking

import (
	"time"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// Mode selects how a slot template is turned into bookable windows.
// Block mode books the template as one indivisible appointment (a
// diagnostic test occupies the whole window); slice mode sub-divides
// a long clinic block into individually bookable appointments of the
// requested duration.
type Mode string

const (
	ModeBlock Mode = "block"
	ModeSlice Mode = "slice"
)

// ModeForCategory picks the default booking mode from a service
// category: tests book whole blocks, treatments and OPD sessions are
// sliced.
func ModeForCategory(category string) Mode {
	if category == model.CategoryTest {
		return ModeBlock
	}
	return ModeSlice
}

// Candidate is one concrete absolute-time window proposed for
// reservation, with the charge already resolved for its template.
type Candidate struct {
	Start       time.Time
	End         time.Time
	ChargeCents uint32
}

// CandidateRequest bundles the pure inputs of candidate generation
// for one (day, provider) pair.
type CandidateRequest struct {
	// Day is the calendar date, truncated to midnight UTC.
	Day time.Time
	// Templates are the provider's windows for Day's weekday,
	// already restricted to the requested service.
	Templates []model.SlotTemplate
	// Provider supplies the doctor-level default charge.
	Provider model.ProviderOffering
	// Duration is the requested appointment length.
	Duration time.Duration
	// Stride is the slice-mode cursor advance; zero falls back to
	// DefaultStride.
	Stride time.Duration
	// PreferredMin is an optional preferred clock time in minutes
	// from midnight; negative means no preference.
	PreferredMin int
	// Mode picks block or slice generation for the non-preferred
	// tiers.
	Mode Mode
}

// DefaultStride is the slice-mode cursor advance when the caller
// does not specify one.
const DefaultStride = 15 * time.Minute

// GenerateCandidates produces the ordered, finite set of windows to
// try for one day and provider. Priority tiers:
//
//  1. exact preferred-time windows – for every template whose range
//     can contain preferred+duration, a window starting exactly at
//     the preferred time;
//  2. block mode – each template as-is; or
//  3. slice mode – every duration-sized window advancing by the
//     stride while it still fits inside the template.
//
// Within a tier candidates come out earliest-start first because
// templates arrive sorted by start time. A template shorter than the
// duration yields nothing. The function performs no I/O; it is pure
// computation over the templates.
func GenerateCandidates(req CandidateRequest) []Candidate {
	duration := req.Duration
	if duration <= 0 {
		return nil
	}
	stride := req.Stride
	if stride <= 0 {
		stride = DefaultStride
	}
	day := req.Day.UTC().Truncate(24 * time.Hour)
	at := func(min int) time.Time {
		return day.Add(time.Duration(min) * time.Minute)
	}
	// All fit arithmetic happens in plain int minutes. Template
	// bounds are uint16 but the requested duration is caller input;
	// narrowing it would wrap and let an absurd duration pass the fit
	// check while the real end time lands far past the template.
	durMin := int(duration / time.Minute)
	stepMin := int(stride / time.Minute)
	if stepMin <= 0 {
		// Sub-minute strides round down to a zero step, which would
		// never advance the cursor.
		stepMin = int(DefaultStride / time.Minute)
	}

	candidates := make([]Candidate, 0)
	seen := make(map[[2]int64]struct{})
	add := func(start, end time.Time, charge uint32) {
		key := [2]int64{start.Unix(), end.Unix()}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, Candidate{Start: start, End: end, ChargeCents: charge})
	}

	// Tier 1: exact preferred-time match.
	if req.PreferredMin >= 0 {
		preferred := req.PreferredMin
		for _, t := range req.Templates {
			if preferred >= int(t.StartMin) && preferred+durMin <= int(t.EndMin) {
				add(at(preferred), at(preferred).Add(duration), ResolveCharge(req.Provider, t))
			}
		}
	}

	// Tier 2/3: whole blocks or sliding sub-slices.
	for _, t := range req.Templates {
		charge := ResolveCharge(req.Provider, t)
		switch req.Mode {
		case ModeBlock:
			if t.EndMin > t.StartMin {
				add(at(int(t.StartMin)), at(int(t.EndMin)), charge)
			}
		default: // ModeSlice
			for cursor := int(t.StartMin); cursor+durMin <= int(t.EndMin); cursor += stepMin {
				add(at(cursor), at(cursor).Add(duration), charge)
			}
		}
	}
	return candidates
}
