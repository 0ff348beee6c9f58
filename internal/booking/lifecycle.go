package booking

import (
	"context"
	"log"
	"time"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

// LifecycleStore is the slice of the appointment repository the
// lifecycle manager needs: guarded status transitions and the bulk
// expiry flip.
type LifecycleStore interface {
	UpdateStatusFrom(ctx context.Context, id uint64, to string, from ...string) error
	ExpireOverdue(ctx context.Context) (int64, error)
}

// LifecycleManager owns every status change after creation:
//
//	reserved  → confirmed | cancelled | expired
//	confirmed → completed | cancelled
//
// expired, cancelled and completed are terminal. The transitions are
// enforced by guarded single-statement updates in the store, so a
// hold that expired a moment ago can no longer be confirmed.
type LifecycleManager struct {
	store LifecycleStore
}

// NewLifecycleManager returns a manager over the given store.
func NewLifecycleManager(store LifecycleStore) *LifecycleManager {
	return &LifecycleManager{store: store}
}

// Confirm promotes a reserved hold to a confirmed appointment.
func (m *LifecycleManager) Confirm(ctx context.Context, id uint64) error {
	return m.store.UpdateStatusFrom(ctx, id, model.StatusConfirmed, model.StatusReserved)
}

// Cancel cancels an appointment that is still active.
func (m *LifecycleManager) Cancel(ctx context.Context, id uint64) error {
	return m.store.UpdateStatusFrom(ctx, id, model.StatusCancelled, model.StatusReserved, model.StatusConfirmed)
}

// Complete marks a confirmed appointment as honored after its time
// has passed.
func (m *LifecycleManager) Complete(ctx context.Context, id uint64) error {
	return m.store.UpdateStatusFrom(ctx, id, model.StatusCompleted, model.StatusConfirmed)
}

// RunReaper periodically flips overdue reserved holds to expired
// until the context is cancelled. Expiry is what releases abandoned
// holds back to the search; without it a reserved-but-never-
// confirmed slot would block its window forever. The flip is
// idempotent and safe to run concurrently with new claims, so the
// reaper needs no coordination with the booking path. Run it from a
// goroutine in main.
func (m *LifecycleManager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.ExpireOverdue(ctx)
			if err != nil {
				log.Printf("reaper: expire overdue holds: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reaper: expired %d overdue holds", n)
			}
		}
	}
}
