package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

type transitionCall struct {
	id   uint64
	to   string
	from []string
}

type fakeLifecycleStore struct {
	mu      sync.Mutex
	calls   []transitionCall
	err     error
	expired int64
	reaps   chan struct{}
}

func (f *fakeLifecycleStore) UpdateStatusFrom(ctx context.Context, id uint64, to string, from ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, transitionCall{id: id, to: to, from: from})
	return f.err
}

func (f *fakeLifecycleStore) ExpireOverdue(ctx context.Context) (int64, error) {
	if f.reaps != nil {
		select {
		case f.reaps <- struct{}{}:
		default:
		}
	}
	return f.expired, f.err
}

func TestLifecycleTransitions(t *testing.T) {
	store := &fakeLifecycleStore{}
	m := NewLifecycleManager(store)
	ctx := context.Background()

	require.NoError(t, m.Confirm(ctx, 1))
	require.NoError(t, m.Cancel(ctx, 2))
	require.NoError(t, m.Complete(ctx, 3))

	require.Len(t, store.calls, 3)

	assert.Equal(t, model.StatusConfirmed, store.calls[0].to)
	assert.Equal(t, []string{model.StatusReserved}, store.calls[0].from)

	assert.Equal(t, model.StatusCancelled, store.calls[1].to)
	assert.Equal(t, []string{model.StatusReserved, model.StatusConfirmed}, store.calls[1].from)

	assert.Equal(t, model.StatusCompleted, store.calls[2].to)
	assert.Equal(t, []string{model.StatusConfirmed}, store.calls[2].from)
}

func TestRunReaperTicksUntilCancelled(t *testing.T) {
	store := &fakeLifecycleStore{expired: 2, reaps: make(chan struct{}, 1)}
	m := NewLifecycleManager(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunReaper(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-store.reaps:
	case <-time.After(time.Second):
		t.Fatal("reaper never called ExpireOverdue")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancellation")
	}
}
