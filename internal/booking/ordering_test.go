package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aanchal7915/holy-heart-backend/internal/model"
)

type fakeCounter struct {
	next  uint64
	calls int
	err   error
}

func (f *fakeCounter) Next(ctx context.Context, serviceID uint64) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

func offerings(ids ...uint64) []model.ProviderOffering {
	out := make([]model.ProviderOffering, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.ProviderOffering{DoctorID: id})
	}
	return out
}

func doctorIDs(ps []model.ProviderOffering) []uint64 {
	out := make([]uint64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.DoctorID)
	}
	return out
}

func TestOrderRotatesAcrossRequests(t *testing.T) {
	counter := &fakeCounter{}
	policy := NewOrderingPolicy(counter)
	ctx := context.Background()

	got, err := policy.Order(ctx, 10, offerings(1, 2, 3), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 1}, doctorIDs(got))

	got, err = policy.Order(ctx, 10, offerings(1, 2, 3), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 2}, doctorIDs(got))

	got, err = policy.Order(ctx, 10, offerings(1, 2, 3), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, doctorIDs(got))

	assert.Equal(t, 3, counter.calls)
}

func TestOrderPreferredDoctorFirst(t *testing.T) {
	counter := &fakeCounter{}
	policy := NewOrderingPolicy(counter)

	got, err := policy.Order(context.Background(), 10, offerings(1, 2, 3), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1, 3}, doctorIDs(got))
	// An explicit preference must not burn a rotation turn.
	assert.Equal(t, 0, counter.calls)
}

func TestOrderPreferredDoctorNotOffering(t *testing.T) {
	counter := &fakeCounter{}
	policy := NewOrderingPolicy(counter)

	got, err := policy.Order(context.Background(), 10, offerings(1, 2, 3), 99)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 1}, doctorIDs(got))
	assert.Equal(t, 1, counter.calls)
}

func TestOrderSingleProviderStillConsumesCounter(t *testing.T) {
	counter := &fakeCounter{}
	policy := NewOrderingPolicy(counter)

	got, err := policy.Order(context.Background(), 10, offerings(7), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, doctorIDs(got))
	assert.Equal(t, 1, counter.calls)
}

func TestOrderCounterFailure(t *testing.T) {
	counter := &fakeCounter{err: errors.New("db down")}
	policy := NewOrderingPolicy(counter)

	_, err := policy.Order(context.Background(), 10, offerings(1, 2), 0)
	assert.Error(t, err)
}

func TestOrderEmptyProviders(t *testing.T) {
	policy := NewOrderingPolicy(&fakeCounter{})
	got, err := policy.Order(context.Background(), 10, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
