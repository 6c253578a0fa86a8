package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentrobo/internal/logger"
	"rentrobo/internal/metrics"
	"rentrobo/internal/model"
)

type fakeListingStore struct {
	listings   []model.Listing
	err        error
	maxDriving float64
	calls      int
}

func (f *fakeListingStore) ListListings(_ context.Context, limit, offset int) ([]model.Listing, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	end := offset + limit
	if offset > len(f.listings) {
		offset = len(f.listings)
	}
	if end > len(f.listings) {
		end = len(f.listings)
	}
	return f.listings[offset:end], len(f.listings), nil
}

func (f *fakeListingStore) GetListingByID(_ context.Context, id int64) (*model.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.listings {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeListingStore) ListCandidates(_ context.Context, maxDrivingM float64) ([]model.Listing, error) {
	f.calls++
	f.maxDriving = maxDrivingM
	return f.listings, f.err
}

func newTestCache(t *testing.T) (*RecommendationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRecommendationCache(client, 10*time.Minute), mr
}

func TestLocalRecommender(t *testing.T) {
	store := &fakeListingStore{listings: rankerListings()}
	local := NewLocalRecommender(store, NewRanker(10), 25000)

	recs, err := local.Recommend(context.Background(), rankerPayload(2000, model.PreferenceOfFutureHouse{}))
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, 25000.0, store.maxDriving)

	store.err = errors.New("db down")
	_, err = local.Recommend(context.Background(), rankerPayload(2000, model.PreferenceOfFutureHouse{}))
	assert.Error(t, err)
}

func TestRecommendService_CachesResults(t *testing.T) {
	store := &fakeListingStore{listings: rankerListings()}
	cache, mr := newTestCache(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewRecommendService(NewLocalRecommender(store, NewRanker(10), 25000), cache, m, logger.Discard())

	payload := rankerPayload(2000, model.PreferenceOfFutureHouse{})
	first, err := svc.Recommend(context.Background(), payload)
	require.NoError(t, err)

	key, err := CacheKey(payload)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	second, err := svc.Recommend(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, store.calls, "the second request is served from the cache")

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeCacheHit)))
}

func TestRecommendService_UnknownNeighbourhoodIsEmpty(t *testing.T) {
	store := &fakeListingStore{listings: rankerListings()}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewRecommendService(NewLocalRecommender(store, NewRanker(10), 25000), nil, m, logger.Discard())

	payload := rankerPayload(2000, model.PreferenceOfFutureHouse{})
	payload.CurrentLivingConditions.PreferredNeighbourhood = "Cambridge"

	recs, err := svc.Recommend(context.Background(), payload)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Recommendations.WithLabelValues(metrics.OutcomeEmpty)))
}

func TestRecommendService_RentNotANumber(t *testing.T) {
	store := &fakeListingStore{listings: rankerListings()}
	cache, mr := newTestCache(t)
	svc := NewRecommendService(NewLocalRecommender(store, NewRanker(10), 25000), cache, nil, logger.Discard())

	_, err := svc.Recommend(context.Background(), rankerPayload(math.NaN(), model.PreferenceOfFutureHouse{}))
	assert.ErrorIs(t, err, ErrRentNotANumber)
	assert.Empty(t, mr.Keys(), "failures are not cached")
}

func TestRecommendService_CacheDownFallsThrough(t *testing.T) {
	store := &fakeListingStore{listings: rankerListings()}
	cache, mr := newTestCache(t)
	mr.Close()
	svc := NewRecommendService(NewLocalRecommender(store, NewRanker(10), 25000), cache, nil, logger.Discard())

	recs, err := svc.Recommend(context.Background(), rankerPayload(2000, model.PreferenceOfFutureHouse{}))
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}
