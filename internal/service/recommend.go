package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rentrobo/internal/metrics"
	"rentrobo/internal/model"
)

// ListingStore is the listing data the services read
type ListingStore interface {
	ListListings(ctx context.Context, limit, offset int) ([]model.Listing, int, error)
	GetListingByID(ctx context.Context, id int64) (*model.Listing, error)
	ListCandidates(ctx context.Context, maxDrivingM float64) ([]model.Listing, error)
}

// Recommender produces listing recommendations for a chat payload
type Recommender interface {
	Recommend(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, error)
}

// LocalRecommender ranks candidate listings from the database
type LocalRecommender struct {
	store       ListingStore
	ranker      *Ranker
	maxDrivingM float64
}

// NewLocalRecommender creates the built-in recommender
func NewLocalRecommender(store ListingStore, ranker *Ranker, maxDrivingM float64) *LocalRecommender {
	return &LocalRecommender{
		store:       store,
		ranker:      ranker,
		maxDrivingM: maxDrivingM,
	}
}

// Recommend implements Recommender
func (r *LocalRecommender) Recommend(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, error) {
	candidates, err := r.store.ListCandidates(ctx, r.maxDrivingM)
	if err != nil {
		return nil, err
	}
	return r.ranker.RankResults(candidates, payload)
}

// RecommendService fronts a Recommender with the cache and metrics
type RecommendService struct {
	backend Recommender
	cache   *RecommendationCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRecommendService creates a recommendation service. cache and m may be nil.
func NewRecommendService(backend Recommender, cache *RecommendationCache, m *metrics.Metrics, logger *slog.Logger) *RecommendService {
	return &RecommendService{
		backend: backend,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Recommend returns recommendations for payload. An unknown neighbourhood
// yields an empty list; a rent that is not a number is an error.
func (s *RecommendService) Recommend(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, error) {
	start := time.Now()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, payload)
		if err != nil {
			s.logger.Warn("recommendation cache read failed", "error", err)
		} else if ok {
			s.metrics.Recommended(metrics.OutcomeCacheHit, time.Since(start).Seconds())
			return cached, nil
		}
	}

	recs, err := s.backend.Recommend(ctx, payload)
	if errors.Is(err, ErrUnknownNeighbourhood) {
		s.logger.Debug("no recommendations for neighbourhood",
			"neighbourhood", payload.CurrentLivingConditions.PreferredNeighbourhood)
		recs, err = []model.Recommendation{}, nil
	}
	if err != nil {
		s.metrics.Recommended(metrics.OutcomeError, time.Since(start).Seconds())
		return nil, fmt.Errorf("recommend: %w", err)
	}

	outcome := metrics.OutcomeOK
	if len(recs) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.Recommended(outcome, time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.Set(ctx, payload, recs); err != nil {
			s.logger.Warn("recommendation cache write failed", "error", err)
		}
	}
	return recs, nil
}
