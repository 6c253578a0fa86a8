package service

import (
	"context"

	"rentrobo/internal/model"
)

// ListingService serves the listing pages
type ListingService struct {
	store ListingStore
}

// NewListingService creates a new listing service
func NewListingService(store ListingStore) *ListingService {
	return &ListingService{store: store}
}

// Page returns page (1-based) of count listings. Callers normalise page
// and count.
func (s *ListingService) Page(ctx context.Context, page, count int) (*model.ListingsPageResponse, error) {
	items, total, err := s.store.ListListings(ctx, count, (page-1)*count)
	if err != nil {
		return nil, err
	}

	totalPages := (total + count - 1) / count
	return &model.ListingsPageResponse{
		Items: items,
		Metadata: model.PageMetadata{
			Page:       page,
			Count:      count,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetListing retrieves a single listing by ID
func (s *ListingService) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	return s.store.GetListingByID(ctx, id)
}
