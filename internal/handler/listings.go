package handler

import (
	"math"
	"net/http"
	"strconv"

	"rentrobo/internal/model"
	"rentrobo/internal/service"

	"github.com/gin-gonic/gin"
)

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	listings     *service.ListingService
	defaultCount int
	maxCount     int
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings *service.ListingService, defaultCount, maxCount int) *ListingHandler {
	return &ListingHandler{
		listings:     listings,
		defaultCount: defaultCount,
		maxCount:     maxCount,
	}
}

// GetData handles GET /get-data?page=&count=
func (h *ListingHandler) GetData(c *gin.Context) {
	var req model.ListingsPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate and cap paging
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Count <= 0 {
		req.Count = h.defaultCount
	}
	if req.Count > h.maxCount {
		req.Count = h.maxCount
	}
	if maxPage := math.MaxInt32 / req.Count; req.Page > maxPage {
		req.Page = maxPage
	}

	response, err := h.listings.Page(c.Request.Context(), req.Page, req.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing: " + err.Error()})
		return
	}

	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
