package model

// ListingsPageRequest represents GET /get-data query parameters
type ListingsPageRequest struct {
	Page  int `form:"page"`
	Count int `form:"count"`
}

// ListingsPageResponse represents a page of listings
type ListingsPageResponse struct {
	Items    []Listing    `json:"items"`
	Metadata PageMetadata `json:"metadata"`
}

// PageMetadata describes the pagination of a listings page
type PageMetadata struct {
	Page       int `json:"page"`
	Count      int `json:"count"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// RecommendResponse represents POST /recommend output
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// Submission is a persisted completed conversation
type Submission struct {
	ID        int64        `json:"id"`
	SessionID string       `json:"session_id"`
	Payload   FinalPayload `json:"payload"`
}

// SimilarSubmissionsRequest represents GET /api/v1/submissions/similar query parameters
type SimilarSubmissionsRequest struct {
	Rent     *int `form:"rent" binding:"omitempty,min=1,max=3"`
	Location *int `form:"location" binding:"omitempty,min=1,max=3"`
	Safety   *int `form:"safety" binding:"omitempty,min=1,max=3"`
	Limit    int  `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SimilarSubmissionsResponse lists past submissions closest to a preference
type SimilarSubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
}
