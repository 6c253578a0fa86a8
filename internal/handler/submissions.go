package handler

import (
	"context"
	"net/http"

	"rentrobo/internal/model"

	"github.com/gin-gonic/gin"
)

const defaultSimilarLimit = 5

// SubmissionFinder looks up stored chat submissions
type SubmissionFinder interface {
	SimilarSubmissions(ctx context.Context, pref model.PreferenceOfFutureHouse, limit int) ([]model.Submission, error)
}

// SubmissionHandler handles submission-related HTTP requests
type SubmissionHandler struct {
	submissions SubmissionFinder
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions SubmissionFinder) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
	}
}

// Similar handles GET /api/v1/submissions/similar
func (h *SubmissionHandler) Similar(c *gin.Context) {
	var req model.SimilarSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSimilarLimit
	}

	pref := model.PreferenceOfFutureHouse{Rent: req.Rent, Location: req.Location, Safety: req.Safety}
	submissions, err := h.submissions.SimilarSubmissions(c.Request.Context(), pref, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get submissions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SimilarSubmissionsResponse{Submissions: submissions})
}
