package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"rentrobo/internal/model"
)

// RemoteRecommender posts the payload to an external recommendation API
// that answers {"recommendations": [...]}.
type RemoteRecommender struct {
	url        string
	httpClient *http.Client
}

// NewRemoteRecommender creates a client for the API at url
func NewRemoteRecommender(url string, timeoutSeconds int) *RemoteRecommender {
	return &RemoteRecommender{
		url: url,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Recommend implements Recommender
func (c *RemoteRecommender) Recommend(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, error) {
	if rent := payload.CurrentLivingConditions.Rent; math.IsNaN(rent) || math.IsInf(rent, 0) {
		return nil, ErrRentNotANumber
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommendation API failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result model.RecommendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.Recommendations == nil {
		result.Recommendations = []model.Recommendation{}
	}
	return result.Recommendations, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
