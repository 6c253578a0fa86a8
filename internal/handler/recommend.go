package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"rentrobo/internal/model"
	"rentrobo/internal/service"
)

// MissingPayloadMessage is the 400 message for a request lacking either part
// of the payload.
const MissingPayloadMessage = "Invalid input. Please provide both current_living_conditions and preference_of_future_house"

const payloadSchemaURL = "payload.json"

const payloadSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["current_living_conditions", "preference_of_future_house"],
	"properties": {
		"current_living_conditions": {
			"type": "array",
			"minItems": 5,
			"maxItems": 5,
			"prefixItems": [
				{"type": "string"},
				{"type": "string"},
				{"type": ["number", "null"]},
				{"type": "integer", "minimum": 0},
				{"type": "integer", "minimum": 0}
			]
		},
		"preference_of_future_house": {
			"type": "object",
			"minProperties": 1,
			"properties": {
				"Rent": {"type": ["integer", "null"], "minimum": 1, "maximum": 3},
				"Location": {"type": ["integer", "null"], "minimum": 1, "maximum": 3},
				"Safety": {"type": ["integer", "null"], "minimum": 1, "maximum": 3}
			}
		}
	}
}`

// Recommender produces recommendations for a payload
type Recommender interface {
	Recommend(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, error)
}

// RecommendHandler handles POST /recommend
type RecommendHandler struct {
	recommender Recommender
	schema      *jsonschema.Schema
	logger      *slog.Logger
}

// NewRecommendHandler creates a new recommend handler
func NewRecommendHandler(recommender Recommender, logger *slog.Logger) (*RecommendHandler, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(payloadSchemaURL, strings.NewReader(payloadSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(payloadSchemaURL)
	if err != nil {
		return nil, err
	}
	return &RecommendHandler{
		recommender: recommender,
		schema:      schema,
		logger:      logger,
	}, nil
}

// Recommend handles POST /recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !hasBothParts(doc) {
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingPayloadMessage})
		return
	}
	if err := h.schema.Validate(doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var payload model.FinalPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	recs, err := h.recommender.Recommend(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrRentNotANumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: rent must be a number"})
			return
		}
		h.logger.Error("recommendation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.RecommendResponse{Recommendations: recs})
}

// hasBothParts reports whether both payload parts are present and non-empty
func hasBothParts(doc any) bool {
	obj, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	return nonEmpty(obj["current_living_conditions"]) && nonEmpty(obj["preference_of_future_house"])
}

func nonEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
