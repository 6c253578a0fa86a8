package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// FinalPayload is the structured output of a completed chat conversation,
// consumed by the recommendation backend.
type FinalPayload struct {
	CurrentLivingConditions CurrentLivingConditions `json:"current_living_conditions"`
	PreferenceOfFutureHouse PreferenceOfFutureHouse `json:"preference_of_future_house"`
}

// CurrentLivingConditions encodes as the 5-tuple
// [location, preferredNeighbourhood, rent, bed, bath].
type CurrentLivingConditions struct {
	Location               string
	PreferredNeighbourhood string
	Rent                   float64 // NaN when the typed rent was not numeric
	Bed                    int
	Bath                   int
}

// PreferenceOfFutureHouse holds the preference ranks (1=High, 3=Low, nil=unranked).
type PreferenceOfFutureHouse struct {
	Rent     *int `json:"Rent"`
	Location *int `json:"Location"`
	Safety   *int `json:"Safety"`
}

// MarshalJSON writes the tuple form. JSON has no NaN or Infinity, so a
// non-finite rent is written as null.
func (c CurrentLivingConditions) MarshalJSON() ([]byte, error) {
	var rent any
	if !math.IsNaN(c.Rent) && !math.IsInf(c.Rent, 0) {
		rent = c.Rent
	}
	return json.Marshal([]any{c.Location, c.PreferredNeighbourhood, rent, c.Bed, c.Bath})
}

// UnmarshalJSON reads the tuple form. A null rent decodes as NaN.
func (c *CurrentLivingConditions) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("current_living_conditions must be an array: %w", err)
	}
	if len(raw) != 5 {
		return fmt.Errorf("current_living_conditions must have 5 elements, got %d", len(raw))
	}

	var out CurrentLivingConditions
	if err := json.Unmarshal(raw[0], &out.Location); err != nil {
		return fmt.Errorf("current_living_conditions[0]: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.PreferredNeighbourhood); err != nil {
		return fmt.Errorf("current_living_conditions[1]: %w", err)
	}

	if bytes.Equal(bytes.TrimSpace(raw[2]), []byte("null")) {
		out.Rent = math.NaN()
	} else if err := json.Unmarshal(raw[2], &out.Rent); err != nil {
		return fmt.Errorf("current_living_conditions[2]: %w", err)
	}

	var bed, bath float64
	if err := json.Unmarshal(raw[3], &bed); err != nil {
		return fmt.Errorf("current_living_conditions[3]: %w", err)
	}
	if err := json.Unmarshal(raw[4], &bath); err != nil {
		return fmt.Errorf("current_living_conditions[4]: %w", err)
	}
	out.Bed = int(bed)
	out.Bath = int(bath)

	*c = out
	return nil
}

// Weights returns the preference ranks as scaling factors in
// [Rent, Location, Safety] order; unranked entries count as 1.
func (p PreferenceOfFutureHouse) Weights() [3]float64 {
	w := [3]float64{1, 1, 1}
	for i, r := range []*int{p.Rent, p.Location, p.Safety} {
		if r != nil {
			w[i] = float64(*r)
		}
	}
	return w
}
