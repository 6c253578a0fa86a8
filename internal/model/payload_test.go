package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalPayload_Decode(t *testing.T) {
	body := `{
		"current_living_conditions": ["Boston", "Boston College", 1450, 2, 1],
		"preference_of_future_house": {"Rent": 1, "Location": 2, "Safety": null}
	}`

	var p FinalPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	clc := p.CurrentLivingConditions
	assert.Equal(t, "Boston", clc.Location)
	assert.Equal(t, CampusBostonCollege, clc.PreferredNeighbourhood)
	assert.Equal(t, 1450.0, clc.Rent)
	assert.Equal(t, 2, clc.Bed)
	assert.Equal(t, 1, clc.Bath)

	require.NotNil(t, p.PreferenceOfFutureHouse.Rent)
	assert.Equal(t, 1, *p.PreferenceOfFutureHouse.Rent)
	assert.Nil(t, p.PreferenceOfFutureHouse.Safety)
}

func TestCurrentLivingConditions_NullRent(t *testing.T) {
	var c CurrentLivingConditions
	require.NoError(t, json.Unmarshal([]byte(`["Allston", "Boston University", null, 0, 1]`), &c))
	assert.True(t, math.IsNaN(c.Rent))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `["Allston", "Boston University", null, 0, 1]`, string(out))
}

func TestCurrentLivingConditions_InfiniteRent(t *testing.T) {
	out, err := json.Marshal(CurrentLivingConditions{Rent: math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `["", "", null, 0, 0]`, string(out))
}

func TestCurrentLivingConditions_BadShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Object", body: `{"location": "Boston"}`},
		{name: "Too short", body: `["Boston", "Boston College", 1450, 2]`},
		{name: "Rent as text", body: `["Boston", "Boston College", "1450", 2, 1]`},
		{name: "Bed as text", body: `["Boston", "Boston College", 1450, "two", 1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c CurrentLivingConditions
			assert.Error(t, json.Unmarshal([]byte(tt.body), &c))
		})
	}
}

func TestPreferenceOfFutureHouse_Weights(t *testing.T) {
	one, three := 1, 3
	p := PreferenceOfFutureHouse{Rent: &three, Safety: &one}
	assert.Equal(t, [3]float64{3, 1, 1}, p.Weights())
	assert.Equal(t, [3]float64{1, 1, 1}, PreferenceOfFutureHouse{}.Weights())
}
