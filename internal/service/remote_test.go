package service

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentrobo/internal/model"
)

func TestRemoteRecommender(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		received = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendations":[{"id":3,"Area Name":"Fenway","Address":"165 Hemenway Unit 5","Rent":2950,"similarity":0.91}]}`))
	}))
	defer server.Close()

	one := 1
	remote := NewRemoteRecommender(server.URL, 5)
	recs, err := remote.Recommend(context.Background(), rankerPayload(1450, model.PreferenceOfFutureHouse{Rent: &one}))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Fenway", recs[0].AreaName)
	assert.Equal(t, 2950.0, recs[0].Rent)
	assert.Equal(t, 0.91, recs[0].Similarity)

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(received), &sent))
	assert.JSONEq(t, `["Boston","Boston College",1450,1,0]`, string(sent["current_living_conditions"]))
	assert.JSONEq(t, `{"Rent":1,"Location":null,"Safety":null}`, string(sent["preference_of_future_house"]))
}

func TestRemoteRecommender_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Error running recommendation script"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	remote := NewRemoteRecommender(server.URL, 5)
	_, err := remote.Recommend(context.Background(), rankerPayload(1450, model.PreferenceOfFutureHouse{}))
	assert.ErrorContains(t, err, "status 500")

	_, err = remote.Recommend(context.Background(), rankerPayload(math.NaN(), model.PreferenceOfFutureHouse{}))
	assert.ErrorIs(t, err, ErrRentNotANumber)
}

func TestRemoteRecommender_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	recs, err := NewRemoteRecommender(server.URL, 5).Recommend(context.Background(), rankerPayload(1450, model.PreferenceOfFutureHouse{}))
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
