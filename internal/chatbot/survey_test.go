package chatbot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyResults_OptionDisabled(t *testing.T) {
	var s SurveyResults
	s.Set(AspectLowerRent, RankHigh)

	assert.False(t, s.OptionDisabled(AspectLowerRent, RankHigh), "an aspect may keep its own rank")
	assert.True(t, s.OptionDisabled(AspectNeighbourhood, RankHigh))
	assert.True(t, s.OptionDisabled(AspectCommute, RankHigh))
	assert.False(t, s.OptionDisabled(AspectCommute, RankMedium))
}

func TestSurveyResults_SetIsUnconditional(t *testing.T) {
	var s SurveyResults
	s.Set(AspectLowerRent, RankHigh)
	s.Set(AspectCommute, RankHigh)

	rent, _ := s.Get(AspectLowerRent)
	commute, _ := s.Get(AspectCommute)
	assert.Equal(t, RankHigh, rent, "setting one aspect never clears another")
	assert.Equal(t, RankHigh, commute)

	s.Set(AspectNeighbourhood, RankLow)
	assert.True(t, s.Complete())
	assert.False(t, s.Bijective(), "a duplicated rank is not a valid ranking")
}

func TestSurveyResults_RejectsInvalidInput(t *testing.T) {
	var s SurveyResults
	assert.False(t, s.Set(Aspect("Safety"), RankHigh))
	assert.False(t, s.Set(AspectLowerRent, Rank(4)))
	assert.False(t, s.Set(AspectLowerRent, RankNone))

	_, ok := s.Get(Aspect("Safety"))
	assert.False(t, ok)
}

func TestSurveyResults_Reset(t *testing.T) {
	var s SurveyResults
	assert.False(t, s.Reset(), "resetting an empty survey changes nothing")

	s.Set(AspectLowerRent, RankMedium)
	assert.True(t, s.Reset())
	for _, a := range Aspects {
		r, _ := s.Get(a)
		assert.Equal(t, RankNone, r)
	}
}

func TestSurveyResults_JSON(t *testing.T) {
	s := ranked(1, 2, RankNone)

	body, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Lower Rent":1,"Neighbourhood preference":2,"Commute convenience":null}`, string(body))

	var decoded SurveyResults
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, s, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"Safety":1}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"Lower Rent":7}`), &decoded))
}

func TestSurveyViewOf(t *testing.T) {
	view := SurveyViewOf(ranked(RankHigh, RankNone, RankNone))
	require.Len(t, view.Aspects, 3)
	assert.False(t, view.SubmitEnabled)

	neighbourhood := view.Aspects[1]
	assert.Equal(t, AspectNeighbourhood, neighbourhood.Aspect)
	assert.Nil(t, neighbourhood.Rank)
	assert.True(t, neighbourhood.Options[0].Disabled, "High is held by Lower Rent")
	assert.False(t, neighbourhood.Options[1].Disabled)

	lowerRent := view.Aspects[0]
	assert.True(t, lowerRent.Options[0].Selected)
	assert.False(t, lowerRent.Options[0].Disabled)

	assert.True(t, SurveyViewOf(ranked(1, 2, 3)).SubmitEnabled)
	assert.False(t, SurveyViewOf(ranked(RankHigh, RankHigh, RankLow)).SubmitEnabled, "a shared rank cannot be submitted")
}
