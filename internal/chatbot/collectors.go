package chatbot

import (
	"strings"

	"rentrobo/internal/model"
	"rentrobo/internal/utils"
)

// Draft is the in-progress record of one conversation's answers. Every field
// is stored exactly as the user gave it; conversion happens in Transform.
type Draft struct {
	Greeting               string        `json:"greeting,omitempty"`
	Location               string        `json:"location"`
	Rent                   string        `json:"rent"`
	ApartmentType          string        `json:"apartmentType"`
	BathCount              string        `json:"bathCount"`
	PreferredNeighbourhood string        `json:"preferredNeighbourhood"`
	SurveyResults          SurveyResults `json:"surveyResults"`
}

// Choice sets for the button steps, in display order.
var (
	ApartmentTypes = []string{"Studio", "1 bed", "2 bed", "3 bed", "4 bed", "5 bed or more"}
	BathCounts     = []string{"1 bath", "2 bath", "3 or more"}
	Neighbourhoods = []string{model.CampusNortheastern, model.CampusBostonUniversity, model.CampusBostonCollege}
)

var choiceAliases = map[Step]map[string]string{
	StepApartmentType: {
		"0 bed":   "Studio",
		"1":       "1 bed",
		"2":       "2 bed",
		"3":       "3 bed",
		"4":       "4 bed",
		"5":       "5 bed or more",
		"5+":      "5 bed or more",
		"5+ bed":  "5 bed or more",
		"5 bed":   "5 bed or more",
		"one bed": "1 bed",
		"two bed": "2 bed",
	},
	StepBathCount: {
		"1":      "1 bath",
		"2":      "2 bath",
		"3":      "3 or more",
		"3+":     "3 or more",
		"3 bath": "3 or more",
	},
	StepNeighbourhood: {
		"neu":          model.CampusNortheastern,
		"northeastern": model.CampusNortheastern,
		"bu":           model.CampusBostonUniversity,
		"bc":           model.CampusBostonCollege,
	},
}

// ChoicesFor returns the option set of a button step, or nil for any other step.
func ChoicesFor(step Step) []string {
	switch step {
	case StepApartmentType:
		return ApartmentTypes
	case StepBathCount:
		return BathCounts
	case StepNeighbourhood:
		return Neighbourhoods
	}
	return nil
}

// acceptText is the typed-input contract: blank input is rejected, anything
// else is passed through verbatim.
func acceptText(text string) bool {
	return strings.TrimSpace(text) != ""
}

// resolveChoice is the choice contract: the input must name exactly one
// option of the step's set. The canonical label is returned.
func resolveChoice(step Step, input string) (string, bool) {
	options := ChoicesFor(step)
	if options == nil {
		return "", false
	}
	return utils.MatchOption(input, options, choiceAliases[step])
}

// assign stores an accepted answer on the draft field owned by step.
func (d *Draft) assign(step Step, value string) {
	switch step {
	case StepGreeting:
		d.Greeting = value
	case StepLocation:
		d.Location = value
	case StepRent:
		d.Rent = value
	case StepApartmentType:
		d.ApartmentType = value
	case StepBathCount:
		d.BathCount = value
	case StepNeighbourhood:
		d.PreferredNeighbourhood = value
	}
}
