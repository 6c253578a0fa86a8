package chatbot

import (
	"strings"

	"rentrobo/internal/model"
	"rentrobo/internal/utils"
)

// Transform converts a finished draft into the payload the recommendation
// backend expects. It never fails: a non-numeric rent becomes NaN and
// unit strings without digits become 0.
//
// The preference remap is not name-for-name: Location carries the
// "Commute convenience" rank and Safety carries the "Neighbourhood
// preference" rank. Consumers depend on this exact mapping.
func Transform(d Draft) model.FinalPayload {
	return model.FinalPayload{
		CurrentLivingConditions: model.CurrentLivingConditions{
			Location:               d.Location,
			PreferredNeighbourhood: d.PreferredNeighbourhood,
			Rent:                   utils.ParseLeadingDecimal(d.Rent),
			Bed:                    BedCount(d.ApartmentType),
			Bath:                   BathCount(d.BathCount),
		},
		PreferenceOfFutureHouse: model.PreferenceOfFutureHouse{
			Rent:     d.SurveyResults.rankPtr(AspectLowerRent),
			Location: d.SurveyResults.rankPtr(AspectCommute),
			Safety:   d.SurveyResults.rankPtr(AspectNeighbourhood),
		},
	}
}

// BedCount maps an apartment type to a bedroom count ("Studio" -> 0).
func BedCount(apartmentType string) int {
	if strings.EqualFold(apartmentType, "studio") {
		return 0
	}
	return utils.FirstDigitRun(apartmentType)
}

// BathCount maps a bathroom choice to a count ("3 or more" -> 3).
func BathCount(bathCount string) int {
	return utils.FirstDigitRun(bathCount)
}
