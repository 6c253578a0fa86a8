package model

import (
	"time"
)

// Campus names double as the preferred-neighbourhood choices of the chat widget.
const (
	CampusNortheastern     = "Northeastern University"
	CampusBostonUniversity = "Boston University"
	CampusBostonCollege    = "Boston College"
)

// Listing represents a rental listing with its neighbourhood statistics.
// JSON keys follow the column names of the source dataset the front end renders.
type Listing struct {
	ID                       int64     `json:"id" db:"id"`
	AreaName                 string    `json:"Area Name" db:"area_name"`
	Address                  string    `json:"Address" db:"address"`
	Rent                     float64   `json:"Rent" db:"rent"`
	Bed                      float64   `json:"Bed" db:"bed"`
	Bath                     float64   `json:"Bath" db:"bath"`
	ViolentCrimeRate         float64   `json:"Violent CrimeRate" db:"violent_crime_rate"`
	OverallCrimeRate         float64   `json:"Overall CrimeRate" db:"overall_crime_rate"`
	NortheasternTransitM     *float64  `json:"Northeastern University_transit,omitempty" db:"northeastern_transit_m"`
	BostonUniversityTransitM *float64  `json:"Boston University_transit_distance,omitempty" db:"boston_university_transit_m"`
	BostonCollegeTransitM    *float64  `json:"Boston College_transit_distance,omitempty" db:"boston_college_transit_m"`
	NortheasternDrivingM     *float64  `json:"Northeastern University_driving,omitempty" db:"northeastern_driving_m"`
	Latitude                 *float64  `json:"lat,omitempty" db:"latitude"`
	Longitude                *float64  `json:"lng,omitempty" db:"longitude"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// TransitDistanceTo returns the listing's transit distance in metres to the
// given campus. ok is false for an unknown campus or a missing value.
func (l *Listing) TransitDistanceTo(campus string) (float64, bool) {
	var d *float64
	switch campus {
	case CampusNortheastern:
		d = l.NortheasternTransitM
	case CampusBostonUniversity:
		d = l.BostonUniversityTransitM
	case CampusBostonCollege:
		d = l.BostonCollegeTransitM
	default:
		return 0, false
	}
	if d == nil {
		return 0, false
	}
	return *d, true
}

// IsKnownCampus reports whether campus has a transit-distance column.
func IsKnownCampus(campus string) bool {
	switch campus {
	case CampusNortheastern, CampusBostonUniversity, CampusBostonCollege:
		return true
	}
	return false
}

// Recommendation is a listing scored against a chat payload
type Recommendation struct {
	Listing
	Similarity       float64  `json:"similarity"`
	Distance         float64  `json:"distance"`
	RentPerRoom      float64  `json:"newRent"`
	RentTradeoff     float64  `json:"rentTradeoff"`
	DistanceTradeoff float64  `json:"distanceTradeoff"`
	Tradeoff         float64  `json:"dataTradeoff"`
	Crime            float64  `json:"Crime"`
	MatchedReasons   []string `json:"matched_reasons"`
}
