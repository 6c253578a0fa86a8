package service

import (
	"errors"
	"math"
	"sort"

	"rentrobo/internal/model"
)

// Match reason constants
const (
	ReasonLowerRent      = "Lower rent per room"
	ReasonShorterCommute = "Shorter commute"
	ReasonSaferArea      = "Safer neighbourhood"
	ReasonSameLayout     = "Same layout"
	ReasonGeneralMatch   = "General match"
)

// saferAreaCrimeCeiling is the aggregated crime score (0..3) below which an
// area counts as safer.
const saferAreaCrimeCeiling = 1.0

var (
	// ErrUnknownNeighbourhood is returned for a preferred neighbourhood
	// without transit distances.
	ErrUnknownNeighbourhood = errors.New("unknown preferred neighbourhood")
	// ErrRentNotANumber is returned when the payload rent is NaN or infinite.
	ErrRentNotANumber = errors.New("rent is not a number")
)

// Ranker scores listings against a chat payload
type Ranker struct {
	topN int
}

// NewRanker creates a ranker returning at most topN results
func NewRanker(topN int) *Ranker {
	return &Ranker{topN: topN}
}

// candidate is a listing with its derived features
type candidate struct {
	listing     model.Listing
	rentPerRoom float64
	transit     float64
}

// RankResults scores candidates by similarity to the user's situation and
// preference ranks and returns the best topN, most similar first.
//
// Each listing is the vector [transit, rentPerRoom, tradeoff] with transit
// and rent min-max scaled over the candidates. The user vector uses the
// user's scaled transit and rent and the mean tradeoff. Component
// differences are multiplied by the [Rent, Location, Safety] ranks and
// similarity is 1/(1+|diff|).
func (r *Ranker) RankResults(listings []model.Listing, payload model.FinalPayload) ([]model.Recommendation, error) {
	clc := payload.CurrentLivingConditions
	if math.IsNaN(clc.Rent) || math.IsInf(clc.Rent, 0) {
		return nil, ErrRentNotANumber
	}
	if !model.IsKnownCampus(clc.PreferredNeighbourhood) {
		return nil, ErrUnknownNeighbourhood
	}

	candidates := make([]candidate, 0, len(listings))
	for _, l := range listings {
		transit, ok := l.TransitDistanceTo(clc.PreferredNeighbourhood)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{
			listing:     l,
			rentPerRoom: l.Rent / rooms(l.Bed, l.Bath),
			transit:     transit,
		})
	}
	if len(candidates) == 0 {
		return []model.Recommendation{}, nil
	}

	rentPerRoom := make([]float64, len(candidates))
	transit := make([]float64, len(candidates))
	violent := make([]float64, len(candidates))
	overall := make([]float64, len(candidates))
	for i, c := range candidates {
		rentPerRoom[i] = c.rentPerRoom
		transit[i] = c.transit
		violent[i] = c.listing.ViolentCrimeRate
		overall[i] = c.listing.OverallCrimeRate
	}

	userRentPerRoom := clc.Rent / rooms(float64(clc.Bed), float64(clc.Bath))
	// no geocoding: the user sits at the candidates' average commute
	userTransit := mean(transit)
	avgRent := mean(rentPerRoom)
	avgTransit := userTransit

	tradeoff := make([]float64, len(candidates))
	rentTradeoff := make([]float64, len(candidates))
	distanceTradeoff := make([]float64, len(candidates))
	for i := range candidates {
		rentTradeoff[i] = math.Exp(safeDiv(rentPerRoom[i]-userRentPerRoom, avgRent) * 2)
		distanceTradeoff[i] = math.Exp(safeDiv(transit[i]-userTransit, avgTransit))
		tradeoff[i] = rentTradeoff[i] + distanceTradeoff[i]
	}

	scaledRent, userScaledRent := minMaxScale(rentPerRoom, userRentPerRoom)
	scaledTransit, userScaledTransit := minMaxScale(transit, userTransit)

	scaledViolent, _ := minMaxScale(violent, 0)
	scaledOverall, _ := minMaxScale(overall, 0)
	aggregated := make([]float64, len(candidates))
	for i := range candidates {
		aggregated[i] = 2*scaledViolent[i] + scaledOverall[i]
	}
	crime, _ := minMaxScale(aggregated, 0)

	weights := payload.PreferenceOfFutureHouse.Weights()
	input := [3]float64{userScaledTransit, userScaledRent, mean(tradeoff)}

	results := make([]model.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		vector := [3]float64{scaledTransit[i], scaledRent[i], tradeoff[i]}
		var sum float64
		for k := range vector {
			d := (input[k] - vector[k]) * weights[k]
			sum += d * d
		}
		distance := math.Sqrt(sum)

		rec := model.Recommendation{
			Listing:          c.listing,
			Similarity:       1 / (1 + distance),
			Distance:         distance,
			RentPerRoom:      c.rentPerRoom,
			RentTradeoff:     rentTradeoff[i],
			DistanceTradeoff: distanceTradeoff[i],
			Tradeoff:         tradeoff[i],
			Crime:            3 * crime[i],
		}
		rec.MatchedReasons = r.generateMatchedReasons(rec, clc, userRentPerRoom, userTransit)
		results = append(results, rec)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if r.topN > 0 && len(results) > r.topN {
		results = results[:r.topN]
	}
	return results, nil
}

// generateMatchedReasons generates human-readable reasons for why this listing matched
func (r *Ranker) generateMatchedReasons(
	rec model.Recommendation,
	clc model.CurrentLivingConditions,
	userRentPerRoom float64,
	userTransit float64,
) []string {
	reasons := []string{}

	if rec.RentPerRoom < userRentPerRoom {
		reasons = append(reasons, ReasonLowerRent)
	}
	if transit, ok := rec.TransitDistanceTo(clc.PreferredNeighbourhood); ok && transit < userTransit {
		reasons = append(reasons, ReasonShorterCommute)
	}
	if rec.Crime < saferAreaCrimeCeiling {
		reasons = append(reasons, ReasonSaferArea)
	}
	if int(rec.Bed) == clc.Bed && int(rec.Bath) == clc.Bath {
		reasons = append(reasons, ReasonSameLayout)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}

// rooms weighs a bathroom as half a room. A layout with no rooms counts as one.
func rooms(bed, bath float64) float64 {
	n := bed + 0.5*bath
	if n <= 0 {
		return 1
	}
	return n
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// minMaxScale scales values into [0,1] and scales input by the same bounds.
// A constant series scales to zero.
func minMaxScale(values []float64, input float64) ([]float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(values))
	span := hi - lo
	if span == 0 {
		return out, 0
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out, (input - lo) / span
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
