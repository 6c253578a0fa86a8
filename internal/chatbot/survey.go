package chatbot

import (
	"encoding/json"
	"fmt"
)

// Aspect is one of the three ranked preference dimensions of the final step.
type Aspect string

const (
	AspectLowerRent     Aspect = "Lower Rent"
	AspectNeighbourhood Aspect = "Neighbourhood preference"
	AspectCommute       Aspect = "Commute convenience"
)

// Aspects lists the ranked aspects in display order.
var Aspects = []Aspect{AspectLowerRent, AspectNeighbourhood, AspectCommute}

// Rank is a preference rank. RankNone means unranked.
type Rank int

const (
	RankNone   Rank = 0
	RankHigh   Rank = 1
	RankMedium Rank = 2
	RankLow    Rank = 3
)

// Ranks lists the selectable ranks in display order.
var Ranks = []Rank{RankHigh, RankMedium, RankLow}

// Valid reports whether r is one of High, Medium or Low.
func (r Rank) Valid() bool {
	return r >= RankHigh && r <= RankLow
}

func (r Rank) String() string {
	switch r {
	case RankHigh:
		return "High"
	case RankMedium:
		return "Medium"
	case RankLow:
		return "Low"
	case RankNone:
		return "None"
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

func aspectIndex(a Aspect) (int, bool) {
	for i, candidate := range Aspects {
		if candidate == a {
			return i, true
		}
	}
	return 0, false
}

// SurveyResults maps each aspect to its rank. The zero value has every
// aspect unranked.
//
// Set is unconditional: it never clears another aspect holding the same
// rank. Exclusivity is enforced by callers through OptionDisabled, and
// Bijective is checked again before a payload is produced.
type SurveyResults struct {
	ranks [3]Rank
}

// Get returns the rank held by a. ok is false for an unknown aspect.
func (s SurveyResults) Get(a Aspect) (Rank, bool) {
	i, ok := aspectIndex(a)
	if !ok {
		return RankNone, false
	}
	return s.ranks[i], true
}

// Set assigns r to a. Unknown aspects and invalid ranks are ignored.
func (s *SurveyResults) Set(a Aspect, r Rank) bool {
	i, ok := aspectIndex(a)
	if !ok || !r.Valid() {
		return false
	}
	s.ranks[i] = r
	return true
}

// Reset clears every rank. It reports whether anything changed.
func (s *SurveyResults) Reset() bool {
	changed := s.ranks != [3]Rank{}
	s.ranks = [3]Rank{}
	return changed
}

// OptionDisabled reports whether rank r is unavailable for aspect a because
// some other aspect already holds it.
func (s SurveyResults) OptionDisabled(a Aspect, r Rank) bool {
	for i, other := range Aspects {
		if other != a && s.ranks[i] == r && r != RankNone {
			return true
		}
	}
	return false
}

// Complete reports whether every aspect is ranked.
func (s SurveyResults) Complete() bool {
	for _, r := range s.ranks {
		if r == RankNone {
			return false
		}
	}
	return true
}

// Bijective reports whether every aspect is ranked and no two share a rank.
func (s SurveyResults) Bijective() bool {
	if !s.Complete() {
		return false
	}
	seen := map[Rank]bool{}
	for _, r := range s.ranks {
		if seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

// rankPtr returns nil for an unranked aspect.
func (s SurveyResults) rankPtr(a Aspect) *int {
	r, ok := s.Get(a)
	if !ok || r == RankNone {
		return nil
	}
	v := int(r)
	return &v
}

// MarshalJSON writes {"Lower Rent": 1, "Neighbourhood preference": null, ...}.
func (s SurveyResults) MarshalJSON() ([]byte, error) {
	out := make(map[string]*int, len(Aspects))
	for _, a := range Aspects {
		out[string(a)] = s.rankPtr(a)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the map form. Unknown aspects are rejected.
func (s *SurveyResults) UnmarshalJSON(data []byte) error {
	var in map[string]*int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out SurveyResults
	for key, value := range in {
		i, ok := aspectIndex(Aspect(key))
		if !ok {
			return fmt.Errorf("unknown survey aspect %q", key)
		}
		if value == nil {
			continue
		}
		if r := Rank(*value); r.Valid() {
			out.ranks[i] = r
		} else {
			return fmt.Errorf("invalid rank %d for %q", *value, key)
		}
	}
	*s = out
	return nil
}
