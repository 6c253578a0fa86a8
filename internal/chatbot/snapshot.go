package chatbot

// Snapshot is a read-only copy of a conversation, shaped for rendering.
type Snapshot struct {
	Step       Step        `json:"step"`
	Open       bool        `json:"open"`
	Complete   bool        `json:"complete"`
	Typing     bool        `json:"typing"`
	Submitting bool        `json:"submitting"`
	Messages   []Message   `json:"messages"`
	Draft      Draft       `json:"draft"`
	Choices    []string    `json:"choices,omitempty"`
	Survey     *SurveyView `json:"survey,omitempty"`
}

// SurveyView renders the ranking step: every aspect with its rank options
// and which of them are disabled.
type SurveyView struct {
	Aspects       []AspectView `json:"aspects"`
	SubmitEnabled bool         `json:"submit_enabled"`
}

// AspectView is one ranked aspect of the survey.
type AspectView struct {
	Aspect  Aspect       `json:"aspect"`
	Rank    *int         `json:"rank"`
	Options []RankOption `json:"options"`
}

// RankOption is one selectable rank for an aspect.
type RankOption struct {
	Rank     Rank   `json:"rank"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled"`
}

// Snapshot returns a copy of the current state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.currentStep()
	snap := Snapshot{
		Step:       step,
		Open:       c.open,
		Complete:   c.complete,
		Typing:     c.typing > 0,
		Submitting: c.submitting,
		Messages:   append([]Message(nil), c.messages...),
		Draft:      c.draft,
	}

	if c.complete {
		return snap
	}
	if c.typing == 0 && ChoicesFor(step) != nil {
		snap.Choices = append([]string(nil), ChoicesFor(step)...)
	}
	if step == StepRanking {
		view := SurveyViewOf(c.draft.SurveyResults)
		view.SubmitEnabled = view.SubmitEnabled && !c.submitting
		snap.Survey = &view
	}
	return snap
}

// SurveyViewOf renders survey results with the disabled-option rule applied.
func SurveyViewOf(s SurveyResults) SurveyView {
	view := SurveyView{SubmitEnabled: s.Bijective()}
	for _, aspect := range Aspects {
		current, _ := s.Get(aspect)
		av := AspectView{Aspect: aspect, Rank: s.rankPtr(aspect)}
		for _, r := range Ranks {
			av.Options = append(av.Options, RankOption{
				Rank:     r,
				Label:    r.String(),
				Selected: current == r,
				Disabled: s.OptionDisabled(aspect, r),
			})
		}
		view.Aspects = append(view.Aspects, av)
	}
	return view
}
