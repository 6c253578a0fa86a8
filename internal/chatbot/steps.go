package chatbot

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Step is the conversation step index.
type Step int

const (
	StepInterstitial  Step = -1 // bot is between two messages, no input accepted
	StepGreeting      Step = 0
	StepLocation      Step = 1
	StepRent          Step = 2
	StepApartmentType Step = 3
	StepBathCount     Step = 4
	StepNeighbourhood Step = 5
	StepRanking       Step = 6
)

var stepStates = map[Step]string{
	StepInterstitial:  "interstitial",
	StepGreeting:      "greeting",
	StepLocation:      "location",
	StepRent:          "rent",
	StepApartmentType: "apartment_type",
	StepBathCount:     "bath_count",
	StepNeighbourhood: "neighbourhood",
	StepRanking:       "ranking",
}

func (s Step) String() string {
	if name, ok := stepStates[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

func stepFromState(state string) Step {
	for step, name := range stepStates {
		if name == state {
			return step
		}
	}
	return StepGreeting
}

const eventAdvance = "advance"

// newStepMachine builds the forward-only step graph. The only way back to
// the greeting is a forced reset.
func newStepMachine() *fsm.FSM {
	return fsm.NewFSM(
		stepStates[StepGreeting],
		fsm.Events{
			{Name: eventAdvance, Src: []string{stepStates[StepGreeting]}, Dst: stepStates[StepLocation]},
			{Name: eventAdvance, Src: []string{stepStates[StepLocation]}, Dst: stepStates[StepRent]},
			{Name: eventAdvance, Src: []string{stepStates[StepRent]}, Dst: stepStates[StepApartmentType]},
			{Name: eventAdvance, Src: []string{stepStates[StepApartmentType]}, Dst: stepStates[StepBathCount]},
			{Name: eventAdvance, Src: []string{stepStates[StepBathCount]}, Dst: stepStates[StepNeighbourhood]},
			{Name: eventAdvance, Src: []string{stepStates[StepNeighbourhood]}, Dst: stepStates[StepInterstitial]},
			{Name: eventAdvance, Src: []string{stepStates[StepInterstitial]}, Dst: stepStates[StepRanking]},
		},
		fsm.Callbacks{},
	)
}

// advanceTo moves the machine one step forward, checking that it lands on want.
func advanceTo(m *fsm.FSM, want Step) error {
	if err := m.Event(context.Background(), eventAdvance); err != nil {
		return fmt.Errorf("advance from %s: %w", m.Current(), err)
	}
	if got := stepFromState(m.Current()); got != want {
		return fmt.Errorf("advanced to %s, expected %s", got, want)
	}
	return nil
}
