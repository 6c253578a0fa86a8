// Package chatbot implements the rental chat widget's conversation: a fixed
// sequence of prompts that collects the user's current housing situation and
// preference ranking and produces a model.FinalPayload.
package chatbot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"rentrobo/internal/model"
)

// Bot texts
const (
	GreetingText        = "Hi, welcome to RentRobo! We are here to help you ease your house hunting. How can I help you today?"
	LocationPrompt      = "Sure! Where do you currently stay?"
	RentPrompt          = "What is your current rent?"
	ApartmentTypePrompt = "What is your current apartment type?"
	BathCountPrompt     = "How many bathrooms does your current stay have?"
	NeighbourhoodPrompt = "Choose the preferred neighbourhood/ locality"
	ThankYouText        = "Thank you for your patience! You're almost done narrowing down the options for your next home. There's only one last question:"
	RankingPrompt       = "Please rate your preference on the following aspects: Rent, Neighbourhood preference, and Commute convenience."
)

// replyAfter is the bot reply sent once the answer for a step is accepted.
var replyAfter = map[Step]string{
	StepGreeting:      LocationPrompt,
	StepLocation:      RentPrompt,
	StepRent:          ApartmentTypePrompt,
	StepApartmentType: BathCountPrompt,
	StepBathCount:     NeighbourhoodPrompt,
}

// Default delays
const (
	DefaultTypingDelay       = 1000 * time.Millisecond
	DefaultInterstitialDelay = 1200 * time.Millisecond
	DefaultCloseDelay        = 500 * time.Millisecond
)

// Options configures a Conversation.
//
// OnEvent and OnComplete run while the conversation lock is held; they must
// not call back into the conversation.
type Options struct {
	TypingDelay       time.Duration
	InterstitialDelay time.Duration
	CloseDelay        time.Duration
	Scheduler         Scheduler
	OnEvent           func(Event)
	OnComplete        func(model.FinalPayload)
	Logger            *slog.Logger
}

// Conversation is the controller of one chat widget. All methods are safe
// for concurrent use; commands and delayed transitions are serialized.
type Conversation struct {
	mu   sync.Mutex
	opts Options

	steps    *fsm.FSM
	draft    Draft
	messages []Message

	open       bool
	complete   bool
	submitting bool
	disposed   bool
	typing     int

	tasks      taskSet
	completion uint64
	payload    *model.FinalPayload
}

// New returns a closed conversation at the greeting step.
func New(opts Options) *Conversation {
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = DefaultTypingDelay
	}
	if opts.InterstitialDelay <= 0 {
		opts.InterstitialDelay = DefaultInterstitialDelay
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	return &Conversation{
		opts:  opts,
		steps: newStepMachine(),
	}
}

// Handle dispatches cmd and reports whether it was accepted. Rejected
// commands leave the conversation unchanged.
func (c *Conversation) Handle(cmd Command) bool {
	switch cmd.Type {
	case CommandOpen:
		return c.Open()
	case CommandMinimize:
		return c.Minimize()
	case CommandClose:
		return c.Close()
	case CommandText:
		return c.SubmitText(cmd.Text)
	case CommandChoose:
		return c.Choose(cmd.Option)
	case CommandRank:
		return c.SetRank(cmd.Aspect, cmd.Rank)
	case CommandResetSurvey:
		return c.ResetSurvey()
	case CommandSubmit:
		return c.Submit()
	}
	return false
}

// Open shows the window. A completed conversation is replaced by a fresh
// one; an unfinished one resumes where it left off.
func (c *Conversation) Open() bool {
	return c.do(func() bool {
		if c.complete {
			c.resetLocked()
			c.complete = false
		}
		if !c.open {
			c.open = true
			c.emit(Event{Type: EventWindow})
		}
		if len(c.messages) == 0 {
			c.emit(Event{Type: EventStarted})
			c.appendMessage(Message{Sender: SenderBot, Text: GreetingText})
		}
		return true
	})
}

// Minimize hides the window and keeps all state.
func (c *Conversation) Minimize() bool {
	return c.do(func() bool {
		if !c.open {
			return false
		}
		c.open = false
		c.emit(Event{Type: EventWindow})
		return true
	})
}

// Close hides the window and ends the conversation. Unfinished answers are
// discarded; a submission already in flight is delivered first.
func (c *Conversation) Close() bool {
	return c.do(func() bool {
		if c.submitting {
			c.finishSubmitLocked()
		}
		abandoned := !c.complete && len(c.messages) > 0
		c.resetLocked()
		c.complete = true
		c.open = false
		c.emit(Event{Type: EventClosed, Abandoned: abandoned})
		return true
	})
}

// SubmitText accepts a typed answer at the greeting, location and rent steps.
func (c *Conversation) SubmitText(text string) bool {
	return c.do(func() bool {
		if !c.acceptingInput() {
			return false
		}
		step := c.currentStep()
		if step != StepGreeting && step != StepLocation && step != StepRent {
			return false
		}
		if !acceptText(text) {
			return false
		}
		c.appendMessage(Message{Sender: SenderUser, Text: text})
		c.draft.assign(step, text)
		c.botReply(replyAfter[step], step+1)
		return true
	})
}

// Choose accepts one of the fixed options of a button step.
func (c *Conversation) Choose(option string) bool {
	return c.do(func() bool {
		if !c.acceptingInput() {
			return false
		}
		step := c.currentStep()
		label, ok := resolveChoice(step, option)
		if !ok {
			return false
		}
		c.appendMessage(Message{Sender: SenderUser, Text: label})
		c.draft.assign(step, label)

		if step == StepNeighbourhood {
			c.botReply(ThankYouText, StepInterstitial)
			c.schedule(c.opts.InterstitialDelay, func() {
				c.botReply(RankingPrompt, StepRanking)
			})
			return true
		}
		c.botReply(replyAfter[step], step+1)
		return true
	})
}

// SetRank ranks an aspect. A rank already held by another aspect is
// disabled and the command is rejected.
func (c *Conversation) SetRank(aspect Aspect, rank Rank) bool {
	return c.do(func() bool {
		if !c.acceptingInput() || c.currentStep() != StepRanking {
			return false
		}
		if _, ok := aspectIndex(aspect); !ok || !rank.Valid() {
			return false
		}
		if c.draft.SurveyResults.OptionDisabled(aspect, rank) {
			return false
		}
		c.draft.SurveyResults.Set(aspect, rank)
		c.emitSurvey()
		return true
	})
}

// ResetSurvey clears all three ranks.
func (c *Conversation) ResetSurvey() bool {
	return c.do(func() bool {
		if !c.acceptingInput() || c.currentStep() != StepRanking {
			return false
		}
		if c.draft.SurveyResults.Reset() {
			c.emitSurvey()
		}
		return true
	})
}

// Submit finishes the conversation once every aspect holds a distinct rank.
// The payload is built immediately and delivered to OnComplete after the
// close delay, together with the window closing.
func (c *Conversation) Submit() bool {
	return c.do(func() bool {
		if !c.acceptingInput() || c.currentStep() != StepRanking {
			return false
		}
		if !c.draft.SurveyResults.Bijective() {
			return false
		}
		payload := Transform(c.draft)
		c.payload = &payload
		c.draft = Draft{}
		c.submitting = true
		c.emit(Event{Type: EventSubmitted})
		c.completion = c.schedule(c.opts.CloseDelay, c.finishSubmitLocked)
		return true
	})
}

// Dispose cancels every pending delay. A disposed conversation rejects all
// commands and never calls OnComplete.
func (c *Conversation) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks.cancelAll()
	c.typing = 0
	c.submitting = false
	c.payload = nil
	c.disposed = true
}

// Step returns the current step index.
func (c *Conversation) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStep()
}

// PendingTasks returns the number of scheduled delays not yet fired.
func (c *Conversation) PendingTasks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks.pending()
}

// do runs fn under the lock unless the conversation is disposed.
func (c *Conversation) do(fn func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false
	}
	return fn()
}

func (c *Conversation) currentStep() Step {
	return stepFromState(c.steps.Current())
}

func (c *Conversation) acceptingInput() bool {
	return c.open && !c.complete && !c.submitting && c.typing == 0
}

// resetLocked drops the draft, the transcript and every pending delay.
func (c *Conversation) resetLocked() {
	c.tasks.cancelAll()
	c.typing = 0
	c.submitting = false
	c.completion = 0
	c.payload = nil
	c.draft = Draft{}
	c.messages = nil
	c.steps.SetState(stepStates[StepGreeting])
}

// schedule runs fn under the lock after d, unless the conversation was reset
// or disposed in the meantime.
func (c *Conversation) schedule(d time.Duration, fn func()) uint64 {
	id := c.tasks.reserve()
	generation := c.tasks.generation
	stop := c.opts.Scheduler.Schedule(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed || c.tasks.generation != generation {
			return
		}
		if _, live := c.tasks.stops[id]; !live {
			return
		}
		c.tasks.done(id)
		fn()
	})
	c.tasks.track(id, stop)
	return id
}

// botReply shows the typing placeholder, then replaces it with text and
// moves to next once the typing delay has elapsed.
func (c *Conversation) botReply(text string, next Step) {
	index := c.appendMessage(Message{Sender: SenderBot, Typing: true})
	c.typing++
	c.schedule(c.opts.TypingDelay, func() {
		c.typing--
		c.messages[index] = Message{Sender: SenderBot, Text: text}
		msg := c.messages[index]
		c.emit(Event{Type: EventMessageUpdated, Index: index, Message: &msg})

		if err := advanceTo(c.steps, next); err != nil {
			c.opts.Logger.Error("conversation step transition failed", "error", err)
			return
		}
		c.emit(Event{Type: EventStep})
	})
}

func (c *Conversation) finishSubmitLocked() {
	if !c.submitting || c.payload == nil {
		return
	}
	if stop, ok := c.tasks.stops[c.completion]; ok {
		stop()
		c.tasks.done(c.completion)
	}
	payload := *c.payload
	c.payload = nil
	c.completion = 0
	c.submitting = false
	c.open = false
	c.complete = true
	c.emit(Event{Type: EventCompleted, Payload: &payload})
	if c.opts.OnComplete != nil {
		c.opts.OnComplete(payload)
	}
}

func (c *Conversation) appendMessage(m Message) int {
	c.messages = append(c.messages, m)
	index := len(c.messages) - 1
	msg := m
	c.emit(Event{Type: EventMessage, Index: index, Message: &msg})
	return index
}

func (c *Conversation) emitSurvey() {
	survey := c.draft.SurveyResults
	c.emit(Event{Type: EventSurvey, Survey: &survey})
}

func (c *Conversation) emit(e Event) {
	if c.opts.OnEvent == nil {
		return
	}
	e.Step = c.currentStep()
	e.Open = c.open
	c.opts.OnEvent(e)
}
