package chatbot

import "rentrobo/internal/model"

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one chat bubble. A bot message with Typing set is the typing
// placeholder that is later replaced by the real text.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Typing bool   `json:"typing,omitempty"`
}

// EventType names a conversation change.
type EventType string

const (
	EventStarted        EventType = "started"
	EventWindow         EventType = "window"
	EventMessage        EventType = "message"
	EventMessageUpdated EventType = "message_updated"
	EventStep           EventType = "step"
	EventSurvey         EventType = "survey"
	EventSubmitted      EventType = "submitted"
	EventCompleted      EventType = "completed"
	EventClosed         EventType = "closed"
)

// Event describes one change. Step and Open always carry the state after
// the change; the other fields depend on Type.
type Event struct {
	Type      EventType           `json:"type"`
	Step      Step                `json:"step"`
	Open      bool                `json:"open"`
	Index     int                 `json:"index"`
	Message   *Message            `json:"message,omitempty"`
	Survey    *SurveyResults      `json:"survey,omitempty"`
	Abandoned bool                `json:"abandoned,omitempty"`
	Payload   *model.FinalPayload `json:"payload,omitempty"`
}

// CommandType names an inbound user action.
type CommandType string

const (
	CommandOpen        CommandType = "open"
	CommandMinimize    CommandType = "minimize"
	CommandClose       CommandType = "close"
	CommandText        CommandType = "text"
	CommandChoose      CommandType = "choose"
	CommandRank        CommandType = "rank"
	CommandResetSurvey CommandType = "reset_survey"
	CommandSubmit      CommandType = "submit"
)

// Command is an inbound user action addressed to a conversation.
type Command struct {
	Type   CommandType `json:"type" binding:"required"`
	Text   string      `json:"text,omitempty"`
	Option string      `json:"option,omitempty"`
	Aspect Aspect      `json:"aspect,omitempty"`
	Rank   Rank        `json:"rank,omitempty"`
}
