package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeContextSubscribe   = "context.subscribe"
	EventTypeContextUnsubscribe = "context.unsubscribe"
	EventTypePanelOpenThread    = "panel.open_thread"
	EventTypePanelOpenProfile   = "panel.open_profile"
	EventTypePanelClose         = "panel.close"
	EventTypeTypingStart        = "typing.start"
	EventTypeTypingStop         = "typing.stop"
	EventTypePing               = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew      = "message.new"
	EventTypeMessageEdited   = "message.edited"
	EventTypeMessageDeleted  = "message.deleted"
	EventTypeReactionUpdated = "reaction.updated"
	EventTypeThreadUpdated   = "thread.updated"
	EventTypePanelClosed     = "panel.closed"
	EventTypeTyping          = "typing"
	EventTypePresence        = "presence"
	EventTypePong            = "pong"
	EventTypeError           = "error"
)

// Event is the base envelope for all WebSocket messages. ContextID scopes an
// event to a channel or conversation; fanout is keyed on it.
type Event struct {
	Type      string          `json:"type"`
	ContextID *uuid.UUID      `json:"context_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type ContextPayload struct {
	ContextID uuid.UUID `json:"context_id"`
}

type PanelOpenThreadPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

type PanelOpenProfilePayload struct {
	MemberID uuid.UUID `json:"member_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type ReactionUpdatedPayload struct {
	MessageID uuid.UUID                `json:"message_id"`
	Summaries []domain.ReactionSummary `json:"summaries"`
}

type ThreadUpdatedPayload struct {
	RootID  uuid.UUID             `json:"root_id"`
	Summary *domain.ThreadSummary `json:"summary,omitempty"`
}

// PanelClosedPayload tells a client its open thread panel lost its root.
type PanelClosedPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

type TypingPayload struct {
	MemberID uuid.UUID `json:"member_id"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, contextID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ContextID: contextID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
