package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Context is the place a message lives in: exactly one of a channel or a
// direct conversation. Both ids being set, or neither, is invalid.
type Context struct {
	ChannelID      *uuid.UUID `json:"channel_id,omitempty"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
}

func ChannelContext(channelID uuid.UUID) Context {
	return Context{ChannelID: &channelID}
}

func ConversationContext(conversationID uuid.UUID) Context {
	return Context{ConversationID: &conversationID}
}

func (c Context) Validate() error {
	if (c.ChannelID == nil) == (c.ConversationID == nil) {
		return fmt.Errorf("%w: exactly one of channel_id or conversation_id is required", ErrValidation)
	}
	return nil
}

// ID returns the id of whichever side is set, or uuid.Nil for an invalid
// context.
func (c Context) ID() uuid.UUID {
	if c.ChannelID != nil {
		return *c.ChannelID
	}
	if c.ConversationID != nil {
		return *c.ConversationID
	}
	return uuid.Nil
}

func (c Context) Equal(other Context) bool {
	return equalID(c.ChannelID, other.ChannelID) && equalID(c.ConversationID, other.ConversationID)
}

func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
