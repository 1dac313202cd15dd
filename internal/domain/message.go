package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID       `json:"id"`
	ChannelID      *uuid.UUID      `json:"channel_id,omitempty"`
	ConversationID *uuid.UUID      `json:"conversation_id,omitempty"`
	MemberID       uuid.UUID       `json:"member_id"`
	Body           json.RawMessage `json:"body"`
	ImageRef       *string         `json:"image_ref,omitempty"`
	ParentID       *uuid.UUID      `json:"parent_id,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	// Joined fields
	AuthorName   string  `json:"author_name,omitempty"`
	AuthorAvatar *string `json:"author_avatar,omitempty"`
}

func (m *Message) Context() Context {
	return Context{ChannelID: m.ChannelID, ConversationID: m.ConversationID}
}

// IsReply reports whether the message is a thread reply.
func (m *Message) IsReply() bool {
	return m.ParentID != nil
}

// ThreadSummary is derived from the reply rows of a thread root. It is never
// stored; a root with zero replies has no summary at all.
type ThreadSummary struct {
	ReplyCount            int       `json:"reply_count"`
	LastReplyAt           time.Time `json:"last_reply_at"`
	LastReplyAuthorID     uuid.UUID `json:"last_reply_author_id"`
	LastReplyAuthorName   string    `json:"last_reply_author_name,omitempty"`
	LastReplyAuthorAvatar *string   `json:"last_reply_author_avatar,omitempty"`
}
