package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/repository"
)

var (
	ErrMessageNotFound       = fmt.Errorf("message %w", domain.ErrNotFound)
	ErrNotMessageAuthor      = fmt.Errorf("%w: only the author can modify a message", domain.ErrAuthorization)
	ErrEmptyMessage          = fmt.Errorf("%w: a message needs a body or an image", domain.ErrValidation)
	ErrNestedThread          = fmt.Errorf("%w: replies to a reply are not allowed", domain.ErrValidation)
	ErrParentContextMismatch = fmt.Errorf("%w: parent message belongs to a different context", domain.ErrValidation)
)

// Notifier broadcasts real-time feed events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyEditedMessage(msg *domain.Message)
	NotifyDeletedMessage(contextID, messageID uuid.UUID)
	NotifyReactionUpdated(contextID, messageID uuid.UUID, summaries []domain.ReactionSummary)
	NotifyThreadUpdated(contextID, rootID uuid.UUID, summary *domain.ThreadSummary)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type AppendInput struct {
	Context  domain.Context  `json:"context"`
	Body     json.RawMessage `json:"body"`
	ImageRef *string         `json:"image_ref,omitempty"`
	ParentID *uuid.UUID      `json:"parent_id,omitempty"`
}

// Append validates and stores a new message. Thread depth is checked at this
// boundary: a parent that is itself a reply is rejected outright.
func (s *MessageService) Append(ctx context.Context, memberID uuid.UUID, input AppendInput) (*domain.Message, error) {
	if err := input.Context.Validate(); err != nil {
		return nil, err
	}
	if emptyBody(input.Body) && input.ImageRef == nil {
		return nil, ErrEmptyMessage
	}

	if input.ParentID != nil {
		parent, err := s.messageRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("parent %w", ErrMessageNotFound)
		}
		if parent.IsReply() {
			return nil, ErrNestedThread
		}
		if !parent.Context().Equal(input.Context) {
			return nil, ErrParentContextMismatch
		}
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ChannelID:      input.Context.ChannelID,
		ConversationID: input.Context.ConversationID,
		MemberID:       memberID,
		Body:           input.Body,
		ImageRef:       input.ImageRef,
		ParentID:       input.ParentID,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		// the row was deleted between the insert and the read-back
		return nil, ErrMessageNotFound
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
		if full.ParentID != nil {
			s.notifyThread(ctx, full.Context().ID(), *full.ParentID)
		}
	}

	return full, nil
}

func (s *MessageService) Edit(ctx context.Context, memberID, messageID uuid.UUID, body json.RawMessage) (*domain.Message, error) {
	if emptyBody(body) {
		return nil, ErrEmptyMessage
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if msg.MemberID != memberID {
		return nil, ErrNotMessageAuthor
	}

	msg.Body = body
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	updated, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMessageNotFound
	}

	if s.notifier != nil {
		s.notifier.NotifyEditedMessage(updated)
	}

	return updated, nil
}

func (s *MessageService) Remove(ctx context.Context, memberID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.MemberID != memberID {
		return ErrNotMessageAuthor
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if s.notifier != nil {
		// Clients with an open thread panel on this root close it off the
		// deletion event; the store only signals.
		s.notifier.NotifyDeletedMessage(msg.Context().ID(), messageID)
		if msg.ParentID != nil {
			s.notifyThread(ctx, msg.Context().ID(), *msg.ParentID)
		}
	}

	return nil
}

func (s *MessageService) Get(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

// notifyThread pushes the recomputed summary of a root after a reply was
// added or removed. A nil summary means the thread is back to zero replies.
func (s *MessageService) notifyThread(ctx context.Context, contextID, rootID uuid.UUID) {
	summaries, err := s.messageRepo.ThreadSummaries(ctx, []uuid.UUID{rootID})
	if err != nil {
		return
	}
	s.notifier.NotifyThreadUpdated(contextID, rootID, summaries[rootID])
}

func emptyBody(body json.RawMessage) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}
