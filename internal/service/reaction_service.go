package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/repository"
)

const (
	ToggleAdded   = "added"
	ToggleRemoved = "removed"
)

type ToggleResult struct {
	Applied string `json:"applied"`
}

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	messageRepo  repository.MessageRepository
	notifier     Notifier
}

func NewReactionService(reactionRepo repository.ReactionRepository, messageRepo repository.MessageRepository) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo, messageRepo: messageRepo}
}

func (s *ReactionService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Toggle flips a member's reaction on a message. Repeated toggles always
// succeed; each one just inverts the previous state.
func (s *ReactionService) Toggle(ctx context.Context, memberID, messageID uuid.UUID, value string) (*ToggleResult, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: reaction value is required", domain.ErrValidation)
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	added, err := s.reactionRepo.Toggle(ctx, messageID, memberID, value)
	if err != nil {
		return nil, fmt.Errorf("toggling reaction: %w", err)
	}

	if s.notifier != nil {
		summaries, err := s.Summarize(ctx, messageID)
		if err == nil {
			s.notifier.NotifyReactionUpdated(msg.Context().ID(), messageID, summaries)
		}
	}

	if added {
		return &ToggleResult{Applied: ToggleAdded}, nil
	}
	return &ToggleResult{Applied: ToggleRemoved}, nil
}

// Summarize groups a message's reaction rows by value in first-seen order.
// No reactions is a valid empty result, not an error.
func (s *ReactionService) Summarize(ctx context.Context, messageID uuid.UUID) ([]domain.ReactionSummary, error) {
	rows, err := s.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return domain.SummarizeReactions(rows), nil
}

// SummarizeMany batches summaries for a page of messages. Every requested id
// gets an entry, empty when the message has no reactions.
func (s *ReactionService) SummarizeMany(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]domain.ReactionSummary, error) {
	rows, err := s.reactionRepo.ListByMessages(ctx, messageIDs)
	if err != nil {
		return nil, err
	}

	byMessage := make(map[uuid.UUID][]domain.Reaction)
	for _, row := range rows {
		byMessage[row.MessageID] = append(byMessage[row.MessageID], row)
	}

	summaries := make(map[uuid.UUID][]domain.ReactionSummary, len(messageIDs))
	for _, id := range messageIDs {
		summaries[id] = domain.SummarizeReactions(byMessage[id])
	}
	return summaries, nil
}
