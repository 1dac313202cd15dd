package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/repository"
)

// ThreadService derives reply aggregates for thread roots. Summaries are
// recomputed from the reply rows on every read, never stored.
type ThreadService struct {
	messageRepo repository.MessageRepository
}

func NewThreadService(messageRepo repository.MessageRepository) *ThreadService {
	return &ThreadService{messageRepo: messageRepo}
}

// Summarize returns nil for a root with zero replies; such a thread renders
// no thread bar at all.
func (s *ThreadService) Summarize(ctx context.Context, rootID uuid.UUID) (*domain.ThreadSummary, error) {
	summaries, err := s.messageRepo.ThreadSummaries(ctx, []uuid.UUID{rootID})
	if err != nil {
		return nil, err
	}
	return summaries[rootID], nil
}

func (s *ThreadService) SummarizeMany(ctx context.Context, rootIDs []uuid.UUID) (map[uuid.UUID]*domain.ThreadSummary, error) {
	return s.messageRepo.ThreadSummaries(ctx, rootIDs)
}
