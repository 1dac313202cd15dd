package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListByContext returns messages newest-first, strictly after the cursor
	// in (created_at, id) keyset order. A nil parentID selects top-level
	// messages; a non-nil one selects the replies of that thread root.
	ListByContext(ctx context.Context, c domain.Context, parentID *uuid.UUID, cursor *domain.Cursor, limit int) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ThreadSummaries computes reply aggregates for the given roots. Roots
	// with no replies are absent from the result.
	ThreadSummaries(ctx context.Context, rootIDs []uuid.UUID) (map[uuid.UUID]*domain.ThreadSummary, error)
}

type ReactionRepository interface {
	// Toggle removes the (message, member, value) row if present, otherwise
	// inserts it, in a single transaction. Returns true when a row was added.
	Toggle(ctx context.Context, messageID, memberID uuid.UUID, value string) (bool, error)
	ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error)
	ListByMessages(ctx context.Context, messageIDs []uuid.UUID) ([]domain.Reaction, error)
}

type MemberRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Member, error)
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error)
}
