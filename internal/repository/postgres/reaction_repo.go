package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidehq/tide/internal/domain"
)

type ReactionRepo struct {
	pool *pgxpool.Pool
}

func NewReactionRepo(pool *pgxpool.Pool) *ReactionRepo {
	return &ReactionRepo{pool: pool}
}

// Toggle runs the delete-or-insert flip in one transaction so two racing
// toggles on the same (message, member, value) can never leave two rows;
// the unique index backstops the insert side.
func (r *ReactionRepo) Toggle(ctx context.Context, messageID, memberID uuid.UUID, value string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM reactions WHERE message_id = $1 AND member_id = $2 AND value = $3`,
		messageID, memberID, value,
	)
	if err != nil {
		return false, err
	}

	added := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO reactions (id, message_id, member_id, value, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (message_id, member_id, value) DO NOTHING`,
			uuid.New(), messageID, memberID, value, time.Now(),
		)
		if err != nil {
			return false, err
		}
		added = true
	}

	return added, tx.Commit(ctx)
}

func (r *ReactionRepo) ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	return r.list(ctx,
		`SELECT id, message_id, member_id, value, created_at
		 FROM reactions
		 WHERE message_id = $1
		 ORDER BY created_at, id`, messageID)
}

func (r *ReactionRepo) ListByMessages(ctx context.Context, messageIDs []uuid.UUID) ([]domain.Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT id, message_id, member_id, value, created_at
		 FROM reactions
		 WHERE message_id = ANY($1)
		 ORDER BY created_at, id`, messageIDs)
}

func (r *ReactionRepo) list(ctx context.Context, query string, arg any) ([]domain.Reaction, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var rx domain.Reaction
		if err := rows.Scan(&rx.ID, &rx.MessageID, &rx.MemberID, &rx.Value, &rx.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, rx)
	}

	return reactions, rows.Err()
}
