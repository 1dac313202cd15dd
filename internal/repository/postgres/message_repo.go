package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidehq/tide/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `
	m.id, m.channel_id, m.conversation_id, m.member_id, m.body, m.image_ref,
	m.parent_id, m.updated_at, m.created_at, u.display_name, u.avatar_url`

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, channel_id, conversation_id, member_id, body, image_ref, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.ChannelID, msg.ConversationID, msg.MemberID, msg.Body, msg.ImageRef, msg.ParentID, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN members mem ON m.member_id = mem.id
		JOIN users u ON mem.user_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ChannelID, &msg.ConversationID, &msg.MemberID, &msg.Body, &msg.ImageRef,
		&msg.ParentID, &msg.UpdatedAt, &msg.CreatedAt, &msg.AuthorName, &msg.AuthorAvatar,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) ListByContext(ctx context.Context, c domain.Context, parentID *uuid.UUID, cursor *domain.Cursor, limit int) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN members mem ON m.member_id = mem.id
		JOIN users u ON mem.user_id = u.id
		WHERE `
	var args []any

	if c.ChannelID != nil {
		query += `m.channel_id = $1`
		args = append(args, *c.ChannelID)
	} else {
		query += `m.conversation_id = $1`
		args = append(args, *c.ConversationID)
	}

	if parentID != nil {
		query += ` AND m.parent_id = $2`
		args = append(args, *parentID)
	} else {
		query += ` AND m.parent_id IS NULL`
	}

	if cursor != nil {
		// Keyset comparison keeps pages stable while new rows arrive.
		n := len(args)
		query += fmt.Sprintf(` AND (m.created_at, m.id) < ($%d, $%d)`, n+1, n+2)
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += fmt.Sprintf(`
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ChannelID, &msg.ConversationID, &msg.MemberID, &msg.Body, &msg.ImageRef,
			&msg.ParentID, &msg.UpdatedAt, &msg.CreatedAt, &msg.AuthorName, &msg.AuthorAvatar,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	query := `UPDATE messages SET body = $1, updated_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, msg.Body, time.Now(), msg.ID)
	return err
}

// Delete removes the row; reactions and replies cascade via foreign keys.
func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) ThreadSummaries(ctx context.Context, rootIDs []uuid.UUID) (map[uuid.UUID]*domain.ThreadSummary, error) {
	if len(rootIDs) == 0 {
		return map[uuid.UUID]*domain.ThreadSummary{}, nil
	}

	// One row per root: the newest reply plus a windowed reply count.
	query := `
		SELECT DISTINCT ON (m.parent_id)
			m.parent_id, m.created_at, mem.id, u.display_name, u.avatar_url,
			count(*) OVER (PARTITION BY m.parent_id) AS reply_count
		FROM messages m
		JOIN members mem ON m.member_id = mem.id
		JOIN users u ON mem.user_id = u.id
		WHERE m.parent_id = ANY($1)
		ORDER BY m.parent_id, m.created_at DESC, m.id DESC`

	rows, err := r.pool.Query(ctx, query, rootIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make(map[uuid.UUID]*domain.ThreadSummary)
	for rows.Next() {
		var rootID uuid.UUID
		var s domain.ThreadSummary
		if err := rows.Scan(
			&rootID, &s.LastReplyAt, &s.LastReplyAuthorID, &s.LastReplyAuthorName,
			&s.LastReplyAuthorAvatar, &s.ReplyCount,
		); err != nil {
			return nil, err
		}
		summaries[rootID] = &s
	}

	return summaries, rows.Err()
}
