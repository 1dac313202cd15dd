package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidehq/tide/internal/domain"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

const memberColumns = `
	m.id, m.workspace_id, m.user_id, m.role, m.joined_at, u.display_name, u.avatar_url`

func (r *MemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.id = $1`
	var member domain.Member
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID, &member.WorkspaceID, &member.UserID, &member.Role,
		&member.JoinedAt, &member.DisplayName, &member.AvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &member, err
}

func (r *MemberRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + memberColumns + `
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(
			&member.ID, &member.WorkspaceID, &member.UserID, &member.Role,
			&member.JoinedAt, &member.DisplayName, &member.AvatarURL,
		); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *MemberRepo) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.workspace_id = $1 AND m.user_id = $2`
	var member domain.Member
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&member.ID, &member.WorkspaceID, &member.UserID, &member.Role,
		&member.JoinedAt, &member.DisplayName, &member.AvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &member, err
}
