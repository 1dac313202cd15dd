package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/repository"
)

// MemberService is the identity/membership resolver. It only reads; identity
// issuance happens elsewhere and the engine trusts JWT-resolved user ids.
type MemberService struct {
	memberRepo repository.MemberRepository
}

func NewMemberService(memberRepo repository.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// ResolveMember returns the member for an id, or nil when unknown. A missing
// member is not an error here: feed composition degrades to a placeholder.
func (s *MemberService) ResolveMember(ctx context.Context, memberID uuid.UUID) (*domain.Member, error) {
	return s.memberRepo.GetByID(ctx, memberID)
}

// ResolveMembers batch-resolves ids to members, keyed by member id.
func (s *MemberService) ResolveMembers(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]*domain.Member, error) {
	members, err := s.memberRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	resolved := make(map[uuid.UUID]*domain.Member, len(members))
	for i := range members {
		resolved[members[i].ID] = &members[i]
	}
	return resolved, nil
}

// CurrentMember resolves the calling user's membership in a workspace.
func (s *MemberService) CurrentMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving member: %w", err)
	}
	return member, nil
}
