package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/service"
	"github.com/tidehq/tide/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// currentMember resolves the authenticated user to a workspace membership.
// The engine trusts the token's user id and only checks membership here.
func currentMember(w http.ResponseWriter, r *http.Request, members *service.MemberService, log *zap.Logger, workspaceID uuid.UUID) (*domain.Member, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authentication")
		return nil, false
	}

	member, err := members.CurrentMember(r.Context(), workspaceID, userID)
	if err != nil {
		log.Error("resolve member", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return nil, false
	}
	if member == nil {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a member of this workspace")
		return nil, false
	}
	return member, true
}
