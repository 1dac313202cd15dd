package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/metrics"
	"github.com/tidehq/tide/internal/mutation"
	"github.com/tidehq/tide/internal/service"
	"github.com/tidehq/tide/pkg/validator"
	"go.uber.org/zap"
)

type ReactionHandler struct {
	reactions *service.ReactionService
	members   *service.MemberService
	log       *zap.Logger
}

func NewReactionHandler(reactions *service.ReactionService, members *service.MemberService, log *zap.Logger) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, members: members, log: log}
}

type toggleRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Value       string    `json:"value"`
}

// Toggle serves POST /api/v1/messages/{id}/reactions. Repeating the same
// request flips the reaction back; it never fails on repeats.
func (h *ReactionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateReactionValue(req.Value); errs.HasErrors() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	member, ok := currentMember(w, r, h.members, h.log, req.WorkspaceID)
	if !ok {
		return
	}

	ctrl := mutation.New[*service.ToggleResult]()
	_, _ = ctrl.Invoke(r.Context(), func(ctx context.Context) (*service.ToggleResult, error) {
		return h.reactions.Toggle(ctx, member.ID, messageID, req.Value)
	}, mutation.Options[*service.ToggleResult]{
		OnSuccess: func(result *service.ToggleResult) {
			metrics.ReactionsToggled.WithLabelValues(result.Applied).Inc()
			writeJSON(w, http.StatusOK, result)
		},
		OnError: func(err error) {
			if isInternal(err) {
				h.log.Error("toggle reaction", zap.Error(err))
			}
			writeServiceError(w, err)
		},
	})
}

// Summaries serves GET /api/v1/messages/{id}/reactions. An empty list is a
// valid answer, not an error.
func (h *ReactionHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	summaries, err := h.reactions.Summarize(r.Context(), messageID)
	if err != nil {
		h.log.Error("reaction summaries", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}
