package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/metrics"
	"github.com/tidehq/tide/internal/mutation"
	"github.com/tidehq/tide/internal/service"
	"go.uber.org/zap"
)

type MessageHandler struct {
	messages *service.MessageService
	members  *service.MemberService
	log      *zap.Logger
}

func NewMessageHandler(messages *service.MessageService, members *service.MemberService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, members: members, log: log}
}

type sendMessageRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	service.AppendInput
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	member, ok := currentMember(w, r, h.members, h.log, req.WorkspaceID)
	if !ok {
		return
	}

	ctrl := mutation.New[*domain.Message]()
	_, _ = ctrl.Invoke(r.Context(), func(ctx context.Context) (*domain.Message, error) {
		return h.messages.Append(ctx, member.ID, req.AppendInput)
	}, mutation.Options[*domain.Message]{
		OnSuccess: func(msg *domain.Message) {
			metrics.MessagesAppended.Inc()
			writeJSON(w, http.StatusCreated, msg)
		},
		OnError: func(err error) {
			if isInternal(err) {
				h.log.Error("send message", zap.Error(err))
			}
			writeServiceError(w, err)
		},
	})
}

type editMessageRequest struct {
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	Body        json.RawMessage `json:"body"`
}

func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var req editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	member, ok := currentMember(w, r, h.members, h.log, req.WorkspaceID)
	if !ok {
		return
	}

	ctrl := mutation.New[*domain.Message]()
	_, _ = ctrl.Invoke(r.Context(), func(ctx context.Context) (*domain.Message, error) {
		return h.messages.Edit(ctx, member.ID, messageID, req.Body)
	}, mutation.Options[*domain.Message]{
		OnSuccess: func(msg *domain.Message) {
			writeJSON(w, http.StatusOK, msg)
		},
		OnError: func(err error) {
			if isInternal(err) {
				h.log.Error("edit message", zap.Error(err))
			}
			writeServiceError(w, err)
		},
	})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	workspaceID, err := uuid.Parse(r.URL.Query().Get("workspace_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid workspace ID")
		return
	}

	member, ok := currentMember(w, r, h.members, h.log, workspaceID)
	if !ok {
		return
	}

	ctrl := mutation.New[struct{}]()
	_, _ = ctrl.Invoke(r.Context(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.messages.Remove(ctx, member.ID, messageID)
	}, mutation.Options[struct{}]{
		OnSuccess: func(struct{}) {
			metrics.MessagesDeleted.Inc()
			w.WriteHeader(http.StatusNoContent)
		},
		OnError: func(err error) {
			if isInternal(err) {
				h.log.Error("delete message", zap.Error(err))
			}
			writeServiceError(w, err)
		},
	})
}
