package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/mutation"
	"github.com/tidehq/tide/internal/service"
	"github.com/tidehq/tide/internal/storage"
	"github.com/tidehq/tide/pkg/validator"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploader *storage.Uploader
	members  *service.MemberService
	log      *zap.Logger
}

func NewUploadHandler(uploader *storage.Uploader, members *service.MemberService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, members: members, log: log}
}

type generateUploadRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Filename    string    `json:"filename"`
}

// Generate serves POST /api/v1/uploads: a presigned PUT URL plus the opaque
// object key the client attaches to its message. Callers chain this with the
// message post and rely on the rethrown error to short-circuit the chain.
func (h *UploadHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateUploadFilename(req.Filename); errs.HasErrors() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	if _, ok := currentMember(w, r, h.members, h.log, req.WorkspaceID); !ok {
		return
	}

	ctrl := mutation.New[*storage.UploadTicket]()
	ticket, err := ctrl.Invoke(r.Context(), func(ctx context.Context) (*storage.UploadTicket, error) {
		return h.uploader.PresignPut(ctx, req.Filename)
	}, mutation.Options[*storage.UploadTicket]{Rethrow: true})
	if err != nil {
		h.log.Error("generate upload url", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "RETRY", "Upload service unavailable, please retry")
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}
