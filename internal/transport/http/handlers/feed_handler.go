package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/metrics"
	"github.com/tidehq/tide/internal/service"
	"go.uber.org/zap"
)

type FeedHandler struct {
	feed    *service.FeedService
	threads *service.ThreadService
	log     *zap.Logger
}

func NewFeedHandler(feed *service.FeedService, threads *service.ThreadService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, threads: threads, log: log}
}

// Page serves GET /api/v1/feed. Exactly one of channel_id or conversation_id
// scopes the context; parent_id scopes to a single thread.
func (h *FeedHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var c domain.Context
	if raw := q.Get("channel_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
			return
		}
		c.ChannelID = &id
	}
	if raw := q.Get("conversation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
			return
		}
		c.ConversationID = &id
	}

	var parentID *uuid.UUID
	if raw := q.Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid parent ID")
			return
		}
		parentID = &id
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	page, err := h.feed.Page(r.Context(), c, parentID, q.Get("cursor"), limit)
	if err != nil {
		if isInternal(err) {
			h.log.Error("feed page", zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}

	metrics.FeedPages.Inc()
	writeJSON(w, http.StatusOK, page)
}

// Thread serves GET /api/v1/messages/{id}/thread. A null body means the root
// has no replies and no thread bar should render.
func (h *FeedHandler) Thread(w http.ResponseWriter, r *http.Request) {
	rootID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	summary, err := h.threads.Summarize(r.Context(), rootID)
	if err != nil {
		h.log.Error("thread summary", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
