package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"github.com/tidehq/tide/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100

	// compactWindow is the largest gap between two consecutive same-author
	// messages that still suppresses the second author header.
	compactWindow = 5 * time.Minute
)

// FeedItem is one display-ready message: the stored row joined with its
// author, reaction summaries and (for top-level messages) thread summary,
// plus per-render display hints.
type FeedItem struct {
	domain.Message
	Author    *domain.Member           `json:"author,omitempty"`
	Reactions []domain.ReactionSummary `json:"reactions"`
	Thread    *domain.ThreadSummary    `json:"thread,omitempty"`
	// Compact and DayKey are computed at assembly from adjacent items and
	// never stored.
	Compact bool   `json:"compact"`
	DayKey  string `json:"day_key"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

type FeedService struct {
	messageRepo repository.MessageRepository
	members     *MemberService
	reactions   *ReactionService
	threads     *ThreadService
	log         *zap.Logger
}

func NewFeedService(
	messageRepo repository.MessageRepository,
	members *MemberService,
	reactions *ReactionService,
	threads *ThreadService,
	log *zap.Logger,
) *FeedService {
	return &FeedService{
		messageRepo: messageRepo,
		members:     members,
		reactions:   reactions,
		threads:     threads,
		log:         log,
	}
}

// Page serves one window of a context's feed, newest-first, optionally scoped
// to a single thread. A failed enrichment facet degrades that facet only;
// the page itself still returns.
func (s *FeedService) Page(ctx context.Context, c domain.Context, parentID *uuid.UUID, cursorToken string, limit int) (*FeedPage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var cursor *domain.Cursor
	if cursorToken != "" {
		var err error
		cursor, err = domain.DecodeCursor(cursorToken)
		if err != nil {
			return nil, err
		}
	}

	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	// limit+1 probe tells us whether another page exists.
	messages, err := s.messageRepo.ListByContext(ctx, c, parentID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	enriched := s.enrich(ctx, messages)

	page := &FeedPage{Items: enriched, HasMore: hasMore}
	if hasMore {
		last := messages[len(messages)-1]
		page.NextCursor = domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page, nil
}

// enrich joins messages with authors, reaction summaries and thread
// summaries. The three reads run concurrently and may finish in any order;
// items are assembled only once all of them have resolved.
func (s *FeedService) enrich(ctx context.Context, messages []domain.Message) []FeedItem {
	memberIDs := make([]uuid.UUID, 0, len(messages))
	seenMembers := make(map[uuid.UUID]struct{})
	messageIDs := make([]uuid.UUID, 0, len(messages))
	rootIDs := make([]uuid.UUID, 0, len(messages))

	for i := range messages {
		messageIDs = append(messageIDs, messages[i].ID)
		if _, ok := seenMembers[messages[i].MemberID]; !ok {
			seenMembers[messages[i].MemberID] = struct{}{}
			memberIDs = append(memberIDs, messages[i].MemberID)
		}
		if !messages[i].IsReply() {
			rootIDs = append(rootIDs, messages[i].ID)
		}
	}

	var (
		authors   map[uuid.UUID]*domain.Member
		reactions map[uuid.UUID][]domain.ReactionSummary
		threads   map[uuid.UUID]*domain.ThreadSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolved, err := s.members.ResolveMembers(gctx, memberIDs)
		if err != nil {
			s.log.Warn("feed: author resolution degraded", zap.Error(err))
			return nil
		}
		authors = resolved
		return nil
	})
	g.Go(func() error {
		summaries, err := s.reactions.SummarizeMany(gctx, messageIDs)
		if err != nil {
			s.log.Warn("feed: reaction summaries degraded", zap.Error(err))
			return nil
		}
		reactions = summaries
		return nil
	})
	g.Go(func() error {
		summaries, err := s.threads.SummarizeMany(gctx, rootIDs)
		if err != nil {
			s.log.Warn("feed: thread summaries degraded", zap.Error(err))
			return nil
		}
		threads = summaries
		return nil
	})
	_ = g.Wait()

	items := make([]FeedItem, len(messages))
	for i := range messages {
		item := FeedItem{
			Message:   messages[i],
			Reactions: []domain.ReactionSummary{},
			DayKey:    DayKey(messages[i].CreatedAt),
		}
		if authors != nil {
			item.Author = authors[messages[i].MemberID]
		}
		if rx, ok := reactions[messages[i].ID]; ok {
			item.Reactions = rx
		}
		if !messages[i].IsReply() && threads != nil {
			item.Thread = threads[messages[i].ID]
		}
		items[i] = item
	}

	// Items are newest-first, so the chronological predecessor of items[i]
	// is items[i+1].
	for i := range items {
		if i+1 < len(items) {
			items[i].Compact = Compact(&items[i+1].Message, &items[i].Message)
		}
	}

	return items
}

// Compact reports whether cur should render without its author header when
// shown right after prev: same author and a gap strictly under five minutes.
func Compact(prev, cur *domain.Message) bool {
	if prev == nil || cur == nil {
		return false
	}
	if prev.MemberID != cur.MemberID {
		return false
	}
	gap := cur.CreatedAt.Sub(prev.CreatedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap < compactWindow
}

// DayKey is the calendar-day grouping key for date separators.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
