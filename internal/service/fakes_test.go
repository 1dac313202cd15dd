package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
)

// In-memory repositories mirroring the postgres semantics closely enough for
// the feed contracts: keyset ordering, toggle flips, reply aggregation.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*domain.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *msg
	r.messages[msg.ID] = &clone
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	clone := *msg
	return &clone, nil
}

func (r *fakeMessageRepo) ListByContext(_ context.Context, c domain.Context, parentID *uuid.UUID, cursor *domain.Cursor, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Message
	for _, msg := range r.messages {
		if !msg.Context().Equal(c) {
			continue
		}
		if parentID == nil {
			if msg.ParentID != nil {
				continue
			}
		} else if msg.ParentID == nil || *msg.ParentID != *parentID {
			continue
		}
		if cursor != nil && !cursor.Before(msg) {
			continue
		}
		matched = append(matched, *msg)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) > 0
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeMessageRepo) Update(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.messages[msg.ID]
	if !ok {
		return nil
	}
	stored.Body = msg.Body
	now := time.Now()
	stored.UpdatedAt = &now
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, id)
	// replies cascade like the FK does
	for replyID, msg := range r.messages {
		if msg.ParentID != nil && *msg.ParentID == id {
			delete(r.messages, replyID)
		}
	}
	return nil
}

func (r *fakeMessageRepo) ThreadSummaries(_ context.Context, rootIDs []uuid.UUID) (map[uuid.UUID]*domain.ThreadSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make(map[uuid.UUID]*domain.ThreadSummary)
	for _, rootID := range rootIDs {
		var replies []*domain.Message
		for _, msg := range r.messages {
			if msg.ParentID != nil && *msg.ParentID == rootID {
				replies = append(replies, msg)
			}
		}
		if len(replies) == 0 {
			continue
		}
		sort.Slice(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
		last := replies[len(replies)-1]
		summaries[rootID] = &domain.ThreadSummary{
			ReplyCount:          len(replies),
			LastReplyAt:         last.CreatedAt,
			LastReplyAuthorID:   last.MemberID,
			LastReplyAuthorName: last.AuthorName,
		}
	}
	return summaries, nil
}

// seed inserts a fully-formed message row directly, bypassing validation.
func (r *fakeMessageRepo) seed(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := msg
	r.messages[msg.ID] = &clone
}

type fakeReactionRepo struct {
	mu   sync.Mutex
	rows []domain.Reaction
	seq  int
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{}
}

func (r *fakeReactionRepo) Toggle(_ context.Context, messageID, memberID uuid.UUID, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.MessageID == messageID && row.MemberID == memberID && row.Value == value {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return false, nil
		}
	}
	r.seq++
	r.rows = append(r.rows, domain.Reaction{
		ID:        uuid.New(),
		MessageID: messageID,
		MemberID:  memberID,
		Value:     value,
		CreatedAt: time.Unix(0, 0).Add(time.Duration(r.seq) * time.Second),
	})
	return true, nil
}

func (r *fakeReactionRepo) ListByMessage(_ context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []domain.Reaction
	for _, row := range r.rows {
		if row.MessageID == messageID {
			rows = append(rows, row)
		}
	}
	sortReactions(rows)
	return rows, nil
}

func (r *fakeReactionRepo) ListByMessages(_ context.Context, messageIDs []uuid.UUID) ([]domain.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}
	var rows []domain.Reaction
	for _, row := range r.rows {
		if _, ok := wanted[row.MessageID]; ok {
			rows = append(rows, row)
		}
	}
	sortReactions(rows)
	return rows, nil
}

func sortReactions(rows []domain.Reaction) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[uuid.UUID]*domain.Member
	fail    bool
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[uuid.UUID]*domain.Member)}
}

func (r *fakeMemberRepo) add(member domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := member
	r.members[member.ID] = &clone
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, domain.ErrTransient
	}
	member, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	clone := *member
	return &clone, nil
}

func (r *fakeMemberRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, domain.ErrTransient
	}
	var members []domain.Member
	for _, id := range ids {
		if member, ok := r.members[id]; ok {
			members = append(members, *member)
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) GetByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			clone := *member
			return &clone, nil
		}
	}
	return nil, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	news     []*domain.Message
	edits    []*domain.Message
	deletes  []uuid.UUID
	reaction []uuid.UUID
	threads  map[uuid.UUID]*domain.ThreadSummary
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{threads: make(map[uuid.UUID]*domain.ThreadSummary)}
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.news = append(n.news, msg)
}

func (n *recordingNotifier) NotifyEditedMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edits = append(n.edits, msg)
}

func (n *recordingNotifier) NotifyDeletedMessage(_, messageID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deletes = append(n.deletes, messageID)
}

func (n *recordingNotifier) NotifyReactionUpdated(_, messageID uuid.UUID, _ []domain.ReactionSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reaction = append(n.reaction, messageID)
}

func (n *recordingNotifier) NotifyThreadUpdated(_, rootID uuid.UUID, summary *domain.ThreadSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.threads[rootID] = summary
}
