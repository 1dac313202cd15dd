package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidehq/tide/internal/domain"
)

func body(text string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"text": text})
	return b
}

func TestAppendRequiresExactlyOneContext(t *testing.T) {
	svc := NewMessageService(newFakeMessageRepo())
	author := uuid.New()
	channelID := uuid.New()
	conversationID := uuid.New()

	_, err := svc.Append(context.Background(), author, AppendInput{Body: body("hi")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Append(context.Background(), author, AppendInput{
		Context: domain.Context{ChannelID: &channelID, ConversationID: &conversationID},
		Body:    body("hi"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(channelID),
		Body:    body("hi"),
	})
	assert.NoError(t, err)
}

// vanishingMessageRepo lets a row disappear mid-operation, as a concurrent
// delete would. Reads succeed until remaining hits zero; then the row is gone.
type vanishingMessageRepo struct {
	*fakeMessageRepo
	remaining int
}

func (r *vanishingMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	if r.remaining > 0 {
		r.remaining--
		return r.fakeMessageRepo.GetByID(ctx, id)
	}
	_ = r.fakeMessageRepo.Delete(ctx, id)
	return nil, nil
}

func TestAppendDetectsVanishedRow(t *testing.T) {
	repo := &vanishingMessageRepo{fakeMessageRepo: newFakeMessageRepo()}
	svc := NewMessageService(repo)
	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)

	_, err := svc.Append(context.Background(), uuid.New(), AppendInput{
		Context: domain.ChannelContext(uuid.New()),
		Body:    body("hi"),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, notifier.news, "a vanished row must not be announced")
}

func TestEditDetectsVanishedRow(t *testing.T) {
	base := newFakeMessageRepo()
	author := uuid.New()
	channelID := uuid.New()
	msg := domain.Message{
		ID:        uuid.New(),
		ChannelID: &channelID,
		MemberID:  author,
		Body:      body("original"),
		CreatedAt: time.Now(),
	}
	base.seed(msg)

	repo := &vanishingMessageRepo{fakeMessageRepo: base, remaining: 1}
	svc := NewMessageService(repo)
	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)

	_, err := svc.Edit(context.Background(), author, msg.ID, body("edited"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, notifier.edits)
}

func TestAppendRejectsEmptyMessage(t *testing.T) {
	svc := NewMessageService(newFakeMessageRepo())
	channelID := uuid.New()

	_, err := svc.Append(context.Background(), uuid.New(), AppendInput{
		Context: domain.ChannelContext(channelID),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// image-only messages are fine
	ref := "obj-123.png"
	_, err = svc.Append(context.Background(), uuid.New(), AppendInput{
		Context:  domain.ChannelContext(channelID),
		ImageRef: &ref,
	})
	assert.NoError(t, err)
}

func TestAppendRejectsNestedThreads(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewMessageService(repo)
	channelID := uuid.New()
	author := uuid.New()

	root, err := svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(channelID),
		Body:    body("root"),
	})
	require.NoError(t, err)

	reply, err := svc.Append(context.Background(), author, AppendInput{
		Context:  domain.ChannelContext(channelID),
		Body:     body("reply"),
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	// replying to a reply must fail at the write boundary
	_, err = svc.Append(context.Background(), author, AppendInput{
		Context:  domain.ChannelContext(channelID),
		Body:     body("nested"),
		ParentID: &reply.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAppendRejectsCrossContextParent(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewMessageService(repo)
	author := uuid.New()

	root, err := svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(uuid.New()),
		Body:    body("root"),
	})
	require.NoError(t, err)

	_, err = svc.Append(context.Background(), author, AppendInput{
		Context:  domain.ChannelContext(uuid.New()),
		Body:     body("stray reply"),
		ParentID: &root.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Append(context.Background(), author, AppendInput{
		Context:  domain.ConversationContext(uuid.New()),
		Body:     body("stray reply"),
		ParentID: &root.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAppendUnknownParent(t *testing.T) {
	svc := NewMessageService(newFakeMessageRepo())
	parentID := uuid.New()

	_, err := svc.Append(context.Background(), uuid.New(), AppendInput{
		Context:  domain.ChannelContext(uuid.New()),
		Body:     body("reply"),
		ParentID: &parentID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditOnlyByAuthor(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewMessageService(repo)
	author := uuid.New()
	channelID := uuid.New()

	msg, err := svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(channelID),
		Body:    body("original"),
	})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), uuid.New(), msg.ID, body("hijacked"))
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	// unchanged after the rejected edit
	stored, err := svc.Get(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(body("original")), string(stored.Body))
	assert.Nil(t, stored.UpdatedAt)

	edited, err := svc.Edit(context.Background(), author, msg.ID, body("fixed"))
	require.NoError(t, err)
	assert.NotNil(t, edited.UpdatedAt)
}

func TestRemoveOnlyByAuthor(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewMessageService(repo)
	author := uuid.New()

	msg, err := svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(uuid.New()),
		Body:    body("doomed"),
	})
	require.NoError(t, err)

	err = svc.Remove(context.Background(), uuid.New(), msg.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = svc.Get(context.Background(), msg.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), author, msg.ID))

	_, err = svc.Get(context.Background(), msg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveSignalsDeletionAndThreadUpdate(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := NewMessageService(repo)
	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)
	channelID := uuid.New()
	author := uuid.New()

	root, err := svc.Append(context.Background(), author, AppendInput{
		Context: domain.ChannelContext(channelID),
		Body:    body("root"),
	})
	require.NoError(t, err)

	reply, err := svc.Append(context.Background(), author, AppendInput{
		Context:  domain.ChannelContext(channelID),
		Body:     body("reply"),
		ParentID: &root.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, notifier.threads[root.ID])
	assert.Equal(t, 1, notifier.threads[root.ID].ReplyCount)

	// removing the reply pushes the summary back to nil
	require.NoError(t, svc.Remove(context.Background(), author, reply.ID))
	assert.Contains(t, notifier.deletes, reply.ID)
	assert.Nil(t, notifier.threads[root.ID])
}

func TestEditUnknownMessage(t *testing.T) {
	svc := NewMessageService(newFakeMessageRepo())

	_, err := svc.Edit(context.Background(), uuid.New(), uuid.New(), body("x"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAppendSetsCreationTime(t *testing.T) {
	svc := NewMessageService(newFakeMessageRepo())
	before := time.Now()

	msg, err := svc.Append(context.Background(), uuid.New(), AppendInput{
		Context: domain.ChannelContext(uuid.New()),
		Body:    body("hi"),
	})
	require.NoError(t, err)
	assert.False(t, msg.CreatedAt.Before(before))
	assert.Nil(t, msg.UpdatedAt)
}
