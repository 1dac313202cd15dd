package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 1, 12, 34, 56, 789000, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := DecodeCursor(original.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(original.CreatedAt))
	assert.Equal(t, original.ID, decoded.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "!!!", "dG9vIHNob3J0"} {
		_, err := DecodeCursor(token)
		assert.ErrorIs(t, err, ErrValidation, "token %q", token)
	}
}

func TestCursorBefore(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := Cursor{CreatedAt: at, ID: uuid.MustParse("88888888-0000-0000-0000-000000000000")}

	older := &Message{ID: uuid.New(), CreatedAt: at.Add(-time.Second)}
	assert.True(t, cursor.Before(older))

	newer := &Message{ID: uuid.New(), CreatedAt: at.Add(time.Second)}
	assert.False(t, cursor.Before(newer))

	// same timestamp: only a strictly smaller id is on a later page
	tiedLower := &Message{ID: uuid.MustParse("11111111-0000-0000-0000-000000000000"), CreatedAt: at}
	assert.True(t, cursor.Before(tiedLower))

	tiedHigher := &Message{ID: uuid.MustParse("ffffffff-0000-0000-0000-000000000000"), CreatedAt: at}
	assert.False(t, cursor.Before(tiedHigher))

	self := &Message{ID: cursor.ID, CreatedAt: at}
	assert.False(t, cursor.Before(self), "the cursor row itself is never re-delivered")
}
