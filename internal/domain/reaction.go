package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is one member's emoji on one message. Rows are only ever created
// or deleted; a repeated toggle removes the row instead of updating it.
type Reaction struct {
	ID        uuid.UUID `json:"id"`
	MessageID uuid.UUID `json:"message_id"`
	MemberID  uuid.UUID `json:"member_id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionSummary is the per-emoji aggregate of a message's reaction rows,
// derived on read. MemberIDs lets clients render "you reacted" without a
// second lookup.
type ReactionSummary struct {
	Value     string      `json:"value"`
	Count     int         `json:"count"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// SummarizeReactions folds raw reaction rows into per-value summaries.
// Groups appear in first-seen order, i.e. the order of the earliest reaction
// carrying each value, so rows must arrive sorted by creation.
func SummarizeReactions(rows []Reaction) []ReactionSummary {
	summaries := []ReactionSummary{}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.Value]
		if !ok {
			i = len(summaries)
			index[row.Value] = i
			summaries = append(summaries, ReactionSummary{Value: row.Value})
		}
		summaries[i].Count++
		summaries[i].MemberIDs = append(summaries[i].MemberIDs, row.MemberID)
	}
	return summaries
}
