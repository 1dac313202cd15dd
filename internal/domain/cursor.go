package domain

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cursor marks a position in a reverse-chronological feed as the last-seen
// (createdAt, id) pair. Ties on createdAt are broken by id, so a page request
// never re-delivers or skips a message even while new ones arrive.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode packs the cursor into an opaque URL-safe token:
// 8 bytes big-endian unix microseconds followed by the 16 uuid bytes.
func (c Cursor) Encode() string {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[:8], uint64(c.CreatedAt.UnixMicro()))
	copy(buf[8:], c.ID[:])
	return base64.RawURLEncoding.EncodeToString(buf)
}

func DecodeCursor(token string) (*Cursor, error) {
	buf, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(buf) != 24 {
		return nil, fmt.Errorf("%w: malformed cursor", ErrValidation)
	}
	micros := int64(binary.BigEndian.Uint64(buf[:8]))
	var id uuid.UUID
	copy(id[:], buf[8:])
	return &Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
}

// Before reports whether the pair (createdAt, id) of msg sorts strictly
// after this cursor in feed order, i.e. the message belongs to a later page.
func (c Cursor) Before(msg *Message) bool {
	if msg.CreatedAt.Equal(c.CreatedAt) {
		return msg.ID.String() < c.ID.String()
	}
	return msg.CreatedAt.Before(c.CreatedAt)
}
