package model

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the sort key of the last item of a page: (published_at, id).
type Cursor struct {
	PublishedAt time.Time
	ID          int64
}

type cursorPayload struct {
	T  string `json:"t"`
	ID int64  `json:"id"`
}

func CursorFor(item Item) Cursor {
	return Cursor{PublishedAt: item.PublishedAt, ID: item.ID}
}

func (c Cursor) Encode() string {
	raw, _ := json.Marshal(cursorPayload{
		T:  c.PublishedAt.UTC().Format(time.RFC3339Nano),
		ID: c.ID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	t, err := time.Parse(time.RFC3339Nano, p.T)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidCursor, err)
	}

	if p.ID <= 0 {
		return Cursor{}, fmt.Errorf("%w: bad id %d", ErrInvalidCursor, p.ID)
	}

	return Cursor{PublishedAt: t, ID: p.ID}, nil
}
