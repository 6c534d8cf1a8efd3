// Package pagination implements keyset cursors for listing documents newest
// first. A cursor names the last document of a page by its ID and ingestion
// time.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

const separator = "|"

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor is the decoded position after which the next page starts.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult is one page of items plus the cursor for the following page.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// EncodeCursor returns an opaque, URL-safe cursor for the item identified by
// lastID and timestamp.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + separator + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// decodes to nil, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	// Document IDs are file names and may contain the separator.
	raw := string(decoded)
	sep := strings.LastIndex(raw, separator)
	if sep <= 0 {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, raw[sep+1:])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: raw[:sep], Timestamp: timestamp}, nil
}

// NewPage builds a page from items fetched with a limit of limit+1. The extra
// item only signals that another page exists and is dropped; the cursor then
// points at the last item kept.
func NewPage[T any](items []T, limit int, key func(T) (string, time.Time)) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	page := &PageResult[T]{Items: items}
	if limit <= 0 || len(items) <= limit {
		return page
	}

	page.Items = items[:limit]
	page.HasMore = true
	page.Cursor = EncodeCursor(key(page.Items[limit-1]))
	return page
}
