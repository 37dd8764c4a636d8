// Package pagination implements the keyset cursors used by order listings.
// A cursor names the created_at/id position of the last row on the previous
// page; listings order by created_at then id descending, so both fields are
// needed to break ties between orders created in the same instant.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when a caller does not ask for one.
	DefaultLimit = 25
	// MaxLimit caps how many orders a single page can return.
	MaxLimit = 100

	cursorSep = "|"
)

// Params holds the pagination inputs a listing accepts.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is a decoded keyset position in a listing.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode renders the cursor as an opaque token for the next-page link.
func (c Cursor) Encode() string {
	payload := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSep + c.ID.String()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// Parse decodes a token produced by Encode. A blank token means the first
// page and yields a nil cursor.
func Parse(raw string) (*Cursor, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	createdAt, id, found := strings.Cut(string(decoded), cursorSep)
	if !found {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: t, ID: parsedID}, nil
}

// NormalizeLimit clamps a requested limit into the allowed range.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer adds one row to the normalized limit so a query can tell
// whether a further page exists without a second round trip.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}
