package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores generated email drafts so identical quotations don't pay
// for a second model call.
type Cache interface {
	// GetDraft retrieves a cached draft by key. Returns nil on a miss.
	GetDraft(ctx context.Context, key string) (*Draft, error)

	// SetDraft stores a draft with TTL.
	SetDraft(ctx context.Context, key string, draft *Draft, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Draft is a cached email draft.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Lang    string `json:"lang"`
}

// Key derives a stable cache key from the draft language and the full
// generation prompt. The prompt already encodes every field of the
// quotation, so equal keys imply equal drafts.
func Key(lang, prompt string) string {
	sum := sha256.Sum256([]byte(lang + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
