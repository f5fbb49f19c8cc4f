package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotation-service/internal/retry"
)

// Event describes a quotation the service has just produced. A
// downstream mailer can pick it up and actually send the draft; the
// quotation itself is not persisted here.
type Event struct {
	QuoteID    uuid.UUID       `json:"quote_id"`
	Number     string          `json:"number"`
	ClientName string          `json:"client_name"`
	Contact    string          `json:"contact"`
	Lang       string          `json:"lang"`
	Currency   string          `json:"currency"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Subject    string          `json:"subject"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Notifier exposes a minimal contract to announce generated quotations.
type Notifier interface {
	QuoteGenerated(ctx context.Context, ev Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential
// backoff. Publish failures are a delivery concern only; callers log
// the returned error and still answer the request.
func PublishWithRetry(ctx context.Context, n Notifier, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := n.QuoteGenerated(ctx, ev); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base, 0)):
		}
	}
	return nil
}
