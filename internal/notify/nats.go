package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectQuoteGenerated = "quotes.generated"

// NewNATS constructs a thin NATS-based notifier.
func NewNATS(log *slog.Logger, nc *nats.Conn) Notifier {
	return &natsNotifier{log: log, nc: nc}
}

type natsNotifier struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (n *natsNotifier) QuoteGenerated(_ context.Context, ev Event) error {
	if ev.QuoteID == uuid.Nil {
		return errors.New("quote id required")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.nc.Publish(subjectQuoteGenerated, body); err != nil {
		return err
	}
	n.log.Debug("quote event published", "subject", subjectQuoteGenerated, "quote", ev.Number)
	return nil
}

func (n *natsNotifier) Close() error {
	n.nc.Close()
	return nil
}
