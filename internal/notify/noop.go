package notify

import "context"

// NoOpNotifier swallows all events. Used when no broker is configured.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a notifier that does nothing.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) QuoteGenerated(ctx context.Context, ev Event) error {
	return nil
}

func (n *NoOpNotifier) Close() error {
	return nil
}
