package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is a minimal text-generation interface to allow pluggable providers.
type Client interface {
	Generate(ctx context.Context, prompt, lang string) (string, error)
}

// ErrNotConfigured is returned by the stub provider; callers recover by
// taking their deterministic fallback path.
var ErrNotConfigured = errors.New("llm: no generation backend configured")

// GenerationError wraps any provider failure (timeout, quota, malformed
// response). The draft composer treats all of them uniformly as "adapter
// unavailable" and never surfaces them to the caller.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
