package llm

import "context"

// Stub is the offline provider. It never generates prose; every call
// reports ErrNotConfigured so the composer takes its deterministic
// template path. Selected explicitly via LLM_PROVIDER=stub, and chosen
// automatically when no API key is present, which keeps local runs and
// tests reproducible without network access.
type Stub struct{}

// NewStub creates the offline generation provider.
func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Generate(ctx context.Context, prompt, lang string) (string, error) {
	return "", &GenerationError{Err: ErrNotConfigured}
}
