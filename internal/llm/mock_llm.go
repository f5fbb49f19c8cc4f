package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Generate(ctx context.Context, prompt, lang string) (string, error) {
	args := m.Called(ctx, prompt, lang)
	return args.String(0), args.Error(1)
}
