package mocks

import (
	"context"

	"docbridge/internal/invocation"
	"docbridge/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, msg invocation.Message) service.Outcome {
	args := m.Called(ctx, msg)
	if f, ok := args.Get(0).(func(context.Context, invocation.Message) service.Outcome); ok {
		return f(ctx, msg)
	}
	return args.Get(0).(service.Outcome)
}

type MockLister struct {
	mock.Mock
}

func (m *MockLister) List(ctx context.Context) ([]service.DocumentView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentView), args.Error(1)
}
