package mocks

import (
	"context"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"

	"github.com/stretchr/testify/mock"
)

// MockViolationRepository мок для ViolationRepository
type MockViolationRepository struct {
	mock.Mock
}

func (m *MockViolationRepository) Create(ctx context.Context, report *entity.ViolationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockViolationRepository) List(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) ([]entity.ViolationReport, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ViolationReport), args.Get(1).(int64), args.Error(2)
}

func (m *MockViolationRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockVerdictCache мок для VerdictCache
type MockVerdictCache struct {
	mock.Mock
}

func (m *MockVerdictCache) Get(ctx context.Context, schemaName, fingerprint string) (*entity.Verdict, error) {
	args := m.Called(ctx, schemaName, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Verdict), args.Error(1)
}

func (m *MockVerdictCache) Set(ctx context.Context, verdict *entity.Verdict) error {
	args := m.Called(ctx, verdict)
	return args.Error(0)
}

func (m *MockVerdictCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka producer
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
