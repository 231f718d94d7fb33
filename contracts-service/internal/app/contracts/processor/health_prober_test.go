package processor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gamarriando/pkg/contracts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHealthService мок для HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Probe(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockHealthService) Snapshot() (contracts.HealthCheck, error) {
	args := m.Called()
	return args.Get(0).(contracts.HealthCheck), args.Error(1)
}

func (m *MockHealthService) Info() (contracts.ServiceInfo, error) {
	args := m.Called()
	return args.Get(0).(contracts.ServiceInfo), args.Error(1)
}

func TestHealthProber_Start_InitialProbe(t *testing.T) {
	// Arrange
	mockSvc := new(MockHealthService)
	ctx := context.Background()
	mockSvc.On("Probe", ctx).Return()

	prober := NewHealthProber(mockSvc)

	// Act
	err := prober.Start(ctx, "@every 1h")
	defer prober.Stop()

	// Assert
	require.NoError(t, err)
	assert.Len(t, prober.Entries(), 1)
	mockSvc.AssertNumberOfCalls(t, "Probe", 1)
}

func TestHealthProber_Start_InvalidSchedule(t *testing.T) {
	mockSvc := new(MockHealthService)

	prober := NewHealthProber(mockSvc)
	err := prober.Start(context.Background(), "not a schedule")

	assert.Error(t, err)
	assert.Empty(t, prober.Entries())
	mockSvc.AssertNotCalled(t, "Probe", mock.Anything)
}

func TestHealthProber_RunsOnSchedule(t *testing.T) {
	mockSvc := new(MockHealthService)
	ctx := context.Background()
	var probes atomic.Int32
	mockSvc.On("Probe", ctx).Run(func(mock.Arguments) { probes.Add(1) }).Return()

	prober := NewHealthProber(mockSvc)
	require.NoError(t, prober.Start(ctx, "@every 1s"))

	// первый вызов при старте, дальше по расписанию
	assert.Eventually(t, func() bool {
		return probes.Load() >= 2
	}, 3*time.Second, 100*time.Millisecond)

	prober.Stop()
}
