package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/infrastructure"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"
	"gamarriando/pkg/metrics"
)

type HealthServiceConfig struct {
	Service       string
	Version       string
	PublicURL     string
	Documentation string
	ProbeTimeout  time.Duration
	Endpoints     []contracts.ServiceEndpoint
}

// HealthService опрашивает зависимости и хранит последний результат.
// Ручка /health отдает снимок и сама зависимости не трогает.
type HealthService struct {
	cfg    HealthServiceConfig
	probes map[string]infrastructure.Pinger

	mu     sync.RWMutex
	states map[string]contracts.DependencyHealth
}

func NewHealthService(cfg HealthServiceConfig, probes map[string]infrastructure.Pinger) *HealthService {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	return &HealthService{
		cfg:    cfg,
		probes: probes,
		states: make(map[string]contracts.DependencyHealth, len(probes)),
	}
}

// Probe проверяет все зависимости параллельно, каждую со своим таймаутом
func (s *HealthService) Probe(ctx context.Context) {
	var wg sync.WaitGroup
	for name, probe := range s.probes {
		wg.Add(1)
		go func(name string, probe infrastructure.Pinger) {
			defer wg.Done()
			s.record(name, s.probeOne(ctx, name, probe))
		}(name, probe)
	}
	wg.Wait()
}

func (s *HealthService) probeOne(ctx context.Context, name string, probe infrastructure.Pinger) contracts.DependencyHealth {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	start := time.Now()
	err := probe.Ping(probeCtx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	state := contracts.DependencyHealth{
		Status:       contracts.DependencyHealthy,
		ResponseTime: &elapsed,
		LastCheck:    time.Now().UTC(),
	}
	if err != nil {
		state.Status = contracts.DependencyUnhealthy
		logger.Warn().Err(err).Str("dependency", name).Msg("Dependency probe failed")
	}

	metrics.SetDependencyUp(s.cfg.Service, name, err == nil)
	return state
}

func (s *HealthService) record(name string, state contracts.DependencyHealth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[name] = state
}

// Snapshot собирает HealthCheck из последних проверок
func (s *HealthService) Snapshot() (contracts.HealthCheck, error) {
	s.mu.RLock()
	deps := make(map[string]contracts.DependencyHealth, len(s.states))
	for name, state := range s.states {
		deps[name] = state
	}
	s.mu.RUnlock()

	check := contracts.HealthCheck{
		Status:       contracts.AggregateHealth(deps),
		Service:      s.cfg.Service,
		Version:      s.cfg.Version,
		Timestamp:    time.Now().UTC(),
		Dependencies: deps,
	}

	if err := contracts.HealthCheckSchema.Check(check); err != nil {
		return contracts.HealthCheck{}, fmt.Errorf("health check does not match contract: %w", err)
	}
	return check, nil
}

// Info возвращает дескриптор сервиса для service discovery
func (s *HealthService) Info() (contracts.ServiceInfo, error) {
	status := contracts.ServiceStatusActive
	if check, err := s.Snapshot(); err == nil && check.Status == contracts.HealthUnhealthy {
		status = contracts.ServiceStatusInactive
	}

	endpoints := make([]contracts.ServiceEndpoint, len(s.cfg.Endpoints))
	copy(endpoints, s.cfg.Endpoints)
	sort.SliceStable(endpoints, func(i, j int) bool { return endpoints[i].Path < endpoints[j].Path })

	info := contracts.ServiceInfo{
		Name:        s.cfg.Service,
		Version:     s.cfg.Version,
		Status:      status,
		Endpoints:   endpoints,
		HealthCheck: strings.TrimRight(s.cfg.PublicURL, "/") + "/health",
	}
	if s.cfg.Documentation != "" {
		info.Documentation = &s.cfg.Documentation
	}

	if err := contracts.ServiceInfoSchema.Check(info); err != nil {
		return contracts.ServiceInfo{}, fmt.Errorf("service info does not match contract: %w", err)
	}
	return info, nil
}
