package processor

import (
	"context"

	"gamarriando/contracts-service/internal/app/contracts/service"
	"gamarriando/pkg/logger"

	"github.com/robfig/cron/v3"
)

// HealthProber по расписанию опрашивает зависимости сервиса
type HealthProber struct {
	cron      *cron.Cron
	healthSvc service.HealthServiceInterface
}

func NewHealthProber(healthSvc service.HealthServiceInterface) *HealthProber {
	cronLogger := logger.With().Str("component", "cron").Logger()
	c := cron.New(cron.WithLogger(cron.PrintfLogger(&cronLogger)))

	return &HealthProber{
		cron:      c,
		healthSvc: healthSvc,
	}
}

// Start регистрирует задачу и сразу делает первую проверку,
// чтобы /health не отдавал пустой список зависимостей до первого тика
func (p *HealthProber) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting health prober")

	_, err := p.cron.AddFunc(schedule, func() {
		p.healthSvc.Probe(ctx)
		logger.Debug().Msg("Dependency probe completed")
	})
	if err != nil {
		return err
	}

	p.cron.Start()

	p.healthSvc.Probe(ctx)
	logger.Info().Msg("Initial dependency probe completed")

	return nil
}

func (p *HealthProber) Stop() {
	logger.Info().Msg("Stopping health prober...")
	ctx := p.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Health prober stopped")
}

func (p *HealthProber) Entries() []cron.Entry {
	return p.cron.Entries()
}
