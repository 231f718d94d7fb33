package repository

import (
	"context"
	"fmt"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/metrics"

	"gorm.io/gorm"
)

const violationsTable = "violation_reports"

// violationRepository реализует ViolationRepository поверх PostgreSQL через GORM
type violationRepository struct {
	db      *gorm.DB
	service string
}

func NewViolationRepository(db *gorm.DB, service string) ViolationRepository {
	return &violationRepository{db: db, service: service}
}

func (r *violationRepository) Create(ctx context.Context, report *entity.ViolationReport) error {
	timer := metrics.NewDbTimer(r.service, metrics.DbOpInsert, violationsTable)
	defer timer.ObserveDuration()

	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		metrics.RecordDbError(r.service, metrics.DbOpInsert)
		return fmt.Errorf("failed to create violation report: %w", err)
	}

	return nil
}

func (r *violationRepository) List(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) ([]entity.ViolationReport, int64, error) {
	column, err := sortColumn(page.SortBy)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", err, page.SortBy)
	}

	timer := metrics.NewDbTimer(r.service, metrics.DbOpSelect, violationsTable)
	defer timer.ObserveDuration()

	// Каждому запросу свой экземпляр: Count меняет состояние statement
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&entity.ViolationReport{})
		if filter.Schema != "" {
			q = q.Where("schema = ?", filter.Schema)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		metrics.RecordDbError(r.service, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count violation reports: %w", err)
	}

	reports := make([]entity.ViolationReport, 0, page.Size)
	if total == 0 {
		return reports, 0, nil
	}

	err = query().
		Order(fmt.Sprintf("%s %s", column, page.SortOrder)).
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&reports).Error
	if err != nil {
		metrics.RecordDbError(r.service, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list violation reports: %w", err)
	}

	return reports, total, nil
}

func (r *violationRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
