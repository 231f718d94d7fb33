package repository

import (
	"context"
	"errors"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"
)

var (
	ErrCacheMiss        = errors.New("verdict not cached")
	ErrInvalidSortField = errors.New("unsupported sort field")
)

// sortColumns - поля, по которым разрешена сортировка списка нарушений
var sortColumns = map[string]string{
	"":           "created_at",
	"createdAt":  "created_at",
	"schema":     "schema",
	"issueCount": "issue_count",
}

// ViolationRepository хранит отчеты о нарушениях (PostgreSQL или MongoDB)
type ViolationRepository interface {
	// Create сохраняет отчет
	Create(ctx context.Context, report *entity.ViolationReport) error

	// List возвращает страницу отчетов и общее число подходящих под фильтр
	List(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) ([]entity.ViolationReport, int64, error)

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}

// VerdictCache кеширует вердикты по отпечатку payload в Redis
type VerdictCache interface {
	Get(ctx context.Context, schemaName, fingerprint string) (*entity.Verdict, error)
	Set(ctx context.Context, verdict *entity.Verdict) error
	Ping(ctx context.Context) error
}

func sortColumn(field string) (string, error) {
	column, ok := sortColumns[field]
	if !ok {
		return "", ErrInvalidSortField
	}
	return column, nil
}
