package service

import (
	"context"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"
)

// SchemaRegistry - источник именованных схем (в проде contracts.Schemas)
type SchemaRegistry interface {
	Lookup(name string) (schema.Validator, error)
	Names() []string
}

type ValidationServiceInterface interface {
	Validate(ctx context.Context, schemaName string, body []byte, meta entity.RequestMeta) (*entity.Verdict, error)
	ListViolations(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) (*contracts.PaginatedResponse[entity.ViolationReport], error)
	SchemaNames() []string
}

type HealthServiceInterface interface {
	Probe(ctx context.Context)
	Snapshot() (contracts.HealthCheck, error)
	Info() (contracts.ServiceInfo, error)
}
