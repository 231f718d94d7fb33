package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/contracts-service/internal/app/contracts/infrastructure"
	"gamarriando/contracts-service/internal/app/contracts/repository"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"
	"gamarriando/pkg/metrics"
	"gamarriando/pkg/schema"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	// Ошибки для обработки в handlers
	ErrSchemaNotFound   = errors.New("schema not found")
	ErrInvalidSortField = errors.New("invalid sort field")
)

// ValidationService проверяет payload по именованной схеме.
// Вердикты кешируются в Redis, отклонения сохраняются и уходят в Kafka.
type ValidationService struct {
	registry      SchemaRegistry
	violationRepo repository.ViolationRepository
	verdictCache  repository.VerdictCache
	kafkaProducer infrastructure.MessagePublisher
	service       string
}

func NewValidationService(
	registry SchemaRegistry,
	violationRepo repository.ViolationRepository,
	verdictCache repository.VerdictCache,
	kafkaProducer infrastructure.MessagePublisher,
	service string,
) *ValidationService {
	return &ValidationService{
		registry:      registry,
		violationRepo: violationRepo,
		verdictCache:  verdictCache,
		kafkaProducer: kafkaProducer,
		service:       service,
	}
}

// Fingerprint - blake2b-256 от имени схемы и тела запроса
func Fingerprint(schemaName string, body []byte) string {
	buf := make([]byte, 0, len(schemaName)+1+len(body))
	buf = append(buf, schemaName...)
	buf = append(buf, 0)
	buf = append(buf, body...)

	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Validate возвращает вердикт. Ошибка означает сбой, а не невалидный payload:
// нарушения лежат в Verdict.Issues.
func (s *ValidationService) Validate(ctx context.Context, schemaName string, body []byte, meta entity.RequestMeta) (*entity.Verdict, error) {
	validator, err := s.registry.Lookup(schemaName)
	if err != nil {
		metrics.RecordUnknownSchema(s.service, schemaName)
		return nil, ErrSchemaNotFound
	}

	fingerprint := Fingerprint(schemaName, body)

	cached, err := s.verdictCache.Get(ctx, schemaName, fingerprint)
	switch {
	case err == nil:
		if !cached.Valid {
			s.reportViolation(ctx, cached, meta)
		}
		return cached, nil
	case !errors.Is(err, repository.ErrCacheMiss):
		// Redis недоступен - проверяем без кеша
		logger.Warn().Err(err).Str("schema", schemaName).Msg("Verdict cache lookup failed")
	}

	verdict, err := s.check(validator, fingerprint, body)
	if err != nil {
		return nil, err
	}

	if err := s.verdictCache.Set(ctx, verdict); err != nil {
		logger.Warn().Err(err).Str("schema", schemaName).Msg("Failed to cache verdict")
	}

	if !verdict.Valid {
		s.reportViolation(ctx, verdict, meta)
	}

	return verdict, nil
}

func (s *ValidationService) check(validator schema.Validator, fingerprint string, body []byte) (*entity.Verdict, error) {
	timer := metrics.NewValidationTimer(s.service, validator.Name())
	verdict := &entity.Verdict{Schema: validator.Name(), Fingerprint: fingerprint}

	value, err := validator.ParseAny(body)
	if err != nil {
		issues, ok := schema.IssuesOf(err)
		if !ok {
			return nil, fmt.Errorf("failed to validate payload: %w", err)
		}
		verdict.Issues = issues
		timer.Rejected(verdict.Issues.Kinds())
		return verdict, nil
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode normalized payload: %w", err)
	}

	verdict.Valid = true
	verdict.Normalized = normalized
	timer.Accepted()
	return verdict, nil
}

// reportViolation сохраняет отчет и публикует CONTRACT_VIOLATION.
// Сбои хранилища и Kafka не влияют на ответ клиенту.
func (s *ValidationService) reportViolation(ctx context.Context, verdict *entity.Verdict, meta entity.RequestMeta) {
	report := &entity.ViolationReport{
		ID:          uuid.New(),
		Schema:      verdict.Schema,
		Fingerprint: verdict.Fingerprint,
		Issues:      verdict.Issues,
		IssueCount:  len(verdict.Issues),
		Subject:     meta.Subject,
		RequestID:   meta.RequestID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.violationRepo.Create(ctx, report); err != nil {
		logger.Error().Err(err).Str("schema", report.Schema).Msg("Failed to store violation report")
	}

	paths := make([]string, len(report.Issues))
	for i, issue := range report.Issues {
		paths[i] = issue.Path
	}

	event := entity.ViolationEvent{
		EventType:   entity.EventContractViolation,
		ViolationID: report.ID.String(),
		Schema:      report.Schema,
		Fingerprint: report.Fingerprint,
		IssueCount:  report.IssueCount,
		Paths:       paths,
		Subject:     report.Subject,
		Timestamp:   report.CreatedAt,
	}

	if err := s.publishViolationEvent(ctx, event); err != nil {
		logger.Error().Err(err).Str("violation_id", event.ViolationID).Msg("Failed to publish violation event")
	}
}

func (s *ValidationService) publishViolationEvent(ctx context.Context, event entity.ViolationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return s.kafkaProducer.PublishMessage(ctx, event.ViolationID, data)
}

// ListViolations возвращает страницу отчетов о нарушениях
func (s *ValidationService) ListViolations(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) (*contracts.PaginatedResponse[entity.ViolationReport], error) {
	reports, total, err := s.violationRepo.List(ctx, filter, page)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSortField) {
			return nil, ErrInvalidSortField
		}
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	resp := contracts.NewPaginatedResponse(reports, int(total), page)
	return &resp, nil
}

func (s *ValidationService) SchemaNames() []string {
	return s.registry.Names()
}
