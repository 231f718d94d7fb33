package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/contracts-service/internal/app/contracts/repository"
	"gamarriando/contracts-service/internal/app/contracts/repository/mocks"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type validationDeps struct {
	repo    *mocks.MockViolationRepository
	cache   *mocks.MockVerdictCache
	kafka   *mocks.MockMessagePublisher
	service *ValidationService
}

func newValidationDeps() validationDeps {
	d := validationDeps{
		repo:  new(mocks.MockViolationRepository),
		cache: new(mocks.MockVerdictCache),
		kafka: new(mocks.MockMessagePublisher),
	}
	d.service = NewValidationService(contracts.Schemas, d.repo, d.cache, d.kafka, "contracts-service")
	return d
}

func (d validationDeps) assertExpectations(t *testing.T) {
	d.repo.AssertExpectations(t)
	d.cache.AssertExpectations(t)
	d.kafka.AssertExpectations(t)
}

// ===================== Validate Tests =====================

func TestValidate_UnknownSchema(t *testing.T) {
	d := newValidationDeps()

	verdict, err := d.service.Validate(context.Background(), "no.such.schema", []byte(`{}`), entity.RequestMeta{})

	assert.ErrorIs(t, err, ErrSchemaNotFound)
	assert.Nil(t, verdict)
	d.assertExpectations(t)
}

func TestValidate_ValidPayload_CacheMiss(t *testing.T) {
	// Arrange
	d := newValidationDeps()
	ctx := context.Background()
	body := []byte(`{"name":"Shoes","slug":"shoes"}`)
	fp := Fingerprint("category.create", body)

	d.cache.On("Get", ctx, "category.create", fp).Return(nil, repository.ErrCacheMiss)
	d.cache.On("Set", ctx, mock.MatchedBy(func(v *entity.Verdict) bool {
		return v.Valid && v.Fingerprint == fp
	})).Return(nil)

	// Act
	verdict, err := d.service.Validate(ctx, "category.create", body, entity.RequestMeta{})

	// Assert
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.False(t, verdict.Cached)
	assert.Empty(t, verdict.Issues)
	assert.Contains(t, string(verdict.Normalized), `"slug":"shoes"`)
	// Значение по умолчанию попадает в нормализованный payload
	assert.Contains(t, string(verdict.Normalized), `"sortOrder":0`)
	d.assertExpectations(t)
}

func TestValidate_InvalidPayload_ReportsViolation(t *testing.T) {
	// Arrange
	d := newValidationDeps()
	ctx := context.Background()
	body := []byte(`{"name":"","slug":"shoes"}`)
	meta := entity.RequestMeta{RequestID: "req-1", Subject: "42"}

	var stored *entity.ViolationReport
	d.cache.On("Get", ctx, "category.create", mock.AnythingOfType("string")).Return(nil, repository.ErrCacheMiss)
	d.cache.On("Set", ctx, mock.AnythingOfType("*entity.Verdict")).Return(nil)
	d.repo.On("Create", ctx, mock.AnythingOfType("*entity.ViolationReport")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entity.ViolationReport) }).
		Return(nil)

	var published []byte
	var key string
	d.kafka.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			key = args.String(1)
			published = args.Get(2).([]byte)
		}).
		Return(nil)

	// Act
	verdict, err := d.service.Validate(ctx, "category.create", body, meta)

	// Assert
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Nil(t, verdict.Normalized)
	require.Len(t, verdict.Issues, 1)
	assert.Equal(t, "name", verdict.Issues[0].Path)
	assert.Equal(t, schema.KindConstraint, verdict.Issues[0].Kind)

	require.NotNil(t, stored)
	assert.Equal(t, "category.create", stored.Schema)
	assert.Equal(t, 1, stored.IssueCount)
	assert.Equal(t, "42", stored.Subject)
	assert.Equal(t, "req-1", stored.RequestID)

	// Ключ сообщения - id отчета
	assert.Equal(t, stored.ID.String(), key)
	var event entity.ViolationEvent
	require.NoError(t, json.Unmarshal(published, &event))
	assert.Equal(t, entity.EventContractViolation, event.EventType)
	assert.Equal(t, []string{"name"}, event.Paths)
	d.assertExpectations(t)
}

func TestValidate_CachedValidVerdict(t *testing.T) {
	d := newValidationDeps()
	ctx := context.Background()
	body := []byte(`{"name":"Shoes","slug":"shoes"}`)
	cached := &entity.Verdict{Schema: "category.create", Valid: true, Cached: true}

	d.cache.On("Get", ctx, "category.create", Fingerprint("category.create", body)).Return(cached, nil)

	verdict, err := d.service.Validate(ctx, "category.create", body, entity.RequestMeta{})

	require.NoError(t, err)
	assert.Same(t, cached, verdict)
	d.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestValidate_CachedRejectionStillReported(t *testing.T) {
	d := newValidationDeps()
	ctx := context.Background()
	cached := &entity.Verdict{
		Schema: "category.create",
		Issues: entity.IssueList{{Path: "name", Kind: schema.KindConstraint, Code: "min", Message: "must be at least 1 characters"}},
		Cached: true,
	}

	d.cache.On("Get", ctx, "category.create", mock.AnythingOfType("string")).Return(cached, nil)
	d.repo.On("Create", ctx, mock.AnythingOfType("*entity.ViolationReport")).Return(nil)
	d.kafka.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	verdict, err := d.service.Validate(ctx, "category.create", []byte(`{"name":""}`), entity.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, verdict.Cached)
	d.assertExpectations(t)
}

func TestValidate_CacheUnavailable(t *testing.T) {
	// Redis упал: проверка все равно выполняется
	d := newValidationDeps()
	ctx := context.Background()

	d.cache.On("Get", ctx, "category.create", mock.AnythingOfType("string")).Return(nil, errors.New("connection refused"))
	d.cache.On("Set", ctx, mock.AnythingOfType("*entity.Verdict")).Return(errors.New("connection refused"))

	verdict, err := d.service.Validate(ctx, "category.create", []byte(`{"name":"Shoes","slug":"shoes"}`), entity.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	d.assertExpectations(t)
}

func TestValidate_StoreAndKafkaFailuresAreNotFatal(t *testing.T) {
	d := newValidationDeps()
	ctx := context.Background()

	d.cache.On("Get", ctx, "category.create", mock.AnythingOfType("string")).Return(nil, repository.ErrCacheMiss)
	d.cache.On("Set", ctx, mock.AnythingOfType("*entity.Verdict")).Return(nil)
	d.repo.On("Create", ctx, mock.AnythingOfType("*entity.ViolationReport")).Return(errors.New("db down"))
	d.kafka.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(errors.New("kafka down"))

	verdict, err := d.service.Validate(ctx, "category.create", []byte(`{"slug":"shoes"}`), entity.RequestMeta{})

	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, schema.KindMissing, verdict.Issues[0].Kind)
	d.assertExpectations(t)
}

func TestFingerprint(t *testing.T) {
	body := []byte(`{"a":1}`)

	assert.Equal(t, Fingerprint("x", body), Fingerprint("x", body))
	assert.NotEqual(t, Fingerprint("x", body), Fingerprint("y", body))
	assert.Len(t, Fingerprint("x", body), 64)

	// имя схемы отделено от тела, склейка не совпадает
	assert.NotEqual(t, Fingerprint("ab", []byte("c")), Fingerprint("a", []byte("bc")))
}

// ===================== ListViolations Tests =====================

func TestListViolations_Success(t *testing.T) {
	d := newValidationDeps()
	ctx := context.Background()
	filter := entity.ViolationFilter{Schema: "order.create"}
	page := contracts.Pagination{Page: 2, Size: 2, SortOrder: contracts.SortDesc}
	reports := []entity.ViolationReport{{Schema: "order.create"}, {Schema: "order.create"}}

	d.repo.On("List", ctx, filter, page).Return(reports, int64(5), nil)

	resp, err := d.service.ListViolations(ctx, filter, page)

	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, 2, resp.Page)
	d.assertExpectations(t)
}

func TestListViolations_InvalidSortField(t *testing.T) {
	d := newValidationDeps()
	ctx := context.Background()
	page := contracts.Pagination{Page: 1, Size: 20, SortBy: "password"}

	d.repo.On("List", ctx, entity.ViolationFilter{}, page).Return(nil, int64(0), repository.ErrInvalidSortField)

	_, err := d.service.ListViolations(ctx, entity.ViolationFilter{}, page)

	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestSchemaNames(t *testing.T) {
	d := newValidationDeps()

	names := d.service.SchemaNames()

	assert.Equal(t, contracts.Schemas.Len(), len(names))
	assert.Contains(t, names, "order.create")
}
