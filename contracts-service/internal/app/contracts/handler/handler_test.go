package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/contracts-service/internal/app/contracts/service"
	"gamarriando/contracts-service/internal/app/contracts/util"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// MockValidationService мок для ValidationServiceInterface
type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) Validate(ctx context.Context, schemaName string, body []byte, meta entity.RequestMeta) (*entity.Verdict, error) {
	args := m.Called(ctx, schemaName, body, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Verdict), args.Error(1)
}

func (m *MockValidationService) ListViolations(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) (*contracts.PaginatedResponse[entity.ViolationReport], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.PaginatedResponse[entity.ViolationReport]), args.Error(1)
}

func (m *MockValidationService) SchemaNames() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

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

type testEnv struct {
	router     *gin.Engine
	validation *MockValidationService
	health     *MockHealthService
}

func newTestEnv(burst int) testEnv {
	env := testEnv{
		validation: new(MockValidationService),
		health:     new(MockHealthService),
	}
	env.router = SetupRoutes(
		"contracts-service",
		NewContractHandler(env.validation),
		NewHealthHandler(env.health),
		NewAuthMiddleware(util.NewTokenVerifier(testSecret)),
		NewRateLimiter(1, burst, "contracts-service"),
	)
	return env
}

func (env testEnv) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, roles ...string) string {
	t.Helper()
	now := time.Now()
	token, err := util.NewTokenVerifier(testSecret).Sign(contracts.JwtPayload{
		Sub:   "42",
		Email: "ana@example.com",
		Roles: roles,
		Exp:   now.Add(time.Hour).Unix(),
		Iat:   now.Unix(),
	})
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ===================== Validate Tests =====================

func TestValidate_Accepted(t *testing.T) {
	// Arrange
	env := newTestEnv(10)
	body := []byte(`{"name":"Shoes","slug":"shoes"}`)
	verdict := &entity.Verdict{
		Schema:     "category.create",
		Valid:      true,
		Normalized: json.RawMessage(`{"name":"Shoes","slug":"shoes","sortOrder":0}`),
	}
	env.validation.On("Validate", mock.Anything, "category.create", body, mock.AnythingOfType("entity.RequestMeta")).
		Return(verdict, nil)

	// Act
	rec := env.do(t, http.MethodPost, "/api/v1/validate/category.create", "", body)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Verdict-Cache"))
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(0), data["sortOrder"])
	env.validation.AssertExpectations(t)
}

func TestValidate_Rejected(t *testing.T) {
	// Arrange
	env := newTestEnv(10)
	verdict := &entity.Verdict{
		Schema: "category.create",
		Issues: entity.IssueList{{Path: "name", Kind: schema.KindMissing, Code: "required", Message: "field is required"}},
		Cached: true,
	}
	env.validation.On("Validate", mock.Anything, "category.create", mock.Anything, mock.Anything).Return(verdict, nil)

	// Act
	rec := env.do(t, http.MethodPost, "/api/v1/validate/category.create", "", []byte(`{"slug":"shoes"}`))

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Verdict-Cache"))
	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "validation_failed", resp["error"])
	details := resp["details"].(map[string]any)
	assert.Equal(t, "category.create", details["schema"])
	issues := details["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].(map[string]any)["path"])
	assert.Equal(t, "missing", issues[0].(map[string]any)["kind"])
}

func TestValidate_SubjectFromToken(t *testing.T) {
	env := newTestEnv(10)
	token := signToken(t, "customer")
	env.validation.On("Validate", mock.Anything, "order.create", mock.Anything,
		mock.MatchedBy(func(meta entity.RequestMeta) bool {
			return meta.Subject == "42" && meta.RequestID != ""
		})).
		Return(&entity.Verdict{Valid: true, Normalized: json.RawMessage(`{}`)}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/validate/order.create", token, []byte(`{}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	env.validation.AssertExpectations(t)
}

func TestValidate_UnknownSchema(t *testing.T) {
	env := newTestEnv(10)
	env.validation.On("Validate", mock.Anything, "nope", mock.Anything, mock.Anything).Return(nil, service.ErrSchemaNotFound)

	rec := env.do(t, http.MethodPost, "/api/v1/validate/nope", "", []byte(`{}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "schema_not_found", decode(t, rec)["error"])
}

func TestValidate_InternalError(t *testing.T) {
	env := newTestEnv(10)
	env.validation.On("Validate", mock.Anything, "order.create", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	rec := env.do(t, http.MethodPost, "/api/v1/validate/order.create", "", []byte(`{}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestValidate_RateLimited(t *testing.T) {
	// Arrange: бакет на один запрос
	env := newTestEnv(1)
	env.validation.On("Validate", mock.Anything, "order.create", mock.Anything, mock.Anything).
		Return(&entity.Verdict{Valid: true, Normalized: json.RawMessage(`{}`)}, nil).Once()

	// Act
	first := env.do(t, http.MethodPost, "/api/v1/validate/order.create", "", []byte(`{}`))
	second := env.do(t, http.MethodPost, "/api/v1/validate/order.create", "", []byte(`{}`))

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate_limited", decode(t, second)["error"])
	env.validation.AssertExpectations(t)
}

// ===================== Schemas / Violations Tests =====================

func TestListSchemas(t *testing.T) {
	env := newTestEnv(10)
	env.validation.On("SchemaNames").Return([]string{"order.create", "user.create"})

	rec := env.do(t, http.MethodGet, "/api/v1/schemas", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
}

func TestListViolations_RequiresToken(t *testing.T) {
	env := newTestEnv(10)

	rec := env.do(t, http.MethodGet, "/api/v1/violations", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env.validation.AssertNotCalled(t, "ListViolations", mock.Anything, mock.Anything, mock.Anything)
}

func TestListViolations_RequiresAdmin(t *testing.T) {
	env := newTestEnv(10)

	rec := env.do(t, http.MethodGet, "/api/v1/violations", signToken(t, "customer"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListViolations_DefaultPagination(t *testing.T) {
	// Arrange
	env := newTestEnv(10)
	page := contracts.DefaultPagination()
	resp := contracts.NewPaginatedResponse([]entity.ViolationReport{{Schema: "order.create"}}, 1, page)
	env.validation.On("ListViolations", mock.Anything, entity.ViolationFilter{Schema: "order.create"}, page).
		Return(&resp, nil)

	// Act
	rec := env.do(t, http.MethodGet, "/api/v1/violations?schema=order.create", signToken(t, "admin"), nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["pages"])
	env.validation.AssertExpectations(t)
}

func TestListViolations_QueryParams(t *testing.T) {
	env := newTestEnv(10)
	page := contracts.Pagination{Page: 2, Size: 5, SortBy: "issueCount", SortOrder: contracts.SortDesc}
	resp := contracts.NewPaginatedResponse[entity.ViolationReport](nil, 0, page)
	env.validation.On("ListViolations", mock.Anything, entity.ViolationFilter{}, page).Return(&resp, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/violations?page=2&size=5&sortBy=issueCount&sortOrder=desc", signToken(t, "admin"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.validation.AssertExpectations(t)
}

func TestListViolations_InvalidPagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		path  string
	}{
		{"not a number", "?page=abc", "page"},
		{"size too large", "?size=500", "size"},
		{"bad sort order", "?sortOrder=sideways", "sortOrder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(10)

			rec := env.do(t, http.MethodGet, "/api/v1/violations"+tt.query, signToken(t, "admin"), nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "invalid_pagination", body["error"])
			issues := body["details"].(map[string]any)["issues"].([]any)
			assert.Equal(t, tt.path, issues[0].(map[string]any)["path"])
		})
	}
}

func TestListViolations_InvalidSortField(t *testing.T) {
	env := newTestEnv(10)
	env.validation.On("ListViolations", mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrInvalidSortField)

	rec := env.do(t, http.MethodGet, "/api/v1/violations?sortBy=password", signToken(t, "admin"), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_sort_field", decode(t, rec)["error"])
}

// ===================== Introspect Tests =====================

func TestIntrospect_Success(t *testing.T) {
	env := newTestEnv(10)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/introspect", signToken(t, "vendor"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "42", data["sub"])
	assert.Equal(t, []any{"vendor"}, data["roles"])
}

func TestIntrospect_InvalidHeader(t *testing.T) {
	env := newTestEnv(10)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/introspect", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIntrospect_ExpiredToken(t *testing.T) {
	env := newTestEnv(10)
	now := time.Now()
	token, err := util.NewTokenVerifier(testSecret).Sign(contracts.JwtPayload{
		Sub: "42", Email: "ana@example.com", Roles: []string{},
		Exp: now.Add(-time.Minute).Unix(), Iat: now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/introspect", token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has expired", decode(t, rec)["message"])
}

// ===================== Health Tests =====================

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		status contracts.HealthStatus
		code   int
	}{
		{"healthy", contracts.HealthHealthy, http.StatusOK},
		{"degraded", contracts.HealthDegraded, http.StatusOK},
		{"unhealthy", contracts.HealthUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(10)
			env.health.On("Snapshot").Return(contracts.HealthCheck{
				Status: tt.status, Service: "contracts-service", Version: "1.0.0", Timestamp: time.Now(),
			}, nil)

			rec := env.do(t, http.MethodGet, "/health", "", nil)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, string(tt.status), decode(t, rec)["status"])
		})
	}
}

func TestLiveness(t *testing.T) {
	env := newTestEnv(10)

	rec := env.do(t, http.MethodGet, "/health/liveness", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInfo(t *testing.T) {
	env := newTestEnv(10)
	env.health.On("Info").Return(contracts.ServiceInfo{
		Name:        "contracts-service",
		Version:     "1.0.0",
		Status:      contracts.ServiceStatusActive,
		Endpoints:   Endpoints(),
		HealthCheck: "http://localhost:8086/health",
	}, nil)

	rec := env.do(t, http.MethodGet, "/info", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["endpoints"], len(routes))
}

func TestEndpoints_MatchRouter(t *testing.T) {
	// Все объявленные эндпоинты действительно зарегистрированы
	env := newTestEnv(10)
	registered := make(map[string]bool)
	for _, r := range env.router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, e := range Endpoints() {
		assert.True(t, registered[e.Method+" "+e.Path], e.Path)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, "contracts-service")
	rl.getLimiter("10.0.0.1")

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 1, rl.Cleanup(0))
}
