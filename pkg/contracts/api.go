package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"gamarriando/pkg/schema"
)

// APIResponse - общий конверт успешного ответа любого эндпоинта
type APIResponse[T any] struct {
	Success   bool      `json:"success"`
	Data      T         `json:"data"`
	Message   *string   `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAPIResponse[T any](data T, message string) APIResponse[T] {
	resp := APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if message != "" {
		resp.Message = &message
	}
	return resp
}

type apiEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data" validate:"required"`
	Message   *string         `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
}

var apiEnvelopeSchema = schema.New[apiEnvelope]("api_response",
	schema.WithDefaults(func() apiEnvelope {
		return apiEnvelope{Success: true, Timestamp: time.Now().UTC()}
	}))

// APIResponseSchema оборачивает схему данных в конверт {success, data, message, timestamp}.
// Ошибки данных адресуются как data.field.
func APIResponseSchema[T any](data *schema.Schema[T]) *schema.Schema[APIResponse[T]] {
	if data == nil {
		panic("contracts: APIResponseSchema requires a data schema")
	}

	return schema.Compose(
		fmt.Sprintf("api_response(%s)", data.Name()),
		apiEnvelopeSchema,
		func(env apiEnvelope) (APIResponse[T], []schema.Issue) {
			v, issues := schema.Nested(data, "data", env.Data)
			return APIResponse[T]{
				Success:   env.Success,
				Data:      v,
				Message:   env.Message,
				Timestamp: env.Timestamp,
			}, issues
		},
	)
}

// APIError - конверт ошибки
type APIError struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error" validate:"required"`
	Message   string         `json:"message" validate:"required"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp" validate:"required"`
}

func NewAPIError(code, message string, details map[string]any) APIError {
	return APIError{
		Success:   false,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

var APIErrorSchema = schema.New[APIError]("api_error",
	schema.WithDefaults(func() APIError { return APIError{Timestamp: time.Now().UTC()} }))

// JwtPayload - форма claims уже проверенного токена. Подпись здесь не проверяется.
type JwtPayload struct {
	Sub      string   `json:"sub" validate:"required"`
	Email    string   `json:"email" validate:"email"`
	Roles    []string `json:"roles"`
	VendorID *int64   `json:"vendorId,omitempty" validate:"omitempty,gt=0"`
	Exp      int64    `json:"exp" validate:"required"`
	Iat      int64    `json:"iat" validate:"required"`
}

func (p JwtPayload) HasRole(role UserRole) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// ExpiresAt возвращает exp как время
func (p JwtPayload) ExpiresAt() time.Time {
	return time.Unix(p.Exp, 0).UTC()
}

var JwtPayloadSchema = schema.New[JwtPayload]("jwt_payload",
	schema.WithDefaults(func() JwtPayload { return JwtPayload{Roles: []string{}} }),
	schema.WithRefinement("exp", "expiry_before_issue", "exp must not be earlier than iat",
		func(p JwtPayload) bool { return p.Exp >= p.Iat }),
)

type LoginRequest struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=8"`
}

type LoginUser struct {
	ID       int64    `json:"id" validate:"gt=0"`
	Email    string   `json:"email" validate:"email"`
	Name     string   `json:"name" validate:"required"`
	Roles    []string `json:"roles" validate:"required"`
	VendorID *int64   `json:"vendorId,omitempty" validate:"omitempty,gt=0"`
}

type LoginResponse struct {
	AccessToken  string     `json:"accessToken" validate:"required"`
	RefreshToken *string    `json:"refreshToken,omitempty"`
	TokenType    string     `json:"tokenType"`
	ExpiresIn    int64      `json:"expiresIn" validate:"required"`
	User         *LoginUser `json:"user" validate:"required"`
}

var (
	LoginRequestSchema  = schema.New[LoginRequest]("login.request")
	LoginResponseSchema = schema.New[LoginResponse]("login.response",
		schema.WithDefaults(func() LoginResponse { return LoginResponse{TokenType: "bearer"} }))
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthDegraded  HealthStatus = "degraded"
)

var healthStatuses = schema.Members[HealthStatus]{HealthHealthy, HealthUnhealthy, HealthDegraded}

func (s HealthStatus) Valid() bool    { return healthStatuses.Contains(s) }
func (HealthStatus) Values() []string { return healthStatuses.Strings() }

// DependencyState - у отдельной зависимости нет состояния degraded
type DependencyState string

const (
	DependencyHealthy   DependencyState = "healthy"
	DependencyUnhealthy DependencyState = "unhealthy"
)

var dependencyStates = schema.Members[DependencyState]{DependencyHealthy, DependencyUnhealthy}

func (s DependencyState) Valid() bool    { return dependencyStates.Contains(s) }
func (DependencyState) Values() []string { return dependencyStates.Strings() }

type DependencyHealth struct {
	Status       DependencyState `json:"status" validate:"enum"`
	ResponseTime *float64        `json:"responseTime,omitempty" validate:"omitempty,min=0"`
	LastCheck    time.Time       `json:"lastCheck" validate:"required"`
}

// HealthCheck - сводный отчет о здоровье сервиса и его зависимостей
type HealthCheck struct {
	Status       HealthStatus                `json:"status" validate:"enum"`
	Service      string                      `json:"service" validate:"required"`
	Version      string                      `json:"version" validate:"required"`
	Timestamp    time.Time                   `json:"timestamp" validate:"required"`
	Dependencies map[string]DependencyHealth `json:"dependencies,omitempty" validate:"omitempty,dive"`
}

// AggregateHealth сводит состояния зависимостей: все здоровы - healthy,
// все упали - unhealthy, иначе degraded. Без зависимостей сервис здоров.
func AggregateHealth(deps map[string]DependencyHealth) HealthStatus {
	if len(deps) == 0 {
		return HealthHealthy
	}

	down := 0
	for _, d := range deps {
		if d.Status != DependencyHealthy {
			down++
		}
	}

	switch down {
	case 0:
		return HealthHealthy
	case len(deps):
		return HealthUnhealthy
	default:
		return HealthDegraded
	}
}

type ServiceEndpoint struct {
	Path        string  `json:"path" validate:"required"`
	Method      string  `json:"method" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// ServiceInfo - дескриптор для service discovery
type ServiceInfo struct {
	Name          string            `json:"name" validate:"required"`
	Version       string            `json:"version" validate:"required"`
	Status        ServiceStatus     `json:"status" validate:"enum"`
	Endpoints     []ServiceEndpoint `json:"endpoints" validate:"required,dive"`
	HealthCheck   string            `json:"healthCheck" validate:"url"`
	Documentation *string           `json:"documentation,omitempty" validate:"omitempty,url"`
}

var (
	HealthCheckSchema = schema.New[HealthCheck]("health_check")
	ServiceInfoSchema = schema.New[ServiceInfo]("service_info")
)
