// Package contracts описывает все ресурсы, которыми витрина обменивается
// с коммерческим API: схемы Base/Create/Update/Response, обертки и перечисления.
// Пакет является единой точкой импорта; имена экспортов не пересекаются.
package contracts

import (
	"encoding/json"
	"fmt"
	"math"

	"gamarriando/pkg/schema"
)

// === ПЕРЕЧИСЛЕНИЯ ===

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

var sortOrders = schema.Members[SortOrder]{SortAsc, SortDesc}

func (s SortOrder) Valid() bool    { return sortOrders.Contains(s) }
func (SortOrder) Values() []string { return sortOrders.Strings() }

type ServiceStatus string

const (
	ServiceStatusActive      ServiceStatus = "active"
	ServiceStatusInactive    ServiceStatus = "inactive"
	ServiceStatusMaintenance ServiceStatus = "maintenance"
)

var serviceStatuses = schema.Members[ServiceStatus]{
	ServiceStatusActive, ServiceStatusInactive, ServiceStatusMaintenance,
}

func (s ServiceStatus) Valid() bool    { return serviceStatuses.Contains(s) }
func (ServiceStatus) Values() []string { return serviceStatuses.Strings() }

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleVendor   UserRole = "vendor"
	RoleCustomer UserRole = "customer"
)

var userRoles = schema.Members[UserRole]{RoleAdmin, RoleVendor, RoleCustomer}

func (r UserRole) Valid() bool    { return userRoles.Contains(r) }
func (UserRole) Values() []string { return userRoles.Strings() }

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var orderStatuses = schema.Members[OrderStatus]{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool    { return orderStatuses.Contains(s) }
func (OrderStatus) Values() []string { return orderStatuses.Strings() }

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentStatuses = schema.Members[PaymentStatus]{
	PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
	PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded,
}

func (s PaymentStatus) Valid() bool    { return paymentStatuses.Contains(s) }
func (PaymentStatus) Values() []string { return paymentStatuses.Strings() }

type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
	NotificationPush  NotificationType = "push"
	NotificationInApp NotificationType = "in_app"
)

var notificationTypes = schema.Members[NotificationType]{
	NotificationEmail, NotificationSMS, NotificationPush, NotificationInApp,
}

func (t NotificationType) Valid() bool    { return notificationTypes.Contains(t) }
func (NotificationType) Values() []string { return notificationTypes.Strings() }

// === ПАГИНАЦИЯ ===

// Pagination - параметры постраничной выборки
type Pagination struct {
	Page      int       `json:"page" validate:"min=1"`
	Size      int       `json:"size" validate:"min=1,max=100"`
	SortBy    string    `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder" validate:"enum"`
}

// Offset возвращает смещение первой записи страницы
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

func DefaultPagination() Pagination {
	return Pagination{Page: 1, Size: 20, SortOrder: SortAsc}
}

var PaginationSchema = schema.New[Pagination]("pagination", schema.WithDefaults(DefaultPagination))

// PaginatedResponse - ответ любого списочного эндпоинта
type PaginatedResponse[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// NewPaginatedResponse считает pages/hasNext/hasPrev так же, как сервисы API:
// при пустой выборке страниц считается одна.
func NewPaginatedResponse[T any](items []T, total int, p Pagination) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	pages := 1
	if total > 0 && p.Size > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Size)))
	}

	return PaginatedResponse[T]{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		Size:    p.Size,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}

type paginatedEnvelope struct {
	Items   []json.RawMessage `json:"items" validate:"required"`
	Total   *int              `json:"total" validate:"required,min=0"`
	Page    *int              `json:"page" validate:"required,min=1"`
	Size    *int              `json:"size" validate:"required,min=1"`
	Pages   *int              `json:"pages" validate:"required,min=0"`
	HasNext *bool             `json:"hasNext" validate:"required"`
	HasPrev *bool             `json:"hasPrev" validate:"required"`
}

var paginatedEnvelopeSchema = schema.New[paginatedEnvelope]("paginated")

// PaginatedResponseSchema строит схему списка для произвольной схемы элемента.
// Каждый элемент разбирается схемой item, ошибки адресуются как items[i].field.
func PaginatedResponseSchema[T any](item *schema.Schema[T]) *schema.Schema[PaginatedResponse[T]] {
	if item == nil {
		panic("contracts: PaginatedResponseSchema requires an item schema")
	}

	return schema.Compose(
		fmt.Sprintf("paginated(%s)", item.Name()),
		paginatedEnvelopeSchema,
		func(env paginatedEnvelope) (PaginatedResponse[T], []schema.Issue) {
			out := PaginatedResponse[T]{
				Items:   make([]T, 0, len(env.Items)),
				Total:   *env.Total,
				Page:    *env.Page,
				Size:    *env.Size,
				Pages:   *env.Pages,
				HasNext: *env.HasNext,
				HasPrev: *env.HasPrev,
			}

			var issues []schema.Issue
			for i, raw := range env.Items {
				v, itemIssues := schema.Nested(item, fmt.Sprintf("items[%d]", i), raw)
				issues = append(issues, itemIssues...)
				out.Items = append(out.Items, v)
			}

			return out, issues
		},
	)
}

// === ОБЩИЕ КОНВЕРТЫ ===

type ErrorResponse struct {
	Error   string         `json:"error" validate:"required"`
	Message string         `json:"message" validate:"required"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message" validate:"required"`
	Data    map[string]any `json:"data,omitempty"`
}

var (
	ErrorResponseSchema   = schema.New[ErrorResponse]("error_response")
	SuccessResponseSchema = schema.New[SuccessResponse]("success_response",
		schema.WithDefaults(func() SuccessResponse { return SuccessResponse{Success: true} }))
)
