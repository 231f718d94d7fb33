package contracts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gamarriando/pkg/schema"
)

var (
	ErrTemplateInactive = errors.New("notification template is inactive")
	ErrMissingVariable  = errors.New("template variable is not provided")
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

var notificationPriorities = schema.Members[NotificationPriority]{
	PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent,
}

func (p NotificationPriority) Valid() bool    { return notificationPriorities.Contains(p) }
func (NotificationPriority) Values() []string { return notificationPriorities.Strings() }

// NotificationCreate не содержит isRead: новое уведомление всегда непрочитано
type NotificationCreate struct {
	UserID      int64                `json:"userId" validate:"gt=0"`
	Type        NotificationType     `json:"type" validate:"enum"`
	Priority    NotificationPriority `json:"priority" validate:"enum"`
	Title       string               `json:"title" validate:"min=1,max=255"`
	Message     string               `json:"message" validate:"min=1"`
	Data        map[string]any       `json:"data,omitempty"`
	ScheduledAt *time.Time           `json:"scheduledAt,omitempty"`
	ExpiresAt   *time.Time           `json:"expiresAt,omitempty"`
}

type NotificationBase struct {
	NotificationCreate
	IsRead bool `json:"isRead"`
}

func defaultNotificationBase() NotificationBase {
	return NotificationBase{NotificationCreate: NotificationCreate{Priority: PriorityNormal}}
}

// Expired - срок жизни уведомления истек к моменту now
func (n NotificationCreate) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

type NotificationUpdate struct {
	UserID      *int64                `json:"userId,omitempty" validate:"omitempty,gt=0"`
	Type        *NotificationType     `json:"type,omitempty" validate:"omitempty,enum"`
	Priority    *NotificationPriority `json:"priority,omitempty" validate:"omitempty,enum"`
	Title       *string               `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Message     *string               `json:"message,omitempty" validate:"omitempty,min=1"`
	Data        map[string]any        `json:"data,omitempty"`
	IsRead      *bool                 `json:"isRead,omitempty"`
	ScheduledAt *time.Time            `json:"scheduledAt,omitempty"`
	ExpiresAt   *time.Time            `json:"expiresAt,omitempty"`
}

type NotificationResponse struct {
	NotificationBase
	ID        int64      `json:"id" validate:"gt=0"`
	CreatedAt time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt time.Time  `json:"updatedAt" validate:"required"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// NotificationTemplateCreate - параметризованный текст уведомления.
// С уведомлениями шаблон связан по имени, а не внешним ключом.
type NotificationTemplateCreate struct {
	Name      string           `json:"name" validate:"min=1"`
	Type      NotificationType `json:"type" validate:"enum"`
	Subject   string           `json:"subject" validate:"min=1"`
	Body      string           `json:"body" validate:"min=1"`
	Variables []string         `json:"variables"`
	IsActive  bool             `json:"isActive"`
}

type NotificationTemplate struct {
	NotificationTemplateCreate
	ID        int64     `json:"id" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

func defaultTemplateCreate() NotificationTemplateCreate {
	return NotificationTemplateCreate{Variables: []string{}, IsActive: true}
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render подставляет {{name}} в subject и body. Каждая объявленная
// переменная обязана быть в vars; необъявленные плейсхолдеры тоже
// заполняются из vars, если там есть значение, иначе остаются как есть.
func (t NotificationTemplateCreate) Render(vars map[string]string) (subject, body string, err error) {
	if !t.IsActive {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateInactive, t.Name)
	}

	var missing []string
	for _, name := range t.Variables {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(missing, ", "))
	}

	replace := func(text string) string {
		return placeholder.ReplaceAllStringFunc(text, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := vars[name]; ok {
				return v
			}
			return m
		})
	}

	return replace(t.Subject), replace(t.Body), nil
}

// Notify строит уведомление для пользователя из шаблона
func (t NotificationTemplateCreate) Notify(userID int64, vars map[string]string) (NotificationCreate, error) {
	subject, body, err := t.Render(vars)
	if err != nil {
		return NotificationCreate{}, err
	}

	n := NotificationCreate{
		UserID:   userID,
		Type:     t.Type,
		Priority: PriorityNormal,
		Title:    subject,
		Message:  body,
		Data:     map[string]any{"template": t.Name},
	}
	return n, NotificationCreateSchema.Check(n)
}

var (
	NotificationBaseSchema = schema.New[NotificationBase]("notification.base",
		schema.WithDefaults(defaultNotificationBase))

	NotificationCreateSchema = schema.New[NotificationCreate]("notification.create",
		schema.WithDefaults(func() NotificationCreate { return NotificationCreate{Priority: PriorityNormal} }))

	NotificationUpdateSchema = schema.New[NotificationUpdate]("notification.update")

	NotificationResponseSchema = schema.New[NotificationResponse]("notification.response",
		schema.WithDefaults(func() NotificationResponse {
			return NotificationResponse{NotificationBase: defaultNotificationBase()}
		}))

	NotificationTemplateCreateSchema = schema.New[NotificationTemplateCreate]("notification_template.create",
		schema.WithDefaults(defaultTemplateCreate))

	NotificationTemplateSchema = schema.New[NotificationTemplate]("notification_template",
		schema.WithDefaults(func() NotificationTemplate {
			return NotificationTemplate{NotificationTemplateCreate: defaultTemplateCreate()}
		}))
)
