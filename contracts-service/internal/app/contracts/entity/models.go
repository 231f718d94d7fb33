package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamarriando/pkg/schema"

	"github.com/google/uuid"
)

// EventContractViolation - тип события в Kafka
const EventContractViolation = "CONTRACT_VIOLATION"

// ViolationReport - отклоненный payload: какая схема, какие нарушения, от кого.
// Тело запроса не хранится, только его отпечаток.
type ViolationReport struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Schema      string    `json:"schema" gorm:"size:128;not null;index"`
	Fingerprint string    `json:"fingerprint" gorm:"size:64;not null;index"`
	Issues      IssueList `json:"issues" gorm:"type:jsonb;not null"`
	IssueCount  int       `json:"issueCount" gorm:"not null"`
	Subject     string    `json:"subject,omitempty" gorm:"size:128"`
	RequestID   string    `json:"requestId,omitempty" gorm:"size:64"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index"`
}

func (ViolationReport) TableName() string {
	return "violation_reports"
}

// IssueList хранится в PostgreSQL как jsonb
type IssueList []schema.Issue

func (l IssueList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issues: %w", err)
	}
	return string(data), nil
}

func (l *IssueList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*l = nil
		return nil
	default:
		return errors.New("unsupported type for issue list")
	}
	return json.Unmarshal(data, l)
}

// Kinds возвращает виды нарушений в порядке следования, для метрик
func (l IssueList) Kinds() []string {
	kinds := make([]string, len(l))
	for i, issue := range l {
		kinds[i] = string(issue.Kind)
	}
	return kinds
}

// ViolationEvent публикуется в Kafka на каждое отклонение
type ViolationEvent struct {
	EventType   string    `json:"event_type"` // CONTRACT_VIOLATION
	ViolationID string    `json:"violation_id"`
	Schema      string    `json:"schema"`
	Fingerprint string    `json:"fingerprint"`
	IssueCount  int       `json:"issue_count"`
	Paths       []string  `json:"paths"`
	Subject     string    `json:"subject,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Verdict - результат проверки payload; он же кешируется в Redis
type Verdict struct {
	Schema      string          `json:"schema"`
	Fingerprint string          `json:"fingerprint"`
	Valid       bool            `json:"valid"`
	Normalized  json.RawMessage `json:"normalized,omitempty"`
	Issues      IssueList       `json:"issues,omitempty"`
	Cached      bool            `json:"-"`
}
