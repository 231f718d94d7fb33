package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind классифицирует нарушение контракта.
type Kind string

const (
	KindShape      Kind = "shape"       // неверный JSON-тип поля
	KindConstraint Kind = "constraint"  // тип верный, нарушено ограничение
	KindCrossField Kind = "cross_field" // нарушен инвариант между полями
	KindMissing    Kind = "missing"     // обязательное поле отсутствует
)

// Issue - одно нарушение, привязанное к пути поля в JSON (items[0].price).
type Issue struct {
	Path    string   `json:"path"`
	Kind    Kind     `json:"kind"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Allowed []string `json:"allowed,omitempty"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError возвращается Parse/Check для ожидаемо невалидного ввода.
type ValidationError struct {
	Schema string  `json:"schema"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Schema + ": validation failed"
	}
	msg := fmt.Sprintf("%s: %s", e.Schema, e.Issues[0])
	if rest := len(e.Issues) - 1; rest > 0 {
		msg += fmt.Sprintf(" (and %d more)", rest)
	}
	return msg
}

// Find возвращает первое нарушение по точному пути.
func (e *ValidationError) Find(path string) (Issue, bool) {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return issue, true
		}
	}
	return Issue{}, false
}

// IssuesOf извлекает список нарушений, если err - ошибка валидации.
func IssuesOf(err error) ([]Issue, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues, true
	}
	return nil, false
}

func prefixed(prefix string, issues []Issue) []Issue {
	if prefix == "" {
		return issues
	}
	for i := range issues {
		switch {
		case issues[i].Path == "":
			issues[i].Path = prefix
		case strings.HasPrefix(issues[i].Path, "["):
			issues[i].Path = prefix + issues[i].Path
		default:
			issues[i].Path = prefix + "." + issues[i].Path
		}
	}
	return issues
}

func missingIssue(path string) Issue {
	return Issue{Path: path, Kind: KindMissing, Code: "required", Message: "is required"}
}
