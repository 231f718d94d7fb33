// Package schema - движок контрактов данных: типизированные схемы,
// которые принимают недоверенный JSON и возвращают либо значение,
// либо структурированный список нарушений.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Validator - схема со стертым типом, для реестров и HTTP-слоя.
type Validator interface {
	Name() string
	ParseAny(raw []byte) (any, error)
}

// Schema неизменяема после построения и безопасна для конкурентного использования.
type Schema[T any] struct {
	name        string
	root        string
	defaults    func() T
	refinements []refinement[T]
	decode      func(raw []byte) (T, []Issue)
	check       func(v T) []Issue
}

type refinement[T any] struct {
	path    string
	code    string
	message string
	ok      func(T) bool
}

type Option[T any] func(*Schema[T])

// WithDefaults задает значение, на которое накладывается входной JSON:
// отсутствующие поля сохраняют значения по умолчанию.
func WithDefaults[T any](fn func() T) Option[T] {
	return func(s *Schema[T]) {
		s.defaults = fn
	}
}

// WithRefinement добавляет межполевую проверку. Она выполняется только
// после того, как прошли все проверки отдельных полей.
func WithRefinement[T any](path, code, message string, ok func(T) bool) Option[T] {
	return func(s *Schema[T]) {
		s.refinements = append(s.refinements, refinement[T]{
			path:    path,
			code:    code,
			message: message,
			ok:      ok,
		})
	}
}

// New строит схему для структуры T по тегам json/validate.
// Не-структура - ошибка программиста, поэтому panic при инициализации.
func New[T any](name string, opts ...Option[T]) *Schema[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema %s: %s is not a struct", name, typ))
	}

	s := &Schema[T]{
		name: name,
		root: typ.Name(),
		defaults: func() T {
			var zero T
			return zero
		},
	}
	s.decode = s.decodeStruct
	s.check = s.checkStruct

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Compose строит схему-обертку: envelope разбирает внешний объект,
// build собирает итоговое значение, делегируя вложенные члены через Nested.
func Compose[E, T any](name string, envelope *Schema[E], build func(E) (T, []Issue), opts ...Option[T]) *Schema[T] {
	if envelope == nil || build == nil {
		panic(fmt.Sprintf("schema %s: envelope and build are required", name))
	}

	s := &Schema[T]{name: name}
	s.decode = func(raw []byte) (T, []Issue) {
		env, issues := envelope.parse(raw)
		if len(issues) > 0 {
			var zero T
			return zero, issues
		}
		return build(env)
	}
	s.check = func(v T) []Issue {
		raw, err := json.Marshal(v)
		if err != nil {
			return []Issue{shapeIssue(err)}
		}
		_, issues := s.parse(raw)
		return issues
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Nested разбирает вложенный член схемой s, добавляя prefix к путям нарушений.
func Nested[T any](s *Schema[T], prefix string, raw []byte) (T, []Issue) {
	v, issues := s.parse(raw)
	return v, prefixed(prefix, issues)
}

func (s *Schema[T]) Name() string {
	return s.name
}

// Default возвращает значение со всеми объявленными умолчаниями.
func (s *Schema[T]) Default() T {
	if s.defaults == nil {
		var zero T
		return zero
	}
	return s.defaults()
}

// Parse - validate(schema, rawJson): значение XOR *ValidationError.
func (s *Schema[T]) Parse(raw []byte) (T, error) {
	v, issues := s.parse(raw)
	if len(issues) > 0 {
		var zero T
		return zero, &ValidationError{Schema: s.name, Issues: issues}
	}
	return v, nil
}

// ParseAny - Parse для реестра; при ошибке значение nil.
func (s *Schema[T]) ParseAny(raw []byte) (any, error) {
	v, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Check проверяет уже типизированное значение, например перед отправкой.
// Значение сериализуется, так что присутствие полей оценивается
// так же, как для входного JSON.
func (s *Schema[T]) Check(v T) error {
	if issues := s.check(v); len(issues) > 0 {
		return &ValidationError{Schema: s.name, Issues: issues}
	}
	return nil
}

func (s *Schema[T]) parse(raw []byte) (T, []Issue) {
	v, issues := s.decode(raw)
	if len(issues) > 0 {
		return v, issues
	}
	return v, s.refine(v)
}

// decodeStruct накладывает вход на умолчания. Ошибка типа одного поля
// не прерывает разбор: остальные поля все равно проверяются ограничениями,
// а нарушения под неверно типизированным путем отбрасываются.
func (s *Schema[T]) decodeStruct(raw []byte) (T, []Issue) {
	v := s.Default()
	err := json.Unmarshal(raw, &v)
	if err == nil {
		return v, settlePresence(raw, s.constraints(v))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return v, []Issue{shapeIssue(err)}
	}

	shape := typeIssues(raw, reflect.TypeOf(v))
	if len(shape) == 0 {
		shape = []Issue{shapeIssue(err)}
	}

	issues := settlePresence(raw, s.constraints(v))

	// UnmarshalJSON вложенного типа прерывает декодирование целиком,
	// поэтому о недекодированных полях верить можно только отсутствию.
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		issues = onlyMissing(issues)
	}

	return v, append(shape, outside(shape, issues)...)
}

func (s *Schema[T]) checkStruct(v T) []Issue {
	raw, err := json.Marshal(v)
	if err != nil {
		return []Issue{shapeIssue(err)}
	}
	if issues := settlePresence(raw, s.constraints(v)); len(issues) > 0 {
		return issues
	}
	return s.refine(v)
}

func (s *Schema[T]) constraints(v T) []Issue {
	if err := validate.Struct(v); err != nil {
		return fieldIssues(err, s.root)
	}
	return nil
}

func (s *Schema[T]) refine(v T) []Issue {
	var issues []Issue
	for _, r := range s.refinements {
		if !r.ok(v) {
			issues = append(issues, Issue{
				Path:    r.path,
				Kind:    KindCrossField,
				Code:    r.code,
				Message: r.message,
			})
		}
	}
	return issues
}

func shapeIssue(err error) Issue {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		return Issue{
			Path:    typeErr.Field,
			Kind:    KindShape,
			Code:    "invalid_type",
			Message: fmt.Sprintf("expected %s, got %s", jsonTypeName(typeErr.Type), typeErr.Value),
		}
	case errors.As(err, &syntaxErr):
		return Issue{Kind: KindShape, Code: "invalid_json", Message: syntaxErr.Error()}
	default:
		return Issue{Kind: KindShape, Code: "invalid_type", Message: err.Error()}
	}
}

func jsonTypeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return t.String()
	}
}
