package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// embeddedSegment помечает встроенные структуры в namespace валидатора,
// JSON их поля разворачивает, поэтому в пути их быть не должно.
const embeddedSegment = "~"

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if fld.Anonymous {
			return embeddedSegment
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("enum", validateEnum); err != nil {
		panic(fmt.Sprintf("schema: register enum validation: %v", err))
	}

	return v
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(Enum)
	return ok && e.Valid()
}

func enumAllowed(value any) []string {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	if e, ok := rv.Interface().(Enum); ok {
		return e.Values()
	}
	return nil
}

func fieldIssues(err error, root string) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Kind: KindShape, Code: "invalid", Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, issueFromField(fe, root))
	}
	return issues
}

func fieldPath(namespace, root string) string {
	path := strings.TrimPrefix(namespace, root+".")
	return strings.ReplaceAll(path, embeddedSegment+".", "")
}

func issueFromField(fe validator.FieldError, root string) Issue {
	issue := Issue{
		Path: fieldPath(fe.Namespace(), root),
		Kind: KindConstraint,
		Code: fe.Tag(),
	}

	switch fe.Tag() {
	case "required":
		return missingIssue(issue.Path)
	case "email":
		issue.Message = "must be a valid email address"
	case "url":
		issue.Message = "must be a valid URL"
	case "enum":
		issue.Allowed = enumAllowed(fe.Value())
		issue.Message = "must be one of: " + strings.Join(issue.Allowed, ", ")
	case "eq":
		issue.Message = "must equal " + fe.Param()
	case "min", "max", "len", "gt", "gte", "lt", "lte":
		issue.Message = boundMessage(fe.Tag(), fe.Param(), fe.Kind())
	default:
		issue.Message = fmt.Sprintf("failed the %q rule", fe.Tag())
	}

	return issue
}

func boundMessage(tag, param string, kind reflect.Kind) string {
	var unit string
	switch kind {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}

	if unit != "" {
		switch tag {
		case "min", "gte":
			return "must be at least " + param + unit
		case "max", "lte":
			return "must be at most " + param + unit
		case "len":
			return "must be exactly " + param + unit
		case "gt":
			return "must be longer than " + param + unit
		default:
			return "must be shorter than " + param + unit
		}
	}

	switch tag {
	case "min", "gte":
		return "must be greater than or equal to " + param
	case "max", "lte":
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	default:
		return "must equal " + param
	}
}
