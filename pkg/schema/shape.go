package schema

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// typeIssues сверяет JSON-типы входа с полями typ и собирает все
// несовпадения с путями в нотации контракта (items[1].quantity).
// encoding/json сообщает только первое и с именами Go-структур в пути.
func typeIssues(raw []byte, typ reflect.Type) []Issue {
	var issues []Issue
	walkShape(gjson.ParseBytes(raw), typ, "", &issues)
	return issues
}

func walkShape(v gjson.Result, typ reflect.Type, path string, issues *[]Issue) {
	if v.Type == gjson.Null {
		return
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	mismatch := func(want string) {
		*issues = append(*issues, Issue{
			Path:    path,
			Kind:    KindShape,
			Code:    "invalid_type",
			Message: fmt.Sprintf("expected %s, got %s", want, jsonKind(v)),
		})
	}

	switch {
	case typ == timeType:
		if v.Type != gjson.String {
			mismatch("date-time string")
			return
		}
		if _, err := time.Parse(time.RFC3339, v.Str); err != nil {
			*issues = append(*issues, Issue{
				Path:    path,
				Kind:    KindShape,
				Code:    "invalid_type",
				Message: fmt.Sprintf("expected RFC 3339 date-time, got %q", v.Str),
			})
		}
		return
	case reflect.PointerTo(typ).Implements(jsonUnmarshalerType):
		return
	case reflect.PointerTo(typ).Implements(textUnmarshalerType):
		if v.Type != gjson.String {
			mismatch("string")
		}
		return
	}

	switch typ.Kind() {
	case reflect.Struct:
		if !v.IsObject() {
			mismatch("object")
			return
		}
		fields := shapeFieldsOf(typ)
		v.ForEach(func(key, val gjson.Result) bool {
			if f, ok := fields.lookup(key.Str); ok {
				walkShape(val, f.typ, joinPath(path, f.name), issues)
			}
			return true
		})
	case reflect.Map:
		if !v.IsObject() {
			mismatch("object")
			return
		}
		v.ForEach(func(key, val gjson.Result) bool {
			walkShape(val, typ.Elem(), path+"["+key.Str+"]", issues)
			return true
		})
	case reflect.Slice, reflect.Array:
		if typ.Kind() == reflect.Slice && typ.Elem().Kind() == reflect.Uint8 {
			if v.Type != gjson.String {
				mismatch("base64 string")
			}
			return
		}
		if !v.IsArray() {
			mismatch("array")
			return
		}
		i := 0
		v.ForEach(func(_, val gjson.Result) bool {
			walkShape(val, typ.Elem(), path+"["+strconv.Itoa(i)+"]", issues)
			i++
			return true
		})
	case reflect.String:
		if v.Type != gjson.String {
			mismatch("string")
		}
	case reflect.Bool:
		if v.Type != gjson.True && v.Type != gjson.False {
			mismatch("boolean")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type != gjson.Number {
			mismatch("integer")
		} else if _, err := strconv.ParseInt(v.Raw, 10, typ.Bits()); err != nil {
			mismatch("integer")
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Type != gjson.Number {
			mismatch("integer")
		} else if _, err := strconv.ParseUint(v.Raw, 10, typ.Bits()); err != nil {
			mismatch("non-negative integer")
		}
	case reflect.Float32, reflect.Float64:
		if v.Type != gjson.Number {
			mismatch("number")
		}
	}
}

func jsonKind(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return "string"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number " + v.Raw
	case gjson.JSON:
		if v.IsArray() {
			return "array"
		}
		return "object"
	default:
		return "null"
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

type shapeField struct {
	name  string
	typ   reflect.Type
	depth int
}

type shapeFields []shapeField

// lookup повторяет правило encoding/json: сначала точное имя,
// затем совпадение без учета регистра.
func (fs shapeFields) lookup(key string) (shapeField, bool) {
	for _, f := range fs {
		if f.name == key {
			return f, true
		}
	}
	for _, f := range fs {
		if strings.EqualFold(f.name, key) {
			return f, true
		}
	}
	return shapeField{}, false
}

var shapeCache sync.Map // reflect.Type -> shapeFields

// shapeFieldsOf разворачивает встроенные структуры так же, как JSON:
// при конфликте имен побеждает менее вложенное поле.
func shapeFieldsOf(typ reflect.Type) shapeFields {
	if cached, ok := shapeCache.Load(typ); ok {
		return cached.(shapeFields)
	}

	var out shapeFields
	index := map[string]int{}

	var collect func(t reflect.Type, depth int)
	collect = func(t reflect.Type, depth int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name := strings.SplitN(tag, ",", 2)[0]

			ft := f.Type
			if f.Anonymous && name == "" {
				for ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					collect(ft, depth+1)
					continue
				}
			}
			if !f.IsExported() {
				continue
			}
			if name == "" {
				name = f.Name
			}

			field := shapeField{name: name, typ: f.Type, depth: depth}
			if j, ok := index[name]; ok {
				if out[j].depth > depth {
					out[j] = field
				}
				continue
			}
			index[name] = len(out)
			out = append(out, field)
		}
	}
	collect(typ, 0)

	shapeCache.Store(typ, out)
	return out
}
