package schema

import (
	"strings"

	"github.com/tidwall/gjson"
)

// settlePresence сверяет нарушения с фактическим входом. Ограничение на
// пути, которого во входе нет, становится отсутствующим полем. Required
// на присутствующем не-null значении снимается: "" и 0 - законные значения,
// а непустоту выражают min=1, gt=0 и подобные теги.
func settlePresence(raw []byte, issues []Issue) []Issue {
	kept := issues[:0]
	for _, issue := range issues {
		if issue.Path == "" {
			kept = append(kept, issue)
			continue
		}

		got := gjson.GetBytes(raw, gjsonPath(issue.Path))
		switch issue.Kind {
		case KindMissing:
			if got.Exists() && got.Type != gjson.Null {
				continue
			}
		case KindConstraint:
			if !got.Exists() {
				issue = missingIssue(issue.Path)
			}
		}
		kept = append(kept, issue)
	}
	return kept
}

func onlyMissing(issues []Issue) []Issue {
	kept := issues[:0]
	for _, issue := range issues {
		if issue.Kind == KindMissing {
			kept = append(kept, issue)
		}
	}
	return kept
}

// outside оставляет нарушения, не лежащие под путями нарушений формы:
// у неверно типизированного поля нет значения, которое стоило бы проверять.
func outside(shape, issues []Issue) []Issue {
	kept := issues[:0]
	for _, issue := range issues {
		if !underAny(issue.Path, shape) {
			kept = append(kept, issue)
		}
	}
	return kept
}

func underAny(path string, shape []Issue) bool {
	for _, s := range shape {
		switch {
		case s.Path == "", s.Path == path:
			return true
		case strings.HasPrefix(path, s.Path+"."), strings.HasPrefix(path, s.Path+"["):
			return true
		}
	}
	return false
}

// gjsonPath переводит items[0].price и dependencies[redis].status
// в синтаксис gjson: items.0.price, dependencies.redis.status.
func gjsonPath(path string) string {
	var b strings.Builder

	segment := func(s string) {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		for _, r := range s {
			if strings.ContainsRune(`\.*?|#@!`, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}

	for len(path) > 0 {
		switch path[0] {
		case '.':
			path = path[1:]
		case '[':
			end := strings.IndexByte(path, ']')
			if end < 0 {
				segment(path[1:])
				return b.String()
			}
			segment(path[1:end])
			path = path[end+1:]
		default:
			end := strings.IndexAny(path, ".[")
			if end < 0 {
				end = len(path)
			}
			segment(path[:end])
			path = path[end:]
		}
	}

	return b.String()
}
