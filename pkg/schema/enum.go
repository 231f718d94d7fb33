package schema

// Enum реализуется закрытыми строковыми перечислениями.
// Тег `enum` отклоняет значения, для которых Valid() == false.
type Enum interface {
	Valid() bool
	Values() []string
}

// Members - объявленный набор значений перечисления.
type Members[E ~string] []E

func (m Members[E]) Contains(v E) bool {
	for _, member := range m {
		if member == v {
			return true
		}
	}
	return false
}

func (m Members[E]) Strings() []string {
	out := make([]string, len(m))
	for i, member := range m {
		out[i] = string(member)
	}
	return out
}
