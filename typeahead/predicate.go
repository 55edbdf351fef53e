package typeahead

import "strings"

// Prefix matches items whose text starts with the buffer, case-sensitively.
func Prefix[T any](text func(T) string) Predicate[T] {
	return func(item T, buffer string, _ int, _ []T) bool {
		return strings.HasPrefix(text(item), buffer)
	}
}

// PrefixFold matches items whose text starts with the buffer, ignoring
// case.
func PrefixFold[T any](text func(T) string) Predicate[T] {
	return func(item T, buffer string, _ int, _ []T) bool {
		return strings.HasPrefix(strings.ToLower(text(item)), strings.ToLower(buffer))
	}
}

// StringPrefix is PrefixFold over plain strings.
func StringPrefix() Predicate[string] {
	return PrefixFold(func(s string) string { return s })
}
