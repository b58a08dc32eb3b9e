package format

import (
	"fmt"
	"unicode/utf8"
)

const ellipsis = "..."

// Stringify renders a value the way it appears in access log lines and reports.
// A value whose String or Error method panics is rendered by type only.
func Stringify(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<unprintable %T>", v)
		}
	}()
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TooLong reports whether s exceeds limit characters. A non-positive limit disables the check.
func TooLong(s string, limit int) bool {
	return limit > 0 && utf8.RuneCountInString(s) > limit
}

// Truncate shortens s to at most limit characters, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if !TooLong(s, limit) {
		return s
	}
	runes := []rune(s)
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// Value stringifies v and truncates the result.
func Value(v any, limit int) string {
	return Truncate(Stringify(v), limit)
}
