package format_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/mickamy/gospy/internal/format"
)

func TestStringify(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "<nil>"},
		{name: "string", in: "hello", want: "hello"},
		{name: "int", in: 42, want: "42"},
		{name: "error", in: errors.New("boom"), want: "boom"},
		{name: "slice", in: []any{2, 3}, want: "[2 3]"},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := format.Stringify(tc.in); got != tc.want {
				t.Fatalf("Stringify(%#v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	hundred := strings.Repeat("a", 100)
	tcs := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "abc", limit: 100, want: "abc"},
		{name: "exactly at limit", in: hundred, limit: 100, want: hundred},
		{name: "one over limit", in: hundred + "b", limit: 100, want: strings.Repeat("a", 97) + "..."},
		{name: "disabled", in: hundred + "b", limit: 0, want: hundred + "b"},
		{name: "tiny limit", in: "abcdef", limit: 2, want: "ab"},
		{name: "multibyte", in: "héllo wörld", limit: 8, want: "héllo..."},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := format.Truncate(tc.in, tc.limit)
			if got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
			if tc.limit > 0 && len([]rune(got)) > tc.limit {
				t.Fatalf("Truncate(%q, %d) returned %d runes", tc.in, tc.limit, len([]rune(got)))
			}
		})
	}
}

func TestTooLong(t *testing.T) {
	t.Parallel()

	if format.TooLong(strings.Repeat("x", 100), 100) {
		t.Fatal("100 chars must not exceed a limit of 100")
	}
	if !format.TooLong(strings.Repeat("x", 101), 100) {
		t.Fatal("101 chars must exceed a limit of 100")
	}
}

type explosive struct{}

func (explosive) String() string { panic("no") }

func TestStringify_Panicking(t *testing.T) {
	t.Parallel()

	if got, want := format.Stringify(explosive{}), "<unprintable format_test.explosive>"; got != want {
		t.Fatalf("Stringify(explosive{}) = %q, want %q", got, want)
	}
}
