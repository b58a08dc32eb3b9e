package gospy

import (
	"strings"
)

// Reporter receives progress ticks and messages from a proxy.
type Reporter interface {
	// Tick reports progress; "-" marks a call and "." a data access.
	Tick(symbol string)
	// PaddedMessage shows text between optional rules and returns its first line.
	PaddedMessage(text string, opened, closed bool) string
	// PrettyPrint shows a structured value.
	PrettyPrint(v any)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Tick(string) {}

func (NopReporter) PaddedMessage(text string, _, _ bool) string {
	first, _, _ := strings.Cut(text, "\n")
	return first
}

func (NopReporter) PrettyPrint(any) {}
