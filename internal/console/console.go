// Package console renders proxy progress and reports on a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

const ruleWidth = 80

// Options tunes progress output.
type Options struct {
	LineWidth  int              // ticks printed before wrapping to a new line (default 80)
	StampEvery time.Duration    // minimum gap between timestamps on call ticks (default 5m)
	Now        func() time.Time // clock, mainly for tests
}

// Reporter writes progress ticks, padded banners and pretty-printed values to w.
type Reporter struct {
	w    io.Writer
	opts Options

	progressing bool
	count       int
	lastStamp   time.Time

	rule    lipgloss.Style
	message lipgloss.Style
	stamp   lipgloss.Style
	dumper  *spew.ConfigState
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.LineWidth <= 0 {
		opts.LineWidth = 80
	}
	if opts.StampEvery <= 0 {
		opts.StampEvery = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	re := lipgloss.NewRenderer(w)
	return &Reporter{
		w:       w,
		opts:    opts,
		rule:    re.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		message: re.NewStyle().Bold(true),
		stamp:   re.NewStyle().Faint(true),
		dumper: &spew.ConfigState{
			Indent:                  " ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

// Tick prints a single progress symbol. Symbols other than "." are call ticks
// and are preceded by a timestamp when StampEvery has elapsed since the last one.
func (r *Reporter) Tick(symbol string) {
	if symbol != "." {
		r.maybeStamp()
	}
	r.progressing = true
	r.count++
	if r.count > r.opts.LineWidth {
		r.count = 0
		_, _ = fmt.Fprint(r.w, "\n"+symbol)
		return
	}
	_, _ = fmt.Fprint(r.w, symbol)
}

func (r *Reporter) maybeStamp() {
	now := r.opts.Now()
	if !r.lastStamp.IsZero() && now.Sub(r.lastStamp) < r.opts.StampEvery {
		return
	}
	r.lastStamp = now
	_, _ = fmt.Fprint(r.w, r.stamp.Render(now.Format(time.TimeOnly)))
}

func (r *Reporter) stopProgress() {
	if r.progressing {
		_, _ = fmt.Fprint(r.w, "\n\n")
		r.progressing = false
	}
}

// PaddedMessage prints text between optional rules and returns its first line.
func (r *Reporter) PaddedMessage(text string, opened, closed bool) string {
	r.stopProgress()
	var b strings.Builder
	if opened {
		b.WriteString(r.rule.Render(strings.Repeat("*", ruleWidth)))
		b.WriteByte('\n')
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.message.Render(line))
	}
	if closed {
		b.WriteByte('\n')
		b.WriteString(r.rule.Render(strings.Repeat("*", ruleWidth)))
	}
	_, _ = fmt.Fprintln(r.w, b.String())
	first, _, _ := strings.Cut(text, "\n")
	return first
}

// PrettyPrint dumps v. Strings are printed verbatim.
func (r *Reporter) PrettyPrint(v any) {
	r.stopProgress()
	if s, ok := v.(string); ok {
		_, _ = fmt.Fprintln(r.w, s)
		return
	}
	r.dumper.Fdump(r.w, v)
}
