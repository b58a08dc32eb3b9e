package gospy

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/mickamy/gospy/internal/format"
)

// DumpInfo sends every non-empty call history and the access log to the reporter.
// Values whose text exceeds TruncateAt are replaced by a pointer to the full record.
func (p *Proxy) DumpInfo() {
	rep := p.h.cfg.Reporter
	rep.PaddedMessage("Wrapper info: "+p.typeName, true, false)

	report := map[string][]map[string]any{}
	var summary []string
	for _, m := range p.members {
		c, ok := p.calls[m.Name]
		if !ok {
			continue
		}
		if c.calls.Len() == 0 {
			continue
		}
		records := c.calls.Snapshot()
		summary = append(summary, fmt.Sprintf("%s: %d %s", m.Name, len(records), pluralize("call", len(records))))
		report[m.Name] = p.reportRecords(m.Name, records)
	}

	rep.PrettyPrint("Method calls:\n\t" + strings.Join(summary, "\n\t"))
	rep.PrettyPrint(report)

	var b strings.Builder
	b.WriteString("Access log:")
	for _, entry := range p.accessLog.Snapshot() {
		for _, line := range strings.Split(entry, "\n") {
			b.WriteString("\n\t")
			b.WriteString(line)
		}
	}
	rep.PrettyPrint(b.String())
	rep.PaddedMessage("Call data can be accessed with History() and CallHistory(name).", false, true)
}

func (p *Proxy) reportRecords(name string, records []CallRecord) []map[string]any {
	limit := p.h.cfg.TruncateAt
	out := make([]map[string]any, 0, len(records))
	for i, rec := range records {
		fields := map[string]any{
			"Operation": rec.Operation,
			"Args":      rec.Args,
			"Kwargs":    rec.Kwargs,
			"Result()":  rec.Result(),
			"Elapsed":   rec.Elapsed,
		}
		for k, v := range fields {
			if format.TooLong(format.Stringify(v), limit) {
				fields[k] = fmt.Sprintf("VALUE TOO LONG. See CallHistory(%q)[%d].%s for actual data.", name, i, k)
			}
		}
		out = append(out, fields)
	}
	return out
}

// ReportLastFailure sends the stored failure, then its stack, to the reporter.
func (p *Proxy) ReportLastFailure() error {
	f, err := p.LastFailure()
	if err != nil {
		return err
	}
	rep := p.h.cfg.Reporter
	rep.PrettyPrint("Failure info:")
	rep.PrettyPrint(map[string]any{
		"Operation": f.Operation,
		"Args":      f.Args,
		"Kwargs":    f.Kwargs,
		"Err":       format.Stringify(f.Err),
	})
	rep.PrettyPrint(f.Stack)
	return nil
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return inflection.Plural(noun)
}
