package gospy

import (
	"maps"
	"slices"
	"time"

	"github.com/mickamy/gospy/internal/reflector"
)

// Kwargs carries keyword arguments. An operation accepts them by declaring Kwargs as its last parameter.
type Kwargs map[string]any

// MemberKind classifies a discovered member.
type MemberKind = reflector.Kind

const (
	Operation = reflector.Operation
	Data      = reflector.Data
)

// ReservedNames are never wrapped even when the target exposes them.
var ReservedNames = []string{"AccessLog", "WrappedCalls"}

// Member describes a wrapped member of the target.
type Member struct {
	Name  string
	Kind  MemberKind
	Bound bool // operation receives the proxy's Receiver as its first argument
}

// CallRecord is the history entry of a single invocation.
type CallRecord struct {
	Operation string
	Args      []any
	Kwargs    Kwargs
	Results   []any // value results, without a trailing error
	Err       error
	Elapsed   time.Duration
	Timestamp time.Time
}

// Result returns the failure when the call failed, otherwise the single result,
// nil when the operation returns nothing, or all results for multi-value operations.
func (r CallRecord) Result() any {
	switch {
	case r.Err != nil:
		return r.Err
	case len(r.Results) == 0:
		return nil
	case len(r.Results) == 1:
		return r.Results[0]
	default:
		return r.Results
	}
}

// clone returns a copy whose argument and result containers are not shared with r.
func (r CallRecord) clone() CallRecord {
	r.Args = slices.Clone(r.Args)
	r.Kwargs = maps.Clone(r.Kwargs)
	r.Results = slices.Clone(r.Results)
	return r
}

func cloneRecords(rs []CallRecord) []CallRecord {
	for i := range rs {
		rs[i] = rs[i].clone()
	}
	return rs
}

// FailureRecord captures the first failing invocation since the proxy was built or the log was cleared.
type FailureRecord struct {
	Operation string
	Args      []any
	Kwargs    Kwargs
	Err       error
	Stack     string
}

func (f FailureRecord) clone() FailureRecord {
	f.Args = slices.Clone(f.Args)
	f.Kwargs = maps.Clone(f.Kwargs)
	return f
}
