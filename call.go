package gospy

import (
	"fmt"
	"maps"
	"reflect"
	"runtime/debug"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mickamy/gospy/internal/buffer"
	"github.com/mickamy/gospy/internal/format"
	"github.com/mickamy/gospy/internal/reflector"
)

// FakeFunc produces a faked outcome from the invocation's arguments.
type FakeFunc func(args []any, kwargs Kwargs) (any, error)

type fakeOutcome struct {
	value any
	kw    FakeFunc
	fn    reflect.Value
}

func newFakeOutcome(v any) *fakeOutcome {
	switch x := v.(type) {
	case FakeFunc:
		return &fakeOutcome{kw: x}
	case func([]any, Kwargs) (any, error):
		return &fakeOutcome{kw: x}
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func && !rv.IsNil() {
		return &fakeOutcome{fn: rv}
	}
	return &fakeOutcome{value: v}
}

func (f *fakeOutcome) produce(args []any, kwargs Kwargs) ([]any, error) {
	switch {
	case f.kw != nil:
		v, err := f.kw(args, kwargs)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	case f.fn.IsValid():
		in, err := reflector.PrepareArgs(f.fn.Type(), 0, args, kwargs, reflectOptions.KwargsType)
		if err != nil {
			return nil, fmt.Errorf("gospy: fake: %w", err)
		}
		return reflector.SplitResults(f.fn.Type(), f.fn.Call(in))
	default:
		if err, ok := f.value.(error); ok {
			return nil, err
		}
		return []any{f.value}, nil
	}
}

type panicCapture struct {
	value any
	stack string
}

// callInterceptor wraps one operation of the target.
type callInterceptor struct {
	owner  *Proxy
	member reflector.Member
	calls  *buffer.Buffer[CallRecord]
	fake   *fakeOutcome
	alert  bool
}

func newCallInterceptor(owner *Proxy, m reflector.Member) *callInterceptor {
	return &callInterceptor{owner: owner, member: m, calls: buffer.NewBuffer[CallRecord]()}
}

func (c *callInterceptor) setFake(v any) { c.fake = newFakeOutcome(v) }

func (c *callInterceptor) resetFake() { c.fake = nil }

func (c *callInterceptor) invoke(args []any, kwargs Kwargs) ([]any, error) {
	p := c.owner
	cfg := p.h.cfg
	name := c.member.Name

	// records own their inputs; callers and fakes may reuse theirs
	recArgs, recKwargs := slices.Clone(args), maps.Clone(kwargs)

	cfg.Reporter.Tick("-")
	if c.alert {
		cfg.Reporter.PaddedMessage(fmt.Sprintf("!!! %s was called.", name), true, true)
	}
	faked := c.fake != nil
	if faked {
		p.accessLog.Add(cfg.Reporter.PaddedMessage(fmt.Sprintf("Faking %s value.", name), true, true))
	}

	// Proxy calls carry no context, so the active span lives on the proxy:
	// operations re-entered through the Receiver nest under their caller's span.
	parent := p.spanCtx
	ctx, span := cfg.Tracer.Start(parent, p.typeName+"."+name, trace.WithAttributes(
		attribute.String("gospy.proxy_id", p.id),
		attribute.String("gospy.operation", name),
		attribute.Bool("gospy.faked", faked),
		attribute.Bool("gospy.burrow_deep", p.burrowDeep),
	))
	p.spanCtx = ctx

	start := time.Now()
	results, pc, err := c.dispatch(args, kwargs)
	elapsed := time.Since(start)

	p.spanCtx = parent

	rec := CallRecord{
		Operation: name,
		Args:      recArgs,
		Kwargs:    recKwargs,
		Results:   slices.Clone(results),
		Err:       err,
		Elapsed:   elapsed,
		Timestamp: start,
	}
	c.calls.Add(rec)
	p.history.Add(rec)
	p.accessLog.Add(fmt.Sprintf("-> %s() called. For details see CallHistory(%q). Timing: %s", name, name, elapsed))

	outcome := outcomeOK
	switch {
	case pc != nil:
		outcome = outcomePanic
	case err != nil:
		outcome = outcomeError
	case faked:
		outcome = outcomeFaked
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, format.Stringify(err))
		c.captureFailure(recArgs, recKwargs, err, pc)
	}
	span.End()

	cfg.Metrics.observeCall(p.typeName, name, outcome, elapsed)
	p.log.Debug("operation invoked",
		zap.String("operation", name),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
		zap.Bool("burrow_deep", p.burrowDeep),
	)

	if pc != nil {
		panic(pc.value)
	}
	return results, err
}

// dispatch produces the outcome of one invocation, either faked or from the target.
// A panic is recovered so it can be recorded; invoke re-raises it.
func (c *callInterceptor) dispatch(args []any, kwargs Kwargs) (results []any, pc *panicCapture, err error) {
	defer func() {
		if r := recover(); r != nil {
			pc = &panicCapture{value: r, stack: string(debug.Stack())}
			results = nil
			err = &PanicError{Value: r}
		}
	}()

	if f := c.fake; f != nil {
		results, err = f.produce(args, kwargs)
		return results, nil, err
	}

	var recv Receiver = c.owner.direct
	if c.owner.burrowDeep {
		recv = c.owner
	}
	results, err = c.callTarget(recv, args, kwargs)
	return results, nil, err
}

// callTarget calls the wrapped operation, passing recv first when the operation is bound.
func (c *callInterceptor) callTarget(recv Receiver, args []any, kwargs Kwargs) ([]any, error) {
	fn := c.member.Func
	ft := fn.Type()

	var in []reflect.Value
	lead := 0
	if c.member.Bound {
		in = append(in, reflect.ValueOf(recv))
		lead = 1
	}
	rest, err := reflector.PrepareArgs(ft, lead, args, kwargs, reflectOptions.KwargsType)
	if err != nil {
		return nil, fmt.Errorf("gospy: %s: %w", c.member.Name, err)
	}
	return reflector.SplitResults(ft, fn.Call(append(in, rest...)))
}

func (c *callInterceptor) captureFailure(args []any, kwargs Kwargs, err error, pc *panicCapture) {
	p := c.owner
	if p.failure != nil {
		return
	}
	var stack string
	if pc != nil {
		stack = pc.stack
	} else {
		stack = string(debug.Stack())
	}
	p.failure = &FailureRecord{
		Operation: c.member.Name,
		Args:      args,
		Kwargs:    kwargs,
		Err:       err,
		Stack:     stack,
	}

	msg := fmt.Sprintf("Failure stored: %s.\nCall ReportLastFailure() for info.", format.Stringify(err))
	p.accessLog.Add(msg)
	p.h.cfg.Reporter.PaddedMessage(msg, true, true)
	p.h.cfg.Metrics.observeFailure(p.typeName)
	p.log.Warn("failure stored", zap.String("operation", c.member.Name), zap.Error(err))
}
