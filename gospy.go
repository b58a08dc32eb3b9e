// Package gospy wraps a live Go value in a proxy that records every call,
// data mutation and failure, and lets callers fake operation outcomes.
package gospy

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/mickamy/gospy/internal/buffer"
	"github.com/mickamy/gospy/internal/console"
	"github.com/mickamy/gospy/internal/format"
	"github.com/mickamy/gospy/internal/reflector"
)

const tracerName = "github.com/mickamy/gospy"

var reflectOptions = reflector.Options{
	ReceiverType: reflect.TypeOf((*Receiver)(nil)).Elem(),
	KwargsType:   reflect.TypeOf(Kwargs(nil)),
	Reserved:     ReservedNames,
}

// Handler builds proxies sharing one configuration.
type Handler struct {
	cfg Config
}

// New creates a new Handler instance with sensible defaults.
func New(cfg Config) *Handler {
	if cfg.TruncateAt == 0 {
		cfg.TruncateAt = defaultTruncateAt
	}
	if cfg.TickBatch <= 0 {
		cfg.TickBatch = defaultTickBatch
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.Reporter == nil {
		cfg.Reporter = console.New(os.Stdout, console.Options{
			LineWidth:  cfg.TickBatch,
			StampEvery: cfg.TickInterval,
		})
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	return &Handler{cfg: cfg}
}

// Wrap builds a proxy with the default configuration.
// See Handler.Wrap for the accepted forms of targetOrCtor.
func Wrap(targetOrCtor any, burrowDeep bool, ctorArgs ...any) (*Proxy, error) {
	return New(Config{BurrowDeep: burrowDeep}).Wrap(targetOrCtor, ctorArgs...)
}

// Wrap builds a proxy around a target. targetOrCtor is either an instance, a
// constructor func called with ctorArgs (a trailing error result is honored),
// or a reflect.Type whose zero value is allocated.
func (h *Handler) Wrap(targetOrCtor any, ctorArgs ...any) (*Proxy, error) {
	target, err := instantiate(targetOrCtor, ctorArgs)
	if err != nil {
		return nil, err
	}
	return h.wrap(target, h.cfg.BurrowDeep)
}

func instantiate(targetOrCtor any, ctorArgs []any) (any, error) {
	if targetOrCtor == nil {
		return nil, fmt.Errorf("gospy: %w: nil target", ErrNotWrappable)
	}
	if t, ok := targetOrCtor.(reflect.Type); ok {
		if len(ctorArgs) > 0 {
			return nil, fmt.Errorf("gospy: %w: constructor arguments given for type %s", ErrNotWrappable, t)
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return reflect.New(t).Interface(), nil
	}

	ctor := reflect.ValueOf(targetOrCtor)
	if ctor.Kind() != reflect.Func {
		if len(ctorArgs) > 0 {
			return nil, fmt.Errorf("gospy: %w: constructor arguments given for an instance", ErrNotWrappable)
		}
		return targetOrCtor, nil
	}

	in, err := reflector.PrepareArgs(ctor.Type(), 0, ctorArgs, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("gospy: %w: %w", ErrNotWrappable, err)
	}
	vals, err := reflector.SplitResults(ctor.Type(), ctor.Call(in))
	if err != nil {
		return nil, fmt.Errorf("gospy: %w: constructor failed: %w", ErrNotWrappable, err)
	}
	if len(vals) == 0 || vals[0] == nil {
		return nil, fmt.Errorf("gospy: %w: constructor returned no instance", ErrNotWrappable)
	}
	return vals[0], nil
}

// Proxy stands in for a target, routing every interaction through interceptors.
// A Proxy is meant for single-goroutine test and debug use.
type Proxy struct {
	id       string
	h        *Handler
	log      *zap.Logger
	target   reflect.Value // always a pointer
	byValue  bool
	typeName string

	members []Member
	calls   map[string]*callInterceptor
	data    map[string]*dataInterceptor
	direct  *directReceiver

	history   *buffer.Buffer[CallRecord]
	accessLog *buffer.Buffer[string]
	failure   *FailureRecord

	burrowDeep bool
	unwrapped  bool
	spanCtx    context.Context
}

func (h *Handler) wrap(target any, burrowDeep bool) (*Proxy, error) {
	rv := reflect.ValueOf(target)
	byValue := false
	if rv.Kind() != reflect.Pointer {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		rv = ptr
		byValue = true
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("gospy: %w: nil %s", ErrNotWrappable, rv.Type())
	}

	typeName := rv.Type().Elem().Name()
	if typeName == "" {
		typeName = rv.Type().Elem().String()
	}

	p := &Proxy{
		id:         uuid.NewString(),
		h:          h,
		target:     rv,
		byValue:    byValue,
		typeName:   typeName,
		calls:      map[string]*callInterceptor{},
		data:       map[string]*dataInterceptor{},
		history:    buffer.NewBuffer[CallRecord](),
		accessLog:  buffer.NewBuffer[string](),
		burrowDeep: burrowDeep,
		spanCtx:    context.Background(),
	}
	p.log = h.cfg.Logger.With(zap.String("proxy_id", p.id), zap.String("target", typeName))
	p.direct = &directReceiver{p: p}

	for _, m := range reflector.Enumerate(rv, reflectOptions) {
		p.members = append(p.members, Member{Name: m.Name, Kind: m.Kind, Bound: m.Bound})
		switch m.Kind {
		case reflector.Operation:
			p.calls[m.Name] = newCallInterceptor(p, m)
		case reflector.Data:
			d := newDataInterceptor(p, m, rv.Elem().FieldByIndex(m.Field))
			p.data[m.Name] = d
			initial := format.Stringify(d.value.Interface())
			if format.TooLong(initial, h.cfg.TruncateAt) {
				initial = "VALUE TOO LONG."
			}
			p.accessLog.Add(m.Name + " initialized with value: " + initial)
		}
	}

	rep := h.cfg.Reporter
	p.accessLog.Add(strings.Repeat("-", 25) + "INSTANTIATION COMPLETE" + strings.Repeat("-", 25))
	p.accessLog.Add(rep.PaddedMessage(typeName+" wrapped.", true, !burrowDeep))
	if burrowDeep {
		p.accessLog.Add(rep.PaddedMessage(
			"Currently burrowing deep (the proxy is passed as receiver and all self-calls will be logged.)"+
				"\nCall SetBurrowDeep(false) to disable.", false, false))
		p.accessLog.Add(strings.Repeat("-", 80))
	}

	p.log.Info("target wrapped",
		zap.Int("operations", len(p.calls)),
		zap.Int("data_members", len(p.data)),
		zap.Bool("burrow_deep", burrowDeep),
	)
	return p, nil
}

// ID returns the unique identifier of the proxy.
func (p *Proxy) ID() string { return p.id }

// TypeName returns the name of the wrapped target's type.
func (p *Proxy) TypeName() string { return p.typeName }

// Members returns the members discovered at construction, sorted by name.
func (p *Proxy) Members() []Member {
	out := make([]Member, len(p.members))
	copy(out, p.members)
	return out
}

// Call invokes the named operation with positional arguments.
func (p *Proxy) Call(name string, args ...any) ([]any, error) {
	return p.CallKw(name, args, nil)
}

// CallKw invokes the named operation with positional and keyword arguments.
// Failures of the target are returned unchanged; panics are recorded and re-raised.
func (p *Proxy) CallKw(name string, args []any, kwargs Kwargs) ([]any, error) {
	c, err := p.operation(name)
	if err != nil {
		return nil, err
	}
	return c.invoke(args, kwargs)
}

// CallAs invokes an operation through r and returns its first result as T.
func CallAs[T any](r Receiver, name string, args ...any) (T, error) {
	var zero T
	vals, err := r.Call(name, args...)
	if err != nil {
		return zero, err
	}
	if len(vals) == 0 || vals[0] == nil {
		return zero, nil
	}
	v, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("gospy: %w: %s returned %T, not %T", ErrBadArguments, name, vals[0], zero)
	}
	return v, nil
}

// Get reads a data member.
func (p *Proxy) Get(name string) (any, error) {
	d, err := p.dataMember(name)
	if err != nil {
		return nil, err
	}
	return d.read()
}

// Set writes a data member. The value must fit the member's type.
func (p *Proxy) Set(name string, value any) error {
	d, err := p.dataMember(name)
	if err != nil {
		return err
	}
	return d.write(value)
}

// Delete clears a data member; later reads fail with ErrNoValue until it is set again.
func (p *Proxy) Delete(name string) error {
	d, err := p.dataMember(name)
	if err != nil {
		return err
	}
	return d.delete()
}

// FakeReturnValue makes the named operation produce value instead of reaching the target.
// value may be a FakeFunc or any other func, which is then called with the invocation's
// arguments; an error value makes the call fail with it.
func (p *Proxy) FakeReturnValue(name string, value any) error {
	c, err := p.operation(name)
	if err != nil {
		return err
	}
	c.setFake(value)
	return nil
}

// ResetReturnValue removes a fake installed with FakeReturnValue.
func (p *Proxy) ResetReturnValue(name string) error {
	c, err := p.operation(name)
	if err != nil {
		return err
	}
	c.resetFake()
	return nil
}

// SetAlert toggles a banner printed whenever the named operation is called.
func (p *Proxy) SetAlert(name string, on bool) error {
	c, err := p.operation(name)
	if err != nil {
		return err
	}
	c.alert = on
	return nil
}

// CallHistory returns the invocations of the named operation in call order.
func (p *Proxy) CallHistory(name string) ([]CallRecord, error) {
	c, ok := p.calls[name]
	if !ok {
		return nil, p.unknown(name)
	}
	return cloneRecords(c.calls.Snapshot()), nil
}

// History returns every invocation across all operations in call order.
func (p *Proxy) History() []CallRecord {
	return cloneRecords(p.history.Snapshot())
}

// AccessLog returns the access log lines in order.
func (p *Proxy) AccessLog() []string {
	return p.accessLog.Snapshot()
}

// LastFailure returns the first failure captured since construction or the last ClearLog.
func (p *Proxy) LastFailure() (FailureRecord, error) {
	if p.failure == nil {
		return FailureRecord{}, ErrNoFailure
	}
	return p.failure.clone(), nil
}

// ClearLog empties the access log and forgets the stored failure. Call histories are kept.
func (p *Proxy) ClearLog() {
	p.accessLog.Reset()
	p.failure = nil
}

// SetBurrowDeep toggles burrow-deep mode; it applies from the next invocation on.
func (p *Proxy) SetBurrowDeep(on bool) {
	p.burrowDeep = on
	p.log.Debug("burrow deep toggled", zap.Bool("burrow_deep", on))
}

// BurrowDeep reports whether burrow-deep mode is on.
func (p *Proxy) BurrowDeep() bool { return p.burrowDeep }

// Unwrapped is the target handed back by Unwrap.
type Unwrapped struct {
	Target any

	h          *Handler
	burrowDeep bool
}

// Rewrap wraps the target again with the configuration of the proxy it came from.
func (u Unwrapped) Rewrap() (*Proxy, error) {
	return u.h.wrap(u.Target, u.burrowDeep)
}

// Unwrap writes data members set or deleted through the proxy back onto the
// target and releases it. Deleted members are reset to their zero value; members
// the proxy never wrote keep whatever the target holds. The proxy can no longer be used afterwards.
func (p *Proxy) Unwrap() (Unwrapped, error) {
	if p.unwrapped {
		return Unwrapped{}, ErrUnwrapped
	}
	elem := p.target.Elem()
	for _, m := range p.members {
		d, ok := p.data[m.Name]
		if !ok || !d.dirty {
			continue
		}
		f, err := elem.FieldByIndexErr(d.field)
		if err != nil || !f.CanSet() {
			p.log.Warn("data member not written back", zap.String("member", d.name))
			continue
		}
		if d.present {
			f.Set(d.value)
		} else {
			f.Set(reflect.Zero(f.Type()))
		}
	}
	p.unwrapped = true
	p.accessLog.Add(p.typeName + " unwrapped.")
	p.log.Info("target unwrapped")

	target := p.target.Interface()
	if p.byValue {
		target = elem.Interface()
	}
	return Unwrapped{Target: target, h: p.h, burrowDeep: p.burrowDeep}, nil
}

func (p *Proxy) operation(name string) (*callInterceptor, error) {
	if p.unwrapped {
		return nil, ErrUnwrapped
	}
	c, ok := p.calls[name]
	if !ok {
		return nil, p.unknown(name)
	}
	return c, nil
}

func (p *Proxy) dataMember(name string) (*dataInterceptor, error) {
	if p.unwrapped {
		return nil, ErrUnwrapped
	}
	d, ok := p.data[name]
	if !ok {
		return nil, p.unknown(name)
	}
	return d, nil
}

func (p *Proxy) unknown(name string) error {
	return fmt.Errorf("gospy: %w: %s has no %q", ErrUnknownMember, p.typeName, name)
}
