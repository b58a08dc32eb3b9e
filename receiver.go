package gospy

import (
	"fmt"
	"reflect"

	"github.com/mickamy/gospy/internal/reflector"
)

// Receiver is what a bound operation gets in place of an implicit self.
// Operations declaring it as their first parameter route self-calls and
// data access through it. With burrow-deep on the proxy itself is passed,
// so those self-calls are intercepted and recorded as well; otherwise a
// receiver acting directly on the target is passed.
type Receiver interface {
	Call(name string, args ...any) ([]any, error)
	Get(name string) (any, error)
	Set(name string, value any) error
}

var _ Receiver = (*Proxy)(nil)

// directReceiver dispatches straight to the target without recording anything.
type directReceiver struct {
	p *Proxy
}

func (d *directReceiver) Call(name string, args ...any) ([]any, error) {
	c, ok := d.p.calls[name]
	if !ok {
		return nil, d.p.unknown(name)
	}
	return c.callTarget(d, args, nil)
}

func (d *directReceiver) Get(name string) (any, error) {
	f, err := d.field(name)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

func (d *directReceiver) Set(name string, value any) error {
	f, err := d.field(name)
	if err != nil {
		return err
	}
	v, err := reflector.Convert(value, f.Type())
	if err != nil {
		return fmt.Errorf("gospy: %s: %w", name, err)
	}
	f.Set(v)
	return nil
}

func (d *directReceiver) field(name string) (reflect.Value, error) {
	di, ok := d.p.data[name]
	if !ok {
		return reflect.Value{}, d.p.unknown(name)
	}
	return d.p.target.Elem().FieldByIndexErr(di.field)
}
