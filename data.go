package gospy

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/mickamy/gospy/internal/format"
	"github.com/mickamy/gospy/internal/reflector"
)

// dataInterceptor holds the current value of one data member.
// Reads are silent; writes and deletes are logged.
type dataInterceptor struct {
	owner   *Proxy
	name    string
	field   []int
	value   reflect.Value
	present bool
	dirty   bool // written or deleted through the proxy
}

func newDataInterceptor(owner *Proxy, m reflector.Member, fv reflect.Value) *dataInterceptor {
	v := reflect.New(fv.Type()).Elem()
	v.Set(fv)
	return &dataInterceptor{owner: owner, name: m.Name, field: m.Field, value: v, present: true}
}

func (d *dataInterceptor) read() (any, error) {
	d.owner.h.cfg.Reporter.Tick(".")
	if !d.present {
		return nil, fmt.Errorf("gospy: %w: %s was deleted", ErrNoValue, d.name)
	}
	return d.value.Interface(), nil
}

func (d *dataInterceptor) write(value any) error {
	v, err := reflector.Convert(value, d.value.Type())
	if err != nil {
		return fmt.Errorf("gospy: %s: %w", d.name, err)
	}
	p := d.owner
	cfg := p.h.cfg
	cfg.Reporter.Tick(".")

	old := "<deleted>"
	if d.present {
		old = format.Value(d.value.Interface(), cfg.TruncateAt)
	}
	p.accessLog.Add(fmt.Sprintf("-- %s set to value: %s. Previous value was: %s",
		d.name, format.Value(v.Interface(), cfg.TruncateAt), old))

	d.value = v
	d.present = true
	d.dirty = true

	cfg.Metrics.observeData(p.typeName, d.name, dataEventWrite)
	p.log.Debug("data member set", zap.String("member", d.name))
	return nil
}

func (d *dataInterceptor) delete() error {
	if !d.present {
		return fmt.Errorf("gospy: %w: %s was already deleted", ErrNoValue, d.name)
	}
	p := d.owner
	cfg := p.h.cfg
	cfg.Reporter.Tick(".")
	p.accessLog.Add(fmt.Sprintf("-- %s deleted.", d.name))

	d.value = reflect.New(d.value.Type()).Elem()
	d.present = false
	d.dirty = true

	cfg.Metrics.observeData(p.typeName, d.name, dataEventDel)
	p.log.Debug("data member deleted", zap.String("member", d.name))
	return nil
}
