package reflector

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// ErrBadArguments is returned when call arguments do not fit an operation's signature.
var ErrBadArguments = errors.New("bad arguments")

// Kind classifies a discovered member.
type Kind int

const (
	Operation Kind = iota + 1
	Data
)

func (k Kind) String() string {
	switch k {
	case Operation:
		return "operation"
	case Data:
		return "data"
	default:
		return "unknown"
	}
}

// Member is a single externally visible member of a target.
type Member struct {
	Name string
	Kind Kind
	// Bound is set for operations whose first parameter is the receiver type.
	Bound bool
	// Func is the invocable value for operations (a method value or a func field).
	Func reflect.Value
	// Field is the index path of a struct field, set for data members and func fields.
	Field []int
}

// Options controls enumeration and argument preparation.
type Options struct {
	ReceiverType reflect.Type // first parameter type marking a bound operation
	KwargsType   reflect.Type // trailing parameter type accepting keyword arguments
	Reserved     []string     // names that are never wrapped
}

func (o Options) reserved(name string) bool {
	for _, r := range o.Reserved {
		if r == name {
			return true
		}
	}
	return false
}

// Enumerate walks the exported methods and struct fields of v and classifies each one.
// v is expected to be a pointer so both pointer-receiver methods and fields are visible.
func Enumerate(v reflect.Value, opts Options) []Member {
	if !v.IsValid() {
		return nil
	}
	seen := map[string]bool{}
	var out []Member

	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() || opts.reserved(m.Name) {
			continue
		}
		fn := v.Method(i)
		out = append(out, Member{
			Name:  m.Name,
			Kind:  Operation,
			Bound: isBound(fn.Type(), opts.ReceiverType),
			Func:  fn,
		})
		seen[m.Name] = true
	}

	s := v
	for s.Kind() == reflect.Pointer || s.Kind() == reflect.Interface {
		if s.IsNil() {
			break
		}
		s = s.Elem()
	}
	if s.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(s.Type()) {
			if !f.IsExported() || f.Anonymous || seen[f.Name] || opts.reserved(f.Name) {
				continue
			}
			fv, err := s.FieldByIndexErr(f.Index)
			if err != nil {
				continue
			}
			m := Member{Name: f.Name, Kind: Data, Field: f.Index}
			if fv.Kind() == reflect.Func && !fv.IsNil() {
				m.Kind = Operation
				m.Func = fv
				m.Bound = isBound(fv.Type(), opts.ReceiverType)
			}
			out = append(out, m)
			seen[f.Name] = true
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func isBound(ft reflect.Type, recv reflect.Type) bool {
	return recv != nil && ft.NumIn() > 0 && ft.In(0) == recv
}

// PrepareArgs converts args into call arguments for fn, skipping the first lead parameters.
// kwargs are passed as the trailing parameter when fn declares opts.KwargsType there.
func PrepareArgs(ft reflect.Type, lead int, args []any, kwargs map[string]any, kwargsType reflect.Type) ([]reflect.Value, error) {
	n := ft.NumIn()
	takesKw := kwargsType != nil && !ft.IsVariadic() && n > lead && ft.In(n-1) == kwargsType
	if takesKw {
		n--
	} else if len(kwargs) > 0 {
		return nil, fmt.Errorf("%w: keyword arguments not accepted", ErrBadArguments)
	}

	fixed := n - lead
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrBadArguments, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArguments, fixed, len(args))
	}

	out := make([]reflect.Value, 0, len(args)+1)
	for i, a := range args {
		var pt reflect.Type
		if i < fixed {
			pt = ft.In(lead + i)
		} else {
			pt = ft.In(n - 1).Elem()
		}
		av, err := Convert(a, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, av)
	}
	if takesKw {
		kv := reflect.New(kwargsType).Elem()
		if kwargs != nil {
			kv = reflect.ValueOf(kwargs).Convert(kwargsType)
		}
		out = append(out, kv)
	}
	return out, nil
}

// Convert turns v into a value of type t: assignable values pass through,
// numeric kinds convert when no precision, range or sign is lost, and nil
// becomes the zero value of nillable types.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if nillable(t.Kind()) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a valid %s", ErrBadArguments, t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if numeric(rv.Kind()) && numeric(t.Kind()) && rv.Type().ConvertibleTo(t) {
		out := rv.Convert(t)
		if !lossless(rv, out) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrBadArguments, v, t)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrBadArguments, rv.Type(), t)
}

// SplitResults separates a trailing non-nil error from the value results.
func SplitResults(ft reflect.Type, out []reflect.Value) ([]any, error) {
	errType := reflect.TypeOf((*error)(nil)).Elem()
	n := len(out)
	var err error
	if n > 0 && ft.Out(n-1).Implements(errType) {
		if e := out[n-1]; !nillable(e.Kind()) || !e.IsNil() {
			err = e.Interface().(error)
		}
		n--
	}
	vals := make([]any, n)
	for i := 0; i < n; i++ {
		vals[i] = out[i].Interface()
	}
	return vals, err
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// lossless reports whether to holds exactly the number in from.
func lossless(from, to reflect.Value) bool {
	fk, tk := from.Kind(), to.Kind()
	switch {
	case isSigned(fk) && isUnsigned(tk) && from.Int() < 0,
		isFloat(fk) && isUnsigned(tk) && from.Float() < 0,
		isUnsigned(fk) && isSigned(tk) && to.Int() < 0:
		return false
	case isFloat(fk) && math.IsNaN(from.Float()):
		return isFloat(tk)
	}
	return to.Convert(from.Type()).Equal(from)
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
