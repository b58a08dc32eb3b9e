package reflector_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/gospy/internal/reflector"
)

type self interface{ Call(name string, args ...any) ([]any, error) }

type kw map[string]any

type base struct {
	Label string
}

type sample struct {
	base
	Count     int
	Hook      func(int) int
	NilHook   func()
	AccessLog []string
	hidden    int
}

func (s *sample) Add(a, b int) int                  { return a + b }
func (s *sample) Double(r self, a int) (int, error) { return a * 2, nil }
func (s *sample) Sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
func (s *sample) Greet(name string, opts kw) string { return name }
func (s *sample) WrappedCalls() int                  { return s.hidden }

var opts = reflector.Options{
	ReceiverType: reflect.TypeOf((*self)(nil)).Elem(),
	KwargsType:   reflect.TypeOf(kw(nil)),
	Reserved:     []string{"AccessLog", "WrappedCalls"},
}

type summary struct {
	Name  string
	Kind  reflector.Kind
	Bound bool
}

func TestEnumerate(t *testing.T) {
	t.Parallel()

	members := reflector.Enumerate(reflect.ValueOf(&sample{Hook: func(i int) int { return i }}), opts)
	got := make([]summary, 0, len(members))
	for _, m := range members {
		got = append(got, summary{Name: m.Name, Kind: m.Kind, Bound: m.Bound})
	}
	want := []summary{
		{Name: "Add", Kind: reflector.Operation},
		{Name: "Count", Kind: reflector.Data},
		{Name: "Double", Kind: reflector.Operation, Bound: true},
		{Name: "Greet", Kind: reflector.Operation},
		{Name: "Hook", Kind: reflector.Operation},
		{Name: "Label", Kind: reflector.Data},
		{Name: "NilHook", Kind: reflector.Data},
		{Name: "Sum", Kind: reflector.Operation},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Enumerate mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_NonStruct(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reflector.Enumerate(reflect.Value{}, opts))
	members := reflector.Enumerate(reflect.ValueOf(42), opts)
	assert.Empty(t, members)
}

func TestPrepareArgs(t *testing.T) {
	t.Parallel()

	s := &sample{}
	tcs := []struct {
		name    string
		fn      any
		lead    int
		args    []any
		kwargs  map[string]any
		wantErr bool
		wantLen int
	}{
		{name: "exact", fn: s.Add, args: []any{1, 2}, wantLen: 2},
		{name: "numeric conversion", fn: s.Add, args: []any{int64(1), 2.0}, wantLen: 2},
		{name: "fractional float for int", fn: s.Add, args: []any{1.5, 2}, wantErr: true},
		{name: "negative for unsigned", fn: func(uint8) {}, args: []any{-1}, wantErr: true},
		{name: "overflow for uint8", fn: func(uint8) {}, args: []any{300}, wantErr: true},
		{name: "too few", fn: s.Add, args: []any{1}, wantErr: true},
		{name: "wrong type", fn: s.Add, args: []any{"a", 2}, wantErr: true},
		{name: "nil for int", fn: s.Add, args: []any{nil, 2}, wantErr: true},
		{name: "variadic empty", fn: s.Sum, args: nil, wantLen: 0},
		{name: "variadic many", fn: s.Sum, args: []any{1, 2, 3}, wantLen: 3},
		{name: "bound skips receiver", fn: s.Double, lead: 1, args: []any{4}, wantLen: 1},
		{name: "kwargs appended", fn: s.Greet, args: []any{"x"}, kwargs: map[string]any{"loud": true}, wantLen: 2},
		{name: "kwargs omitted", fn: s.Greet, args: []any{"x"}, wantLen: 2},
		{name: "kwargs refused", fn: s.Add, args: []any{1, 2}, kwargs: map[string]any{"a": 1}, wantErr: true},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := reflector.PrepareArgs(reflect.TypeOf(tc.fn), tc.lead, tc.args, tc.kwargs, opts.KwargsType)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, reflector.ErrBadArguments))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tc.wantLen)
		})
	}
}

func TestSplitResults(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fn := func(fail bool) (int, string, error) {
		if fail {
			return 0, "", boom
		}
		return 1, "one", nil
	}
	ft := reflect.TypeOf(fn)

	vals, err := reflector.SplitResults(ft, reflect.ValueOf(fn).Call([]reflect.Value{reflect.ValueOf(false)}))
	require.NoError(t, err)
	assert.Equal(t, []any{1, "one"}, vals)

	_, err = reflector.SplitResults(ft, reflect.ValueOf(fn).Call([]reflect.Value{reflect.ValueOf(true)}))
	assert.ErrorIs(t, err, boom)
}

func TestConvert_Interface(t *testing.T) {
	t.Parallel()

	anyType := reflect.TypeOf((*any)(nil)).Elem()
	v, err := reflector.Convert(3, anyType)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Interface())

	v, err = reflector.Convert(nil, anyType)
	require.NoError(t, err)
	assert.Nil(t, v.Interface())
}

func TestConvert_Numeric(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		in      any
		to      reflect.Type
		want    any
		wantErr bool
	}{
		{name: "int64 to int", in: int64(3), to: reflect.TypeOf(0), want: 3},
		{name: "whole float to int", in: 3.0, to: reflect.TypeOf(0), want: 3},
		{name: "int to float64", in: 7, to: reflect.TypeOf(0.0), want: 7.0},
		{name: "fractional float to int", in: 3.7, to: reflect.TypeOf(0), wantErr: true},
		{name: "int overflows uint8", in: 300, to: reflect.TypeOf(uint8(0)), wantErr: true},
		{name: "negative int to uint8", in: -1, to: reflect.TypeOf(uint8(0)), wantErr: true},
		{name: "negative int to uint64", in: -1, to: reflect.TypeOf(uint64(0)), wantErr: true},
		{name: "negative float to uint", in: -2.0, to: reflect.TypeOf(uint(0)), wantErr: true},
		{name: "huge uint64 to int64", in: uint64(1 << 63), to: reflect.TypeOf(int64(0)), wantErr: true},
		{name: "int64 beyond float64 precision", in: int64(1<<53 + 1), to: reflect.TypeOf(0.0), wantErr: true},
		{name: "float64 not exact in float32", in: 0.1, to: reflect.TypeOf(float32(0)), wantErr: true},
		{name: "float64 exact in float32", in: 0.5, to: reflect.TypeOf(float32(0)), want: float32(0.5)},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := reflector.Convert(tc.in, tc.to)
			if tc.wantErr {
				assert.ErrorIs(t, err, reflector.ErrBadArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Interface())
		})
	}
}
