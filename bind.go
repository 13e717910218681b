package xctor

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
)

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// InstantiationError reports that a row could not be turned into a value:
// an argument could not be coerced into its parameter type, or the
// constructor panicked.
//
// An error returned by the constructor itself is never wrapped in an
// InstantiationError; it reaches the caller unchanged.
type InstantiationError struct {
	Target      reflect.Type
	Constructor string // Go signature of the constructor
	Row         int    // zero-based row index within the call
	Arg         int    // zero-based argument index, -1 if not argument-specific
	Err         error
}

func (e *InstantiationError) Error() string {
	if e.Arg < 0 {
		return fmt.Sprintf("xctor: row %d: %s via %s: %v", e.Row, e.Target, e.Constructor, e.Err)
	}
	return fmt.Sprintf("xctor: row %d: %s via %s: argument %d: %v", e.Row, e.Target, e.Constructor, e.Arg, e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrInstantiation].
func (e *InstantiationError) Is(target error) bool { return target == ErrInstantiation }

// Bind applies c to every tuple, in order, and returns one T per tuple.
//
// The first failure aborts the whole call: no partial result is returned.
// Coercion failures and constructor panics surface as [*InstantiationError];
// an error returned by the constructor is returned as-is.
func Bind[T any](c *Constructor, tuples []Tuple) ([]T, error) {
	out := make([]T, 0, len(tuples))
	for i, tup := range tuples {
		v, err := instantiate[T](c, i, tup)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func instantiate[T any](c *Constructor, row int, tup Tuple) (out T, err error) {
	fail := func(arg int, err error) error {
		return &InstantiationError{
			Target:      typeOf[T](),
			Constructor: c.String(),
			Row:         row,
			Arg:         arg,
			Err:         err,
		}
	}

	if len(tup) != c.NumIn() {
		return out, fail(-1, fmt.Errorf("row has %d values, constructor takes %d", len(tup), c.NumIn()))
	}
	args := make([]reflect.Value, len(tup))
	for i, v := range tup {
		a, cerr := coerce(v, c.In(i))
		if cerr != nil {
			return out, fail(i, cerr)
		}
		args[i] = a
	}

	res, perr := call(c.fn, args)
	if perr != nil {
		return out, fail(-1, perr)
	}
	if c.hasErr && !res[1].IsNil() {
		return out, res[1].Interface().(error)
	}
	reflect.ValueOf(&out).Elem().Set(res[0])
	return out, nil
}

func call(fn reflect.Value, args []reflect.Value) (res []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("constructor panicked: %w", e)
				return
			}
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()
	return fn.Call(args), nil
}

// coerce turns a column value into a value of parameter type pt.
func coerce(v any, pt reflect.Type) (reflect.Value, error) {
	if isNull(v) {
		if nillable(pt) || isBoxed(pt) {
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use NULL as %s", pt)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(pt) {
		return rv, nil
	}

	// Boxed values (sql.Null*, uuid.UUID, ...) unbox to their driver value.
	if val, ok := v.(driver.Valuer); ok {
		dv, err := val.Value()
		if err != nil {
			return reflect.Value{}, err
		}
		if dv == nil || reflect.TypeOf(dv) != rv.Type() {
			return coerce(dv, pt)
		}
	}

	switch {
	case pt.Kind() == reflect.Ptr:
		ev, err := coerce(v, pt.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(pt.Elem())
		p.Elem().Set(ev)
		return p, nil
	case rv.Kind() == reflect.Ptr:
		return coerce(rv.Elem().Interface(), pt)
	}

	if reflect.PointerTo(pt).Implements(scannerType) {
		p := reflect.New(pt)
		if err := p.Interface().(sql.Scanner).Scan(v); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}

	if cv, ok, err := convertValue(rv, pt); ok {
		return cv, err
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), pt)
}

// convertValue covers the safe conversions: []byte<->string, integer
// widening and narrowing with overflow checks, integer->float, float->float,
// and named types over those kinds. ok is false when no rule applies.
func convertValue(rv reflect.Value, pt reflect.Type) (out reflect.Value, ok bool, err error) {
	from, to := rv.Kind(), pt.Kind()
	dst := reflect.New(pt).Elem()
	switch {
	case isBytes(rv.Type()) && to == reflect.String:
		return reflect.ValueOf(string(rv.Bytes())).Convert(pt), true, nil
	case from == reflect.String && isBytes(pt):
		return reflect.ValueOf([]byte(rv.String())).Convert(pt), true, nil
	case isInt(from) && isInt(to):
		if dst.OverflowInt(rv.Int()) {
			return out, true, overflow(rv, pt)
		}
	case isUint(from) && isUint(to):
		if dst.OverflowUint(rv.Uint()) {
			return out, true, overflow(rv, pt)
		}
	case isInt(from) && isUint(to):
		if rv.Int() < 0 || dst.OverflowUint(uint64(rv.Int())) {
			return out, true, overflow(rv, pt)
		}
	case isUint(from) && isInt(to):
		if rv.Uint() > math.MaxInt64 || dst.OverflowInt(int64(rv.Uint())) {
			return out, true, overflow(rv, pt)
		}
	case isFloat(from) && isFloat(to):
		if dst.OverflowFloat(rv.Float()) {
			return out, true, overflow(rv, pt)
		}
	case (isInt(from) || isUint(from)) && isFloat(to):
	case from == to && (from == reflect.String || from == reflect.Bool):
	default:
		return out, false, nil
	}
	return rv.Convert(pt), true, nil
}

func overflow(rv reflect.Value, pt reflect.Type) error {
	return fmt.Errorf("value %v overflows %s", rv.Interface(), pt)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }
