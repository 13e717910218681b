package xctor

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor is one registered way of building a target value: a Go
// function whose parameters receive a row's column values in order.
type Constructor struct {
	fn     reflect.Value
	in     []reflect.Type
	hasErr bool
	index  int // declaration order within its Type
}

// NumIn returns the constructor's arity.
func (c *Constructor) NumIn() int { return len(c.in) }

// In returns the declared type of the i'th parameter.
func (c *Constructor) In(i int) reflect.Type { return c.in[i] }

// Index returns the constructor's position in declaration order.
func (c *Constructor) Index() int { return c.index }

// String renders the constructor's Go signature, e.g. "func(int64, string) Pair".
func (c *Constructor) String() string { return c.fn.Type().String() }

func newConstructor(target reflect.Type, index int, fn any) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: constructor %d is nil", ErrInvalidConstructor, index)
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: constructor %d is %s, not a func", ErrInvalidConstructor, index, ft)
	}
	if fv.IsNil() {
		return nil, fmt.Errorf("%w: constructor %d is a nil %s", ErrInvalidConstructor, index, ft)
	}
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %s is variadic", ErrInvalidConstructor, ft)
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("%w: %s must return %s or (%s, error)", ErrInvalidConstructor, ft, target, target)
	}
	if !ft.Out(0).AssignableTo(target) {
		return nil, fmt.Errorf("%w: %s returns %s, not assignable to %s", ErrInvalidConstructor, ft, ft.Out(0), target)
	}

	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}
	return &Constructor{fn: fv, in: in, hasErr: ft.NumOut() == 2, index: index}, nil
}

// Type describes a mapping target T together with its declared constructors.
//
// A Type is immutable once built and safe for concurrent use. It is either
// an explicit registration table (NewType, MustType) or a view over T's own
// DeclaredConstructors method (Declared). Its candidate set is built on every
// call to Constructors; nothing is cached between mapping calls.
type Type[T any] struct {
	rt       reflect.Type
	ctors    []*Constructor
	declared bool
}

// Declarer is implemented by target types that declare their own
// constructors. DeclaredConstructors is called on the zero value of the type,
// so it must not depend on receiver state.
type Declarer interface {
	DeclaredConstructors() []any
}

// NewType registers ctors, in declaration order, as the constructors of T.
//
// Every ctor must be a non-variadic func returning T (or a type assignable to
// T), optionally followed by an error:
//
//	type Pair struct {
//	    A int64
//	    B string
//	}
//
//	func NewPair(a int64, b string) Pair { return Pair{A: a, B: b} }
//
//	var pairType = xctor.MustType[Pair](NewPair)
//
// Invalid registrations return an error wrapping [ErrInvalidConstructor].
// Zero constructors is allowed; every mapping call will then fail with a
// [*NoConstructorError].
func NewType[T any](ctors ...any) (*Type[T], error) {
	rt := typeOf[T]()
	t := &Type[T]{rt: rt, ctors: make([]*Constructor, 0, len(ctors))}
	for i, fn := range ctors {
		c, err := newConstructor(rt, i, fn)
		if err != nil {
			return nil, err
		}
		t.ctors = append(t.ctors, c)
	}
	return t, nil
}

// MustType is like NewType but panics on an invalid registration. It is
// meant for package-level variables.
func MustType[T any](ctors ...any) *Type[T] {
	t, err := NewType[T](ctors...)
	if err != nil {
		panic(err)
	}
	return t
}

// Declared returns a Type whose constructors come from T's
// DeclaredConstructors method, re-read on every mapping call.
//
// T (or *T) must implement [Declarer]; Constructors reports an error
// otherwise.
//
//	type Money struct{ ... }
//
//	func (Money) DeclaredConstructors() []any {
//	    return []any{MoneyFromCents, MoneyFromString}
//	}
//
//	total, err := xctor.Get(ctx, db, xctor.Declared[Money](), `SELECT SUM(cents) FROM orders`)
func Declared[T any]() *Type[T] {
	return &Type[T]{rt: typeOf[T](), declared: true}
}

// Target returns the reflect.Type of T.
func (t *Type[T]) Target() reflect.Type { return t.rt }

// Constructors returns the candidate constructor set of T in declaration
// order. The returned slice is freshly allocated.
func (t *Type[T]) Constructors() ([]*Constructor, error) {
	if !t.declared {
		return append([]*Constructor(nil), t.ctors...), nil
	}
	d, ok := declarerOf(t.rt)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not implement DeclaredConstructors", ErrInvalidConstructor, t.rt)
	}
	fns := d.DeclaredConstructors()
	out := make([]*Constructor, 0, len(fns))
	for i, fn := range fns {
		c, err := newConstructor(t.rt, i, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func declarerOf(rt reflect.Type) (Declarer, bool) {
	// Value receiver first, then pointer receiver on a fresh zero value.
	if d, ok := reflect.Zero(rt).Interface().(Declarer); ok {
		return d, true
	}
	if d, ok := reflect.New(rt).Interface().(Declarer); ok {
		return d, true
	}
	return nil, false
}

// Signature renders the constructor signature that would accept tup through
// the resolver's checks, e.g. "func(int64, string, bool)". NULL positions are
// rendered as "any" since any parameter type accepts them.
func Signature(tup Tuple) string {
	var b strings.Builder
	b.WriteString("func(")
	for i, v := range tup {
		if i > 0 {
			b.WriteString(", ")
		}
		if isNull(v) {
			b.WriteString("any")
			continue
		}
		b.WriteString(Unbox(reflect.TypeOf(v)).String())
	}
	b.WriteString(")")
	return b.String()
}
