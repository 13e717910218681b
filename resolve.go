package xctor

import (
	"reflect"
	"strings"
)

// NoConstructorError reports that none of a target type's constructors can
// accept a representative row.
type NoConstructorError struct {
	Target reflect.Type
	Arity  int
	// Types holds the runtime type of every non-NULL value in the row, in
	// column order.
	Types []reflect.Type
}

func (e *NoConstructorError) Error() string {
	var b strings.Builder
	b.WriteString("xctor: no constructor of ")
	if e.Target != nil {
		b.WriteString(e.Target.String())
	} else {
		b.WriteString("<nil>")
	}
	b.WriteString(" taking:")
	for _, t := range e.Types {
		b.WriteString("\n\t")
		b.WriteString(t.String())
	}
	return b.String()
}

// Is reports whether target is [ErrNoConstructor].
func (e *NoConstructorError) Is(target error) bool { return target == ErrNoConstructor }

// Resolve selects the constructor used for every row of one mapping call,
// judging from the representative tuple tup (normally the first row).
//
// Rules, in order:
//
//  1. A type with exactly one constructor whose arity equals len(tup) gets
//     that constructor, without any type check.
//  2. Otherwise constructors are tried in declaration order. A constructor
//     of the right arity matches when, at every position, the value is NULL
//     or its runtime type is assignable to the parameter type, either as is
//     or with both sides taken through [Unbox]. The first match wins; later
//     constructors are never considered, even if they would fit better.
//  3. No match yields a [*NoConstructorError].
//
// Because only tup is inspected, every row of the result is assumed to have
// the same arity, which holds for relational query results. A NULL matches
// any parameter, so given Foo(int64) and Foo(string) a (NULL) row resolves to
// Foo(int64) purely by declaration order.
func Resolve(target reflect.Type, ctors []*Constructor, tup Tuple) (*Constructor, error) {
	c, _, err := resolve(target, ctors, tup)
	return c, err
}

func resolve(target reflect.Type, ctors []*Constructor, tup Tuple) (c *Constructor, fast bool, err error) {
	if len(ctors) == 1 && ctors[0].NumIn() == len(tup) {
		return ctors[0], true, nil
	}

next:
	for _, c := range ctors {
		if c.NumIn() != len(tup) {
			continue
		}
		for i, v := range tup {
			if isNull(v) {
				continue
			}
			if !accepts(c.In(i), reflect.TypeOf(v)) {
				continue next
			}
		}
		return c, false, nil
	}

	e := &NoConstructorError{Target: target, Arity: len(tup)}
	for _, v := range tup {
		if !isNull(v) {
			e.Types = append(e.Types, reflect.TypeOf(v))
		}
	}
	return nil, false, e
}

// accepts reports whether a value of type vt may fill a parameter of type
// pt: either directly, or once both sides are unboxed.
func accepts(pt, vt reflect.Type) bool {
	return vt.AssignableTo(pt) || Unbox(vt).AssignableTo(Unbox(pt))
}

// isNull reports SQL NULL: a nil interface or a nil pointer.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
