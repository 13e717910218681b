package xctor

import (
	"database/sql"
	"reflect"
	"time"
)

// boxed maps each database/sql nullable wrapper to the primitive it boxes.
// Built once at init and never written afterwards.
var boxed = map[reflect.Type]reflect.Type{
	reflect.TypeOf(sql.NullBool{}):    reflect.TypeOf(false),
	reflect.TypeOf(sql.NullByte{}):    reflect.TypeOf(byte(0)),
	reflect.TypeOf(sql.NullInt16{}):   reflect.TypeOf(int16(0)),
	reflect.TypeOf(sql.NullInt32{}):   reflect.TypeOf(int32(0)),
	reflect.TypeOf(sql.NullInt64{}):   reflect.TypeOf(int64(0)),
	reflect.TypeOf(sql.NullFloat64{}): reflect.TypeOf(float64(0)),
	reflect.TypeOf(sql.NullString{}):  reflect.TypeOf(""),
	reflect.TypeOf(sql.NullTime{}):    reflect.TypeOf(time.Time{}),
}

// Unbox returns the primitive type that t boxes: the element type of a
// pointer (all layers) or the value type of a sql.Null* wrapper. Any other
// type is returned unchanged, so Unbox is total.
//
// Both sides of a constructor compatibility check go through Unbox, which
// makes *int64, sql.NullInt64 and int64 mutually compatible.
func Unbox(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if p, ok := boxed[t]; ok {
		return p
	}
	return t
}

func isBoxed(t reflect.Type) bool {
	_, ok := boxed[t]
	return ok
}
