package xctor

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"reflect"
	"testing"
)

type DBHandler func(query string, args []driver.NamedValue) (cols []string, rows [][]driver.Value, err error)

type testConnector struct {
	h     DBHandler
	types []reflect.Type // optional per-column scan types
}

func (c *testConnector) Connect(context.Context) (driver.Conn, error) {
	return &testConn{h: c.h, types: c.types}, nil
}
func (c *testConnector) Driver() driver.Driver { return testDriver{} }

type testDriver struct{}

func (testDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("testDriver.Open should not be called; use sql.OpenDB with connector")
}

type testConn struct {
	h     DBHandler
	types []reflect.Type
}

func (c *testConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *testConn) Close() error                        { return nil }
func (c *testConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c *testConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	cols, data, err := c.h(query, args)
	if err != nil {
		return nil, err
	}
	return &testRows{cols: cols, data: data, types: c.types}, nil
}

type testRows struct {
	cols  []string
	data  [][]driver.Value
	types []reflect.Type
	i     int
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func (r *testRows) ColumnTypeScanType(i int) reflect.Type {
	if i < len(r.types) && r.types[i] != nil {
		return r.types[i]
	}
	return anyType
}

func (r *testRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *testRows) Close() error      { return nil }
func (r *testRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.i]
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

// newTestDB creates a *sql.DB backed by the in-memory test driver.
func newTestDB(t *testing.T, h DBHandler) *sql.DB {
	t.Helper()
	db := sql.OpenDB(&testConnector{h: h})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// typedDB is staticDB with the scan type the driver reports per column.
func typedDB(t *testing.T, cols []string, types []reflect.Type, rows ...[]driver.Value) *sql.DB {
	t.Helper()
	db := sql.OpenDB(&testConnector{
		h: func(string, []driver.NamedValue) ([]string, [][]driver.Value, error) {
			return cols, rows, nil
		},
		types: types,
	})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// staticDB serves the same columns and rows for every query.
func staticDB(t *testing.T, cols []string, rows ...[]driver.Value) *sql.DB {
	t.Helper()
	return newTestDB(t, func(string, []driver.NamedValue) ([]string, [][]driver.Value, error) {
		return cols, rows, nil
	})
}

type errNextConnector struct{}

func (c *errNextConnector) Connect(context.Context) (driver.Conn, error) { return &errNextConn{}, nil }
func (c *errNextConnector) Driver() driver.Driver                        { return testDriver{} }

type errNextConn struct{}

func (c *errNextConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *errNextConn) Close() error                        { return nil }
func (c *errNextConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }
func (c *errNextConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &errRows{}, nil
}

// errRows fails on first Next(); database/sql exposes it via rows.Err() after Next() returns false.
type errRows struct{}

func (e *errRows) Columns() []string { return []string{"a"} }
func (e *errRows) Close() error      { return nil }
func (e *errRows) Next(dest []driver.Value) error {
	return errors.New("driver next error")
}

// ---- target types shared by the tests ----

type Pair struct {
	A int64
	B string
}

func NewPair(a int64, b string) Pair { return Pair{A: a, B: b} }

type Foo struct {
	N    int64
	S    string
	From string
}

func FooFromInt(n int64) Foo     { return Foo{N: n, From: "int"} }
func FooFromString(s string) Foo { return Foo{S: s, From: "string"} }

type Money struct {
	Cents    int64
	Currency string
}

func (Money) DeclaredConstructors() []any {
	return []any{
		func(cents int64) Money { return Money{Cents: cents, Currency: "USD"} },
		func(cents int64, currency string) (Money, error) {
			if currency == "" {
				return Money{}, errEmptyCurrency
			}
			return Money{Cents: cents, Currency: currency}, nil
		},
	}
}

var errEmptyCurrency = errors.New("money: empty currency")
