package xctor

import (
	"context"
	"database/sql"
	"reflect"
)

// Source is the query side of a mapping call: it executes a query and hands
// back the raw result rows. A raw row is a bare value for single-column
// results and a []any for multi-column results.
//
// SingleResult must fail when the query yields zero rows or more than one;
// the mapper does not check.
type Source interface {
	ResultList(ctx context.Context) ([]any, error)
	SingleResult(ctx context.Context) (any, error)
}

// SQLSource is a Source backed by a database/sql query.
type SQLSource struct {
	q     Querier
	query string
	args  []any
}

// SQL returns a Source that runs query with args on q (a *sql.DB, *sql.Tx,
// *sql.Conn or any other [Querier]).
//
// Column values are read as the driver reports them (int64, float64, bool,
// []byte, string, time.Time or nil). The one exception is text: a column
// whose driver scan type is string or sql.NullString comes back as a string
// even when the driver hands over []byte (go-sql-driver/mysql does for
// every text-protocol column). Binary columns stay []byte.
func SQL(q Querier, query string, args ...any) *SQLSource {
	return &SQLSource{q: q, query: query, args: args}
}

// ResultList returns every row of the query.
func (s *SQLSource) ResultList(ctx context.Context) (out []any, err error) {
	rows, err := s.q.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, err
	}
	// Propagate rows.Close() error if nothing else failed.
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			out, err = nil, cerr
		}
	}()

	rr, err := newRowReader(rows)
	if err != nil {
		return nil, err
	}
	out = []any{}
	for rows.Next() {
		r, scanErr := rr.next(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, r)
	}
	if ne := rows.Err(); ne != nil {
		return nil, ne
	}
	return out, nil
}

// SingleResult returns the only row of the query. It returns sql.ErrNoRows
// when there is none and [ErrTooManyRows] when there are several.
func (s *SQLSource) SingleResult(ctx context.Context) (out any, err error) {
	rows, err := s.q.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, err
	}
	// Ensure Close error is propagated if no earlier error occurred.
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			out, err = nil, cerr
		}
	}()

	rr, err := newRowReader(rows)
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if ne := rows.Err(); ne != nil {
			return nil, ne
		}
		return nil, sql.ErrNoRows
	}
	out, err = rr.next(rows)
	if err != nil {
		return nil, err
	}
	if rows.Next() {
		return nil, ErrTooManyRows
	}
	if ne := rows.Err(); ne != nil {
		return nil, ne
	}
	return out, nil
}

var nullStringType = reflect.TypeOf(sql.NullString{})

// rowReader reads rows of one result set in their raw shape: the bare value
// for one column, a []any otherwise.
type rowReader struct {
	vals  []any
	dests []any
	text  []bool // columns whose []byte values are returned as string
}

func newRowReader(rows *sql.Rows) (*rowReader, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	r := &rowReader{
		vals:  make([]any, len(cts)),
		dests: make([]any, len(cts)),
		text:  make([]bool, len(cts)),
	}
	for i, ct := range cts {
		r.dests[i] = &r.vals[i]
		if st := ct.ScanType(); st != nil {
			r.text[i] = st.Kind() == reflect.String || st == nullStringType
		}
	}
	return r, nil
}

func (r *rowReader) next(rows *sql.Rows) (any, error) {
	// Scanning into *any copies []byte, so values outlive the next Next().
	if err := rows.Scan(r.dests...); err != nil {
		return nil, err
	}
	out := make([]any, len(r.vals))
	for i, v := range r.vals {
		if b, ok := v.([]byte); ok && r.text[i] {
			v = string(b)
		}
		out[i] = v
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

// RowsSource is a Source over rows that are already materialized.
type RowsSource struct {
	raw []any
}

// Rows returns a Source over raw, which holds one entry per row: a bare
// value or a []any tuple. Useful for results kept in memory and in tests.
func Rows(raw ...any) *RowsSource {
	return &RowsSource{raw: raw}
}

// ResultList returns the rows. The context is unused.
func (s *RowsSource) ResultList(context.Context) ([]any, error) {
	return append([]any{}, s.raw...), nil
}

// SingleResult returns the only row, or sql.ErrNoRows / [ErrTooManyRows].
func (s *RowsSource) SingleResult(context.Context) (any, error) {
	switch len(s.raw) {
	case 0:
		return nil, sql.ErrNoRows
	case 1:
		return s.raw[0], nil
	default:
		return nil, ErrTooManyRows
	}
}
