package xctor

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is implemented by *sql.DB, *sql.Tx, *sql.Conn, *sqlx.DB and any
// wrapper that can execute a query returning rows.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Tuple is one normalized result row: the column values in select-list order.
// A nil element is a SQL NULL.
type Tuple []any

// ErrNoConstructor is matched (via errors.Is) by every *NoConstructorError.
var ErrNoConstructor = errors.New("xctor: no matching constructor")

// ErrInstantiation is matched (via errors.Is) by every *InstantiationError.
var ErrInstantiation = errors.New("xctor: instantiation failed")

// ErrInvalidConstructor is returned when a registered constructor is not a
// usable function for the target type.
var ErrInvalidConstructor = errors.New("xctor: invalid constructor")

// ErrTooManyRows is returned by a Source's SingleResult when the query yields
// more than one row.
var ErrTooManyRows = errors.New("xctor: query returned more than one row")
