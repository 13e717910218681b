/*
Package xctor maps query results onto Go values by calling constructors.
You write plain SQL and plain Go functions; xctor picks the function whose
parameters fit a row's columns and calls it once per row.

# Overview

A target type T is described by a [Type], which lists T's constructors in
declaration order. Constructors are ordinary funcs returning T or (T, error):

	type Pair struct {
	    N    int64
	    Name string
	}

	var pairType = xctor.MustType[Pair](
	    func(n int64, name string) Pair { return Pair{N: n, Name: name} },
	    func(name string) Pair { return Pair{Name: name} },
	)

	pairs, err := xctor.Query(ctx, db, pairType, `SELECT n, name FROM pairs`)

Types can instead declare their own constructors by implementing
[Declarer] and being wrapped with [Declared].

# Mapping rules

  - Rows are normalized first: single-column results become one-element tuples,
    multi-column results are used as they are. A one-row result always takes the
    single-row path, which guesses the shape from the row itself.
  - One constructor is resolved per call, from the first row. A type with a single
    constructor of the right arity gets it without any type check.
  - Otherwise constructors are tried in declaration order and the first whose
    parameters accept every non-NULL column wins. A column fits a parameter it
    is assignable to. NULL fits any parameter.
  - Compatibility looks through boxing: *int64, sql.NullInt64 and int64 are
    interchangeable, as are the other sql.Null* types and their primitives.
  - Binding coerces each column into its parameter: NULL becomes the zero value of
    pointer, interface and sql.Null* parameters; sql.Scanner parameters are scanned;
    []byte and string convert both ways; integers convert with overflow checks.

# Error handling

  - A row no constructor accepts gives a [*NoConstructorError] (errors.Is
    [ErrNoConstructor]) listing the row's non-NULL runtime types.
  - Coercion failures and constructor panics give an [*InstantiationError]
    (errors.Is [ErrInstantiation]).
  - Errors returned by constructors and by the [Source] are passed through untouched.
  - [Get] and [UniqueResult] over [SQL] return sql.ErrNoRows for zero rows and
    [ErrTooManyRows] for more than one.

Nothing is retried and nothing is partially returned.

# Concurrency

Mapping calls are synchronous and share no mutable state; the only global is the
read-only boxed-type table. A [Type] may be used from many goroutines at once.
Constructor lookups are not cached between calls.

# Compatibility

xctor works with any database/sql driver and any [Querier] (*sql.DB, *sql.Tx,
*sql.Conn, *sqlx.DB). It does not rewrite SQL or placeholders. Field- and
setter-based mapping is not supported: values are only ever built by
their constructors.
*/
package xctor
