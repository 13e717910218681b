package xctor

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a single List or UniqueResult call.
type Option func(*callConfig)

type callConfig struct {
	log logrus.FieldLogger
}

// WithLogger routes the call's debug output (which constructor was resolved,
// and why) to l. Without it the call logs nothing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *callConfig) {
		if l != nil {
			c.log = l
		}
	}
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()

func newCallConfig(opts []Option) callConfig {
	c := callConfig{log: discard}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// List fetches src's result rows and maps each of them to a T.
//
// The rows are normalized to tuples, one constructor of typ is resolved from
// the first tuple, and that constructor is applied to every tuple in order.
// A source that yields no rows gives an empty, non-nil slice and no error.
//
// Errors: anything src returns is passed through untouched; a row no
// constructor accepts gives a [*NoConstructorError]; coercion failures and
// constructor panics give an [*InstantiationError]; an error returned by a
// constructor is passed through untouched. There is never a partial result.
//
// Example:
//
//	type Pair struct {
//	    N    int64
//	    Name string
//	}
//
//	pairType := xctor.MustType[Pair](func(n int64, name string) Pair {
//	    return Pair{N: n, Name: name}
//	})
//
//	pairs, err := xctor.List(ctx, xctor.SQL(db, `SELECT n, name FROM pairs`), pairType)
func List[T any](ctx context.Context, src Source, typ *Type[T], opts ...Option) ([]T, error) {
	raw, err := src.ResultList(ctx)
	if err != nil {
		return nil, err
	}
	tuples := Normalize(raw)
	if len(tuples) == 0 {
		return []T{}, nil
	}

	cfg := newCallConfig(opts)
	c, err := resolveFor(cfg, typ, tuples[0], len(tuples))
	if err != nil {
		return nil, err
	}
	return Bind[T](c, tuples)
}

// UniqueResult fetches src's single result row and maps it to a T.
//
// Enforcing "exactly one row" is the source's job: [SQL] and [Rows] return
// sql.ErrNoRows for zero rows and [ErrTooManyRows] for more than one.
// Errors are otherwise as for [List].
func UniqueResult[T any](ctx context.Context, src Source, typ *Type[T], opts ...Option) (out T, err error) {
	raw, err := src.SingleResult(ctx)
	if err != nil {
		return out, err
	}
	tup := NormalizeRow(raw)

	cfg := newCallConfig(opts)
	c, err := resolveFor(cfg, typ, tup, 1)
	if err != nil {
		return out, err
	}
	return instantiate[T](c, 0, tup)
}

func resolveFor[T any](cfg callConfig, typ *Type[T], sample Tuple, rows int) (*Constructor, error) {
	ctors, err := typ.Constructors()
	if err != nil {
		return nil, err
	}
	c, fast, err := resolve(typ.Target(), ctors, sample)
	if err != nil {
		cfg.log.WithFields(logrus.Fields{
			"target":       typ.Target().String(),
			"arity":        len(sample),
			"constructors": len(ctors),
		}).Debug("no constructor matched")
		return nil, err
	}
	cfg.log.WithFields(logrus.Fields{
		"target":      typ.Target().String(),
		"constructor": c.String(),
		"index":       c.Index(),
		"fast_path":   fast,
		"arity":       len(sample),
		"rows":        rows,
	}).Debug("resolved constructor")
	return c, nil
}
