package xctor

import (
	"context"
)

// Get executes the SQL query, which must yield exactly one row, and maps that
// row to a T through one of typ's constructors.
//
// It returns [sql.ErrNoRows] if the query yields no rows and
// [ErrTooManyRows] if it yields more than one. Use LIMIT 1 (or an equivalent
// WHERE clause) when several rows may match and any one will do.
//
// Example:
//
//	// Given a *sql.DB (or *sql.Tx, *sql.Conn) in variable `db`:
//	countType := xctor.MustType[Count](func(n int64) Count { return Count(n) })
//
//	ctx := context.Background()
//	n, err := xctor.Get(ctx, db, countType, `SELECT COUNT(*) FROM users WHERE active = $1`, true)
//	if err != nil {
//	    if errors.Is(err, sql.ErrNoRows) {
//	        // handle not found
//	    } else {
//	        // handle other errors
//	    }
//	}
//	// use n
func Get[T any](ctx context.Context, q Querier, typ *Type[T], query string, args ...any) (T, error) {
	return UniqueResult(ctx, SQL(q, query, args...), typ)
}
