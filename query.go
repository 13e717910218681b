package xctor

import (
	"context"
)

// Query executes the SQL query and maps every result row to a T through one
// of typ's constructors.
//
// It is shorthand for List(ctx, SQL(q, query, args...), typ). The
// constructor is resolved once, from the first row; all rows must have the
// same number of columns, which any relational query guarantees.
//
// Example:
//
//	// Given a *sql.DB (or *sql.Tx, *sql.Conn) in variable `db`:
//	type User struct {
//	    ID    int64
//	    Email string
//	}
//
//	userType := xctor.MustType[User](
//	    func(id int64, email string) User { return User{ID: id, Email: email} },
//	    func(id int64) User { return User{ID: id} },
//	)
//
//	ctx := context.Background()
//	users, err := xctor.Query(ctx, db, userType, `SELECT id, email FROM users ORDER BY id`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, u := range users {
//	    fmt.Println(u.ID, u.Email)
//	}
func Query[T any](ctx context.Context, q Querier, typ *Type[T], query string, args ...any) ([]T, error) {
	return List(ctx, SQL(q, query, args...), typ)
}
