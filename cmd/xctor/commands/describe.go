package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-mizu/xctor"
	"github.com/go-mizu/xctor/internal/config"

	// Drivers the CLI can open.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func newDescribeCommand(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "describe [query]",
		Short: "Show the column types and constructor signature of a query result",
		Example: `  xctor describe "SELECT id, name FROM users"
  xctor describe --file report.sql --driver postgres --dsn postgres://localhost/app`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args, file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			return describe(ctx, cmd.OutOrStdout(), e, query)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the query from a file")
	return cmd
}

func readQuery(args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass the query as an argument or with --file, not both")
	case file != "":
		b, err := afero.ReadFile(config.AppFs, file)
		if err != nil {
			return "", errors.Wrap(err, "reading query file")
		}
		q := strings.TrimSpace(string(b))
		if q == "" {
			return "", errors.Errorf("query file %s is empty", file)
		}
		return q, nil
	case len(args) == 1 && strings.TrimSpace(args[0]) != "":
		return args[0], nil
	default:
		return "", errors.New("no query given")
	}
}

func describe(ctx context.Context, w io.Writer, e *env, query string) error {
	db, err := sql.Open(e.cfg.Driver, e.cfg.DSN)
	if err != nil {
		return errors.Wrapf(err, "opening %s database", e.cfg.Driver)
	}
	defer db.Close()

	start := time.Now()
	raw, err := xctor.SQL(db, query).ResultList(ctx)
	if err != nil {
		return errors.Wrap(err, "running query")
	}
	e.log.WithField("rows", len(raw)).WithField("elapsed", time.Since(start)).Debug("query done")

	tuples := xctor.Normalize(raw)
	if len(tuples) == 0 {
		fmt.Fprintln(w, color.YellowString("no rows"))
		return nil
	}
	first := tuples[0]

	// Map the rows through a constructor of the observed arity so the
	// output reflects exactly what the mapper accepts.
	typ, err := rowType(len(first))
	if err != nil {
		return err
	}
	rows, err := xctor.List(ctx, xctor.Rows(raw...), typ, xctor.WithLogger(e.log))
	if err != nil {
		return errors.Wrap(err, "mapping rows")
	}

	bold := color.New(color.Bold)
	bold.Fprintln(w, "Columns")
	table := pterm.TableData{{"#", "GO TYPE", "PRIMITIVE"}}
	for i, v := range first {
		goType, prim := "NULL", "any"
		if v != nil {
			t := reflect.TypeOf(v)
			goType, prim = t.String(), xctor.Unbox(t).String()
		}
		table = append(table, []string{strconv.Itoa(i + 1), goType, prim})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(table).Render(); err != nil {
		return errors.Wrap(err, "rendering columns")
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Constructor")
	fmt.Fprintf(w, "  %s\n", color.CyanString(xctor.Signature(first)))

	fmt.Fprintln(w)
	bold.Fprintf(w, "Rows (%d)\n", len(rows))
	limit := len(rows)
	if e.cfg.MaxRows < limit {
		limit = e.cfg.MaxRows
	}
	for _, r := range rows[:limit] {
		fmt.Fprintf(w, "  %s\n", r)
	}
	if limit < len(rows) {
		fmt.Fprintln(w, color.HiBlackString("  ... %d more", len(rows)-limit))
	}
	return nil
}

// row is a mapped result row as shown by describe.
type row []any

func (r row) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = formatValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("%q", v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

var (
	anyType = reflect.TypeOf((*any)(nil)).Elem()
	rowOut  = reflect.TypeOf(row(nil))
)

// rowType returns a Type[row] whose only constructor takes arity values of
// any type.
func rowType(arity int) (*xctor.Type[row], error) {
	in := make([]reflect.Type, arity)
	for i := range in {
		in[i] = anyType
	}
	fn := reflect.MakeFunc(reflect.FuncOf(in, []reflect.Type{rowOut}, false), func(args []reflect.Value) []reflect.Value {
		r := make(row, len(args))
		for i, a := range args {
			r[i] = a.Interface()
		}
		return []reflect.Value{reflect.ValueOf(r)}
	})
	typ, err := xctor.NewType[row](fn.Interface())
	return typ, errors.Wrap(err, "building row constructor")
}
