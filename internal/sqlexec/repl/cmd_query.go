package repl

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
	"github.com/nsqlite/sqlitehandle/internal/sqlitehandle"
)

// cmdQuery prepares query, runs it once and closes it.
func cmdQuery(r *Repl, query string) {
	stmt, err := r.conn.Prepare(query)
	if err != nil {
		r.printError(err)
		return
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.printError(err)
		}
	}()

	res, err := stmt.Run()
	if err != nil {
		r.printError(err)
		return
	}
	printResult(r, res)
}

func printResult(r *Repl, res *sqlitehandle.Result) {
	tw := styled.NewTableWriter()

	if len(res.Columns) == 0 {
		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{"OK", res.RowsAffected, res.LastInsertID})
		fmt.Fprintln(r.out, tw.Render())
		return
	}

	header := table.Row{}
	for _, col := range res.Columns {
		header = append(header, col)
	}
	tw.AppendHeader(header)

	for _, values := range res.Rows {
		row := table.Row{}
		for _, value := range values {
			row = append(row, formatValue(value))
		}
		tw.AppendRow(row)
	}

	fmt.Fprintln(r.out, tw.Render())
	_, _ = styled.DimmedColor().Fprintf(r.out, "%d rows in %s\n", len(res.Rows), res.Time)
}

// formatValue renders a column value for display.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%X'", v)
	case string:
		return strings.ReplaceAll(v, "\n", " ")
	default:
		return fmt.Sprint(v)
	}
}
