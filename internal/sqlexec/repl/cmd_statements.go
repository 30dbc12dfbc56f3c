package repl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
)

// cmdPrepare prepares a statement and keeps it until .close or Shutdown.
func cmdPrepare(r *Repl, query string) {
	if query == "" {
		r.printError(errors.New("usage: .prepare SQL"))
		return
	}

	stmt, err := r.conn.Prepare(query)
	if err != nil {
		r.printError(err)
		return
	}
	r.statements[stmt.ID()] = stmt

	fmt.Fprintf(r.out, "Prepared statement %s\n", stmt.ID())
}

// cmdRun runs a prepared statement with positional text arguments.
func cmdRun(r *Repl, rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		r.printError(errors.New("usage: .run ID [args...]"))
		return
	}

	stmt, err := r.findStatement(fields[0])
	if err != nil {
		r.printError(err)
		return
	}

	args := make([]any, 0, len(fields)-1)
	for _, field := range fields[1:] {
		args = append(args, field)
	}

	res, err := stmt.Run(args...)
	if err != nil {
		r.printError(err)
		return
	}
	printResult(r, res)
}

// cmdClose closes a prepared statement.
func cmdClose(r *Repl, prefix string) {
	stmt, err := r.findStatement(prefix)
	if err != nil {
		r.printError(err)
		return
	}

	delete(r.statements, stmt.ID())
	if err := stmt.Close(); err != nil {
		r.printError(err)
		return
	}

	fmt.Fprintf(r.out, "Closed statement %s\n", stmt.ID())
}

// cmdStatements lists the connection's statement registry.
func cmdStatements(r *Repl) {
	infos := r.conn.Statements()
	if len(infos) == 0 {
		_, _ = styled.DimmedColor().Fprintln(r.out, "No registered statements")
		return
	}

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"ID", "Query"})
	for _, info := range infos {
		tw.AppendRow(table.Row{info.ID.String(), info.Query})
	}
	tw.AppendFooter(table.Row{"Total", len(infos)})

	fmt.Fprintln(r.out, tw.Render())
}
