package repl

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
)

// cmdExec runs input as a raw SQL batch.
func cmdExec(r *Repl, input string) {
	changes, err := r.conn.ExecRaw(input)
	if err != nil {
		r.printError(err)
		return
	}

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"-", "Rows Changed"})
	tw.AppendRow(table.Row{"OK", changes})
	fmt.Fprintln(r.out, tw.Render())
}
