package repl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
)

type dotCmd struct {
	name         string
	autocomplete string
	help         string
	args         string
}

func cmdHelpCommands() []dotCmd {
	cmds := []dotCmd{
		{name: ".query [sql]", autocomplete: ".query", help: "Prepare, run and close a statement, printing its rows", args: "sql (required)"},
		{name: ".prepare [sql]", autocomplete: ".prepare", help: "Prepare a statement and keep it registered", args: "sql (required)"},
		{name: ".run [id] [args...]", autocomplete: ".run", help: "Run a prepared statement", args: "id prefix (required), positional args (optional)"},
		{name: ".close [id]", autocomplete: ".close", help: "Close a prepared statement", args: "id prefix (required)"},

		{name: ".statements", autocomplete: ".statements", help: "List the statements registered on the connection"},
		{name: ".tables", autocomplete: ".tables", help: "List all tables in the database"},
		{name: ".clear", autocomplete: ".clear", help: "Clear the terminal screen"},
		{name: ".help", autocomplete: ".help", help: "Show the help message"},
		{name: ".quit", autocomplete: ".quit", help: "Exit the application"},
		{name: ".exit", autocomplete: ".exit", help: "Exit the application"},
		{name: "CTRL+c", help: "Exit the application"},
	}

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].name < cmds[j].name
	})

	return cmds
}

func cmdHelp(r *Repl) {
	fmt.Fprintln(r.out, "Anything that is not a dot command is executed as raw SQL.")
	fmt.Fprintln(r.out, "Available commands:")

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Command", "Description", "Arguments"})

	for _, cmd := range cmdHelpCommands() {
		tw.AppendRow(table.Row{cmd.name, cmd.help, cmd.args})
	}

	fmt.Fprintln(r.out, tw.Render())
}

func cmdHelpCompleter(line string) []string {
	suggestions := []string{
		"SELECT ",
		"SELECT * FROM ",
		"SELECT COUNT(*) FROM ",
		"INSERT INTO ",
		"UPDATE",
		"DELETE FROM ",
		"CREATE TABLE ",
		"DROP TABLE ",
		"ALTER TABLE ",
		"PRAGMA ",
		"BEGIN;",
		"COMMIT;",
		"ROLLBACK;",
	}

	for _, cmd := range cmdHelpCommands() {
		if cmd.autocomplete != "" {
			suggestions = append(suggestions, cmd.autocomplete)
		}
	}

	results := []string{}
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(line)) {
			results = append(results, suggestion)
		}
	}

	return results
}
