package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
	"github.com/nsqlite/sqlitehandle/internal/sqlitehandle"
	"github.com/nsqlite/sqlitehandle/internal/util/sysutil"
	"github.com/peterh/liner"
)

// Repl is an interactive shell over a single Connection Handle. The
// statements it prepares are owned by the shell and closed on Shutdown.
type Repl struct {
	ctx         context.Context
	conn        *sqlitehandle.Conn
	out         io.Writer
	statements  map[uuid.UUID]*sqlitehandle.Stmt
	historyPath string
}

func NewRepl(ctx context.Context, conn *sqlitehandle.Conn, out io.Writer) *Repl {
	return &Repl{
		ctx:         ctx,
		conn:        conn,
		out:         out,
		statements:  make(map[uuid.UUID]*sqlitehandle.Stmt),
		historyPath: filepath.Join(os.TempDir(), ".sqlexec_history"),
	}
}

// Start runs the prompt loop until the user quits or ctx is done.
func (r *Repl) Start() error {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Connected to %s (%s)\n", r.conn.Filename(), r.conn.Flags())
	fmt.Fprintln(r.out, `Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Fprintln(r.out)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(r.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}
	defer func() {
		if file, err := os.Create(r.historyPath); err == nil {
			_, _ = line.WriteHistory(file)
			file.Close()
		}
	}()

	for {
		select {
		case <-r.ctx.Done():
			return nil
		default:
		}

		input, err := line.Prompt("sqlexec> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "exiting...")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := r.Handle(input); quit {
			return nil
		}
	}
}

// Handle runs one line of input and reports whether the shell should quit.
func (r *Repl) Handle(input string) bool {
	cmd, rest := splitCommand(input)

	switch cmd {
	case "exit", ".exit", ".quit":
		return true
	case "clear", ".clear":
		sysutil.ClearTerminal(r.out)
	case "help", ".help":
		cmdHelp(r)
	case ".tables":
		cmdQuery(r, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	case ".query":
		if rest == "" {
			r.printError(errors.New("usage: .query SQL"))
			break
		}
		cmdQuery(r, rest)
	case ".prepare":
		cmdPrepare(r, rest)
	case ".run":
		cmdRun(r, rest)
	case ".close":
		cmdClose(r, rest)
	case ".statements":
		cmdStatements(r)
	default:
		if strings.HasPrefix(input, ".") {
			fmt.Fprintln(r.out, "Unknown command, type .help for usage hints")
			break
		}
		cmdExec(r, input)
	}

	return false
}

// Shutdown closes every statement prepared from the shell, so the
// Connection Handle can be released with an empty registry.
func (r *Repl) Shutdown() {
	for id, stmt := range r.statements {
		if err := stmt.Close(); err != nil {
			r.printError(err)
		}
		delete(r.statements, id)
	}
}

// findStatement returns the statement whose ID starts with prefix.
func (r *Repl) findStatement(prefix string) (*sqlitehandle.Stmt, error) {
	if prefix == "" {
		return nil, errors.New("a statement ID is required, see .statements")
	}

	var found *sqlitehandle.Stmt
	for id, stmt := range r.statements {
		if !strings.HasPrefix(id.String(), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("statement ID %q is ambiguous", prefix)
		}
		found = stmt
	}

	if found == nil {
		return nil, fmt.Errorf("no statement with ID %q", prefix)
	}
	return found, nil
}

func (r *Repl) printError(err error) {
	_, _ = styled.ErrorColor().Fprintln(r.out, err.Error())
}

// splitCommand splits a dot command from its argument text. Plain SQL is
// returned whole as the command.
func splitCommand(input string) (string, string) {
	if !strings.HasPrefix(input, ".") {
		return strings.ToLower(input), ""
	}

	cmd, rest, _ := strings.Cut(input, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}
