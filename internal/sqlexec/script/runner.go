// Package script runs SQL script files through Connection Handles taken
// from a pool, one handle per worker.
package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitehandle/internal/log"
	"github.com/nsqlite/sqlitehandle/internal/pooler"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/styled"
	"github.com/nsqlite/sqlitehandle/internal/util/numutil"
)

const logNamespace = "script"

// Outcome is the result of running one script file.
type Outcome struct {
	File        string
	RowsChanged int64
	Duration    time.Duration
	Err         error
}

// Config represents the configuration for NewRunner.
type Config struct {
	Pool     *pooler.Pool
	Logger   log.Logger
	Parallel int
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
}

// Runner executes script files with ExecRaw.
type Runner struct {
	pool     *pooler.Pool
	logger   log.Logger
	parallel int
	progress io.Writer
}

// NewRunner creates a new Runner.
func NewRunner(config Config) (*Runner, error) {
	if config.Pool == nil {
		return nil, fmt.Errorf("pool must not be nil")
	}
	if config.Parallel < 1 {
		config.Parallel = 1
	}

	return &Runner{
		pool:     config.Pool,
		logger:   config.Logger,
		parallel: config.Parallel,
		progress: config.Progress,
	}, nil
}

// Run executes every file and returns one Outcome per file, in the same
// order. Files not started when ctx is done get ctx.Err() as their error.
func (r *Runner) Run(ctx context.Context, files []string) []Outcome {
	outcomes := make([]Outcome, len(files))
	bar := newProgressBar(r.progress, len(files))
	defer bar.Finish()

	jobs := make(chan int)
	var wg sync.WaitGroup
	var barMu sync.Mutex

	for i := 0; i < r.parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = r.runFile(ctx, files[idx])

				barMu.Lock()
				bar.Inc()
				barMu.Unlock()
			}
		}()
	}

	for idx := range files {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// runFile executes a single script on its own handle.
func (r *Runner) runFile(ctx context.Context, file string) (outcome Outcome) {
	outcome.File = file
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	start := time.Now()
	defer func() {
		outcome.Duration = time.Since(start)
	}()

	content, err := os.ReadFile(file)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to read script: %w", err)
		return outcome
	}

	conn, err := r.pool.Get()
	if err != nil {
		outcome.Err = fmt.Errorf("failed to get database handle: %w", err)
		return outcome
	}
	defer func() {
		if err := r.pool.Put(conn); err != nil {
			r.logger.ErrorNs(logNamespace, "failed to return database handle", log.KV{"error": err.Error()})
		}
	}()

	outcome.RowsChanged, outcome.Err = conn.ExecRaw(string(content))
	if outcome.Err != nil {
		r.logger.WarnNs(logNamespace, "script failed", log.KV{
			"file":  file,
			"error": outcome.Err.Error(),
		})
	} else {
		r.logger.DebugNs(logNamespace, "script executed", log.KV{
			"file":         file,
			"rows_changed": outcome.RowsChanged,
		})
	}

	return outcome
}

// Failed returns how many outcomes carry an error.
func Failed(outcomes []Outcome) int {
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}

// RenderSummary renders outcomes as a table.
func RenderSummary(outcomes []Outcome) string {
	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Script", "Rows Changed", "Time", "Error"})

	for _, outcome := range outcomes {
		errText := ""
		if outcome.Err != nil {
			errText = styled.ErrorColor().Sprint(outcome.Err.Error())
		}
		tw.AppendRow(table.Row{
			outcome.File,
			numutil.IntWithCommas(outcome.RowsChanged),
			outcome.Duration.Round(time.Microsecond).String(),
			errText,
		})
	}

	tw.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d scripts", len(outcomes)),
		"",
		fmt.Sprintf("%d failed", Failed(outcomes)),
	})

	return tw.Render()
}
