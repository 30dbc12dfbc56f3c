package sqlexec

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqlite/sqlitehandle/internal/log"
	"github.com/nsqlite/sqlitehandle/internal/pooler"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/config"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/repl"
	"github.com/nsqlite/sqlitehandle/internal/sqlexec/script"
	"github.com/nsqlite/sqlitehandle/internal/sqlitehandle"
	"github.com/nsqlite/sqlitehandle/internal/version"
)

// Run runs the sqlexec CLI.
func Run(ctx context.Context) error {
	conf := config.MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelWarn
	if conf.Verbose {
		level = slog.LevelDebug
	}
	logger := log.NewLoggerWithLevel(os.Stderr, level)

	opts := []sqlitehandle.Option{
		sqlitehandle.WithLogger(logger),
		sqlitehandle.WithPostOpenQueries(conf.Init...),
	}

	if len(conf.Scripts) > 0 {
		return runScripts(ctx, conf, logger, opts)
	}
	return runRepl(ctx, conf, opts)
}

// runScripts executes the configured script files and prints a summary.
func runScripts(
	ctx context.Context, conf config.Config, logger log.Logger, opts []sqlitehandle.Option,
) error {
	pool, err := pooler.NewPool(pooler.Config{
		Location:   conf.Location,
		Flags:      conf.Flags,
		Options:    opts,
		MaxHandles: conf.Parallel,
		MaxIdle:    conf.Parallel,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("error creating handle pool: %w", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Error("error closing handle pool", log.KV{"error": err.Error()})
		}
	}()

	runner, err := script.NewRunner(script.Config{
		Pool:     pool,
		Logger:   logger,
		Parallel: conf.Parallel,
		Progress: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("error creating script runner: %w", err)
	}

	outcomes := runner.Run(ctx, conf.Scripts)
	fmt.Println(script.RenderSummary(outcomes))

	if failed := script.Failed(outcomes); failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", failed, len(outcomes))
	}
	return nil
}

// runRepl opens a single handle and starts the interactive shell on it.
func runRepl(ctx context.Context, conf config.Config, opts []sqlitehandle.Option) error {
	fmt.Println(version.CLIVersion())

	conn, err := sqlitehandle.Open(conf.Location, conf.Flags, opts...)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer conn.Release()

	rp := repl.NewRepl(ctx, conn, os.Stdout)
	defer rp.Shutdown()

	if err := rp.Start(); err != nil {
		return err
	}

	fmt.Printf("\nGoodbye!\n\n")
	return nil
}
