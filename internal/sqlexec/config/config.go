package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/sqlitehandle/internal/sqlitehandle"
	"github.com/nsqlite/sqlitehandle/internal/version"
)

// Config represents the configuration for sqlexec.
type Config struct {
	Location    string                 `arg:"positional,required" help:"Path or file: URI of the SQLite database"`
	Mode        string                 `arg:"--mode,env:SQLEXEC_MODE" help:"Access mode (ro, rw, rwc, memory)" default:"ro"`
	SharedCache bool                   `arg:"--shared-cache,env:SQLEXEC_SHARED_CACHE" help:"Open the database with a shared cache" default:"false"`
	NoMutex     bool                   `arg:"--no-mutex,env:SQLEXEC_NO_MUTEX" help:"Open every handle in multi-thread mode, without the per-connection mutex" default:"false"`
	Scripts     []string               `arg:"-s,--script,separate" help:"SQL script file to execute, can be repeated; without scripts an interactive shell is started"`
	Parallel    int                    `arg:"--parallel,env:SQLEXEC_PARALLEL" help:"Number of database handles used to run scripts concurrently" default:"1"`
	Init        []string               `arg:"--init,separate" help:"SQL executed right after every handle is opened, can be repeated"`
	Verbose     bool                   `arg:"-v,--verbose,env:SQLEXEC_VERBOSE" help:"Enable debug logs" default:"false"`
	Flags       sqlitehandle.OpenFlags `arg:"-"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.CLIVersion())
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	if err := validateParallel(cfg.Parallel); err != nil {
		log.Fatal(err)
	}

	cfg.Flags, err = resolveFlags(cfg.Mode, cfg.SharedCache, cfg.NoMutex, cfg.Parallel)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

// validateParallel validates if parallel is a usable number of handles.
func validateParallel(parallel int) error {
	if parallel < 1 {
		return errors.New("invalid parallel value, must be greater than zero")
	}
	return nil
}

// resolveFlags turns the access mode options into open flags. Every pooled
// handle on a private in-memory database sees its own empty database, so
// memory mode with more than one handle requires a shared cache.
func resolveFlags(mode string, sharedCache bool, noMutex bool, parallel int) (sqlitehandle.OpenFlags, error) {
	flags, err := sqlitehandle.ParseMode(mode)
	if err != nil {
		return 0, err
	}

	if flags.Has(sqlitehandle.OpenMemory) && parallel > 1 && !sharedCache {
		return 0, errors.New("memory mode with parallel greater than 1 requires --shared-cache")
	}

	if sharedCache {
		flags |= sqlitehandle.OpenSharedCache
	}
	if noMutex {
		flags |= sqlitehandle.OpenNoMutex
	}

	return flags, flags.Validate()
}
