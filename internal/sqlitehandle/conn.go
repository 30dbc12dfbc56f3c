package sqlitehandle

import (
	"context"
	"database/sql/driver"
	"slices"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/nsqlite/sqlitehandle/internal/log"
)

const logNamespace = "sqlitehandle"

// Statement is what a Conn needs to know about a statement registered
// against it. The Conn keeps only the identity and the query text, never the
// statement itself.
type Statement interface {
	ID() uuid.UUID
	Query() string
}

// StatementInfo is a registry entry.
type StatementInfo struct {
	ID    uuid.UUID
	Query string
}

// Conn represents one open connection to a SQLite database.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type Conn struct {
	raw        *sqlite3.SQLiteConn
	filename   string
	flags      OpenFlags
	statements []StatementInfo
	logger     log.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger          log.Logger
	postOpenQueries []string
}

// WithLogger sets the logger used for lifecycle and diagnostic messages.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPostOpenQueries sets queries to be executed right after the database
// is opened, e.g. PRAGMA statements.
func WithPostOpenQueries(queries ...string) Option {
	return func(o *options) {
		o.postOpenQueries = append(o.postOpenQueries, queries...)
	}
}

// Open opens the database at location with the given flags. Zero flags
// mean OpenReadOnly.
//
// location is a filesystem path or a file: URI. If the engine refuses to
// open it, no native handle is left behind and the returned *EngineError
// carries the engine message.
//
// https://www.sqlite.org/c3ref/open.html
func Open(location string, flags OpenFlags, opts ...Option) (*Conn, error) {
	o := options{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if flags == 0 {
		flags = OpenReadOnly
	}
	if err := flags.Validate(); err != nil {
		return nil, err
	}

	// The driver closes the native handle itself when opening fails.
	drvConn, err := (&sqlite3.SQLiteDriver{}).Open(buildDSN(location, flags))
	if err != nil {
		return nil, checkResult(err)
	}

	conn := &Conn{
		raw:      drvConn.(*sqlite3.SQLiteConn),
		filename: location,
		flags:    flags,
		logger:   o.logger,
	}

	for _, query := range o.postOpenQueries {
		if _, err := conn.ExecRaw(query); err != nil {
			conn.Release()
			return nil, err
		}
	}

	conn.logger.DebugNs(logNamespace, "database opened", log.KV{
		"filename": location,
		"flags":    flags.String(),
	})
	return conn, nil
}

// Filename returns the location the connection was opened with.
func (conn *Conn) Filename() string {
	return conn.filename
}

// Flags returns the flags the connection was opened with.
func (conn *Conn) Flags() OpenFlags {
	return conn.flags
}

// Raw returns the live engine handle, or nil after Close. It is meant for
// statement preparation; closing it directly breaks the Conn.
func (conn *Conn) Raw() *sqlite3.SQLiteConn {
	return conn.raw
}

// Close releases the engine handle. Statements still registered are logged
// and left as they are; finalizing them is up to their owners, which should
// close them before the Conn.
//
// Calling Close again after it succeeded is a no-op.
//
// https://www.sqlite.org/c3ref/close.html
func (conn *Conn) Close() error {
	if conn.raw == nil {
		return nil
	}

	// TODO: decide whether leftover statements should be finalized here or
	// whether closing them first stays the caller's job.
	for _, info := range conn.statements {
		conn.logger.WarnNs(logNamespace, "closing database with a registered statement", log.KV{
			"filename":     conn.filename,
			"statement_id": info.ID.String(),
			"query":        info.Query,
		})
	}

	if err := conn.raw.Close(); err != nil {
		return checkResult(err)
	}
	conn.raw = nil

	conn.logger.DebugNs(logNamespace, "database closed", log.KV{"filename": conn.filename})
	return nil
}

// Release closes the connection and swallows any error, logging it instead.
// It is the end-of-scope counterpart of Close:
//
//	conn, err := sqlitehandle.Open(path, sqlitehandle.OpenReadWrite)
//	if err != nil {
//		return err
//	}
//	defer conn.Release()
func (conn *Conn) Release() {
	if err := conn.Close(); err != nil {
		conn.logger.ErrorNs(logNamespace, "failed to close database", log.KV{
			"filename": conn.filename,
			"error":    err.Error(),
		})
	}
}

// RegisterStatement adds stmt to the registry. Registering the same
// statement twice creates two entries.
func (conn *Conn) RegisterStatement(stmt Statement) {
	conn.statements = append(conn.statements, StatementInfo{
		ID:    stmt.ID(),
		Query: stmt.Query(),
	})
}

// UnregisterStatement removes the first registry entry for stmt. It does
// nothing when stmt is not registered.
func (conn *Conn) UnregisterStatement(stmt Statement) {
	id := stmt.ID()
	idx := slices.IndexFunc(conn.statements, func(info StatementInfo) bool {
		return info.ID == id
	})
	if idx < 0 {
		return
	}
	conn.statements = slices.Delete(conn.statements, idx, idx+1)
}

// Statements returns a copy of the registry in registration order.
func (conn *Conn) Statements() []StatementInfo {
	return slices.Clone(conn.statements)
}

// StatementCount returns the number of registry entries.
func (conn *Conn) StatementCount() int {
	return len(conn.statements)
}

// ExecRaw runs one or more semicolon separated statements from start to
// finish, without returning any rows. Execution stops at the first failing
// statement; the ones before it stay applied.
//
// The returned count is the engine's changed-row count after the batch,
// i.e. the rows modified by the last INSERT, UPDATE or DELETE run on this
// connection.
//
// https://www.sqlite.org/c3ref/exec.html
// https://www.sqlite.org/c3ref/changes.html
func (conn *Conn) ExecRaw(query string) (int64, error) {
	if conn.raw == nil {
		return 0, ErrClosed
	}

	ctx := context.Background()
	if _, err := conn.raw.ExecContext(ctx, query, nil); err != nil {
		return 0, checkResult(err)
	}

	// The driver result only covers the last non-empty chunk of the batch,
	// so a trailing comment or ";;" would report zero.
	changes, _, err := conn.counters(ctx)
	if err != nil {
		return 0, err
	}
	return changes, nil
}

// counters reads the engine's changed-row count and last inserted rowid.
//
// https://www.sqlite.org/lang_corefunc.html#changes
// https://www.sqlite.org/lang_corefunc.html#last_insert_rowid
func (conn *Conn) counters(ctx context.Context) (changes int64, lastInsertID int64, err error) {
	rows, err := conn.raw.QueryContext(ctx, "SELECT changes(), last_insert_rowid()", nil)
	if err := checkResult(err); err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		return 0, 0, checkResult(err)
	}

	changes, _ = dest[0].(int64)
	lastInsertID, _ = dest[1].(int64)
	return changes, lastInsertID, nil
}
