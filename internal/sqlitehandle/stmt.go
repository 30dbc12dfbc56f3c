package sqlitehandle

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Stmt is a prepared statement bound to the Conn that created it. It
// registers itself on Prepare and unregisters itself on Close.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	id    uuid.UUID
	conn  *Conn
	query string
	raw   *sqlite3.SQLiteStmt
}

// Result is the outcome of Stmt.Run. Statements with result columns fill
// Columns, Types and Rows; statements that write fill LastInsertID and
// RowsAffected. A write with RETURNING fills both.
type Result struct {
	Time         time.Duration
	LastInsertID int64
	RowsAffected int64
	Columns      []string
	Types        []string
	Rows         [][]any
}

// Prepare compiles the first statement of query.
//
// https://www.sqlite.org/c3ref/prepare.html
func (conn *Conn) Prepare(query string) (*Stmt, error) {
	if conn.raw == nil {
		return nil, ErrClosed
	}
	if strings.TrimSpace(query) == "" {
		return nil, errEmptyQuery
	}

	drvStmt, err := conn.raw.Prepare(query)
	if err := checkResult(err); err != nil {
		return nil, err
	}

	stmt := &Stmt{
		id:    uuid.New(),
		conn:  conn,
		query: query,
		raw:   drvStmt.(*sqlite3.SQLiteStmt),
	}
	conn.RegisterStatement(stmt)

	return stmt, nil
}

// ID returns the identity the statement is registered under.
func (stmt *Stmt) ID() uuid.UUID {
	return stmt.id
}

// Query returns the SQL text the statement was prepared from.
func (stmt *Stmt) Query() string {
	return stmt.query
}

// ReadOnly returns true if the statement makes no direct changes to the
// database.
//
// https://www.sqlite.org/c3ref/stmt_readonly.html
func (stmt *Stmt) ReadOnly() bool {
	if stmt.raw == nil {
		return false
	}
	return stmt.raw.Readonly()
}

// Run binds args by position and runs the statement to completion.
func (stmt *Stmt) Run(args ...any) (*Result, error) {
	if stmt.raw == nil {
		return nil, errStmtClosed
	}
	if stmt.conn.raw == nil {
		return nil, ErrClosed
	}

	start := time.Now()
	ctx := context.Background()

	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		value, err := driver.DefaultParameterConverter.ConvertValue(arg)
		if err != nil {
			return nil, checkResult(err)
		}
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: value}
	}

	rows, err := stmt.raw.QueryContext(ctx, named)
	if err := checkResult(err); err != nil {
		return nil, err
	}

	// Statements without result columns are stepped through the exec path,
	// anything with columns (including DML with RETURNING) is read as rows.
	columns := rows.Columns()
	if len(columns) == 0 {
		if err := checkResult(rows.Close()); err != nil {
			return nil, err
		}

		res, err := stmt.raw.ExecContext(ctx, named)
		if err := checkResult(err); err != nil {
			return nil, err
		}
		lastInsertID, err := res.LastInsertId()
		if err := checkResult(err); err != nil {
			return nil, err
		}
		rowsAffected, err := res.RowsAffected()
		if err := checkResult(err); err != nil {
			return nil, err
		}
		return &Result{
			Time:         time.Since(start),
			LastInsertID: lastInsertID,
			RowsAffected: rowsAffected,
		}, nil
	}

	result := &Result{
		Columns: columns,
		Rows:    [][]any{},
	}
	if sqliteRows, ok := rows.(*sqlite3.SQLiteRows); ok {
		result.Types = sqliteRows.DeclTypes()
	}

	for {
		dest := make([]driver.Value, len(columns))
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rows.Close()
			return nil, checkResult(err)
		}

		row := make([]any, len(dest))
		for i, value := range dest {
			row[i] = value
		}
		result.Rows = append(result.Rows, row)
	}
	if err := checkResult(rows.Close()); err != nil {
		return nil, err
	}

	if !stmt.raw.Readonly() {
		changes, lastInsertID, err := stmt.conn.counters(ctx)
		if err != nil {
			return nil, err
		}
		result.RowsAffected = changes
		result.LastInsertID = lastInsertID
	}

	result.Time = time.Since(start)
	return result, nil
}

// Close unregisters the statement and frees its engine resources. Calling
// it again is a no-op.
//
// https://www.sqlite.org/c3ref/finalize.html
func (stmt *Stmt) Close() error {
	if stmt.raw == nil {
		return nil
	}

	stmt.conn.UnregisterStatement(stmt)
	err := stmt.raw.Close()
	stmt.raw = nil

	return checkResult(err)
}
