package sqlitehandle

import "errors"

// EngineError is the only failure kind returned by this package. Message is
// the text reported by SQLite, captured when the failing call returned.
//
// When the failure came from the engine, errors.As can still reach the
// underlying sqlite3.Error through Unwrap.
type EngineError struct {
	Message string
	err     error
}

// Error returns the engine message.
func (e *EngineError) Error() string {
	return e.Message
}

// Unwrap returns the engine error this EngineError was built from, if any.
func (e *EngineError) Unwrap() error {
	return e.err
}

var (
	// ErrClosed is returned by every operation on a Conn after Close.
	ErrClosed = &EngineError{Message: "database connection is closed"}

	errStmtClosed = &EngineError{Message: "statement is closed"}
	errEmptyQuery = &EngineError{Message: "query is empty"}
)

// checkResult translates the outcome of an engine call. A nil err means
// SQLITE_OK and yields nil; any other value becomes an *EngineError.
func checkResult(err error) error {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr
	}

	return &EngineError{Message: err.Error(), err: err}
}
