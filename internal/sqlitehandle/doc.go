// Package sqlitehandle wraps a single native SQLite connection handle.
//
// A Conn owns exactly one engine handle from Open until Close. It keeps a
// non-owning registry of the statements prepared against it, runs raw SQL
// batches and turns every engine failure into an *EngineError.
//
// A Conn is meant to be used by one goroutine at a time. Nothing in this
// package locks; callers that need concurrency either serialize access
// themselves or take one Conn per goroutine (see the pooler package).
//
//   - https://www.sqlite.org/c3ref/open.html
//   - https://www.sqlite.org/c3ref/exec.html
package sqlitehandle
