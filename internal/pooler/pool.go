// Package pooler hands out Connection Handles so that concurrent callers
// never share one. Each handle is owned by a single caller between Get and
// Put.
package pooler

import (
	"errors"
	"sync"

	"github.com/nsqlite/sqlitehandle/internal/log"
	"github.com/nsqlite/sqlitehandle/internal/sqlitehandle"
)

const logNamespace = "pooler"

type Config struct {
	// Location is the database every handle is opened against.
	Location string
	// Flags are the open flags for every handle.
	Flags sqlitehandle.OpenFlags
	// Options are passed to sqlitehandle.Open for every handle.
	Options []sqlitehandle.Option
	// MaxHandles is the maximum number of handles open at once.
	// Must be greater than zero.
	MaxHandles int
	// MaxIdle is the maximum number of handles kept open while unused.
	// Must be greater than or equal to zero.
	// Must not exceed MaxHandles.
	MaxIdle int
	// Logger receives pool diagnostics. Defaults to discarding them.
	Logger log.Logger
}

// Pool is a thread-safe pool of *sqlitehandle.Conn. It never opens more
// than MaxHandles handles; Get blocks when they are all checked out.
type Pool struct {
	Config

	mu     sync.Mutex
	cond   *sync.Cond
	closed bool

	totalHandles int
	idleHandles  []*sqlitehandle.Conn
}

// NewPool validates config and creates an empty Pool. Handles are opened
// lazily by Get.
func NewPool(config Config) (*Pool, error) {
	if config.MaxHandles <= 0 {
		return nil, errors.New("maxHandles must be greater than zero")
	}
	if config.MaxIdle < 0 {
		return nil, errors.New("maxIdle cannot be negative")
	}
	if config.MaxIdle > config.MaxHandles {
		return nil, errors.New("maxIdle cannot exceed maxHandles")
	}
	if config.Location == "" {
		return nil, errors.New("location must not be empty")
	}
	if config.Logger == (log.Logger{}) {
		config.Logger = log.NewNopLogger()
	}

	p := &Pool{
		Config:      config,
		idleHandles: make([]*sqlitehandle.Conn, 0, config.MaxIdle),
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Get returns an idle handle or opens a new one. If the pool is closed, an
// error is returned. If MaxHandles are checked out, Get blocks until one
// is Put back.
func (p *Pool) Get() (*sqlitehandle.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return nil, errors.New("pool is closed")
		}

		if len(p.idleHandles) > 0 {
			idx := len(p.idleHandles) - 1
			conn := p.idleHandles[idx]
			p.idleHandles = p.idleHandles[:idx]
			return conn, nil
		}

		if p.totalHandles < p.MaxHandles {
			conn, err := sqlitehandle.Open(p.Location, p.Flags, p.Options...)
			if err != nil {
				return nil, err
			}
			p.totalHandles++
			return conn, nil
		}

		p.cond.Wait()
	}
}

// Put gives a handle back. It is closed instead of kept when the pool is
// closed, when MaxIdle handles are already idle, or when it still has
// registered statements. A handle the caller already closed only frees its
// slot.
func (p *Pool) Put(conn *sqlitehandle.Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return conn.Close()
	}

	if conn.Raw() == nil {
		p.Logger.DebugNs(logNamespace, "dropping closed handle", log.KV{
			"filename": conn.Filename(),
		})
		p.totalHandles--
		p.cond.Signal()
		return nil
	}

	if conn.StatementCount() == 0 && len(p.idleHandles) < p.MaxIdle {
		p.idleHandles = append(p.idleHandles, conn)
		p.cond.Signal()
		return nil
	}

	if conn.StatementCount() > 0 {
		p.Logger.WarnNs(logNamespace, "discarding handle with registered statements", log.KV{
			"filename":   conn.Filename(),
			"statements": conn.StatementCount(),
		})
	}

	p.totalHandles--
	p.cond.Signal()
	return conn.Close()
}

// Close closes the pool and all idle handles. Any subsequent call to Get
// fails. Handles that are checked out are closed when Put back.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	for _, conn := range p.idleHandles {
		if e := conn.Close(); e != nil && err == nil {
			err = e
		}
	}
	p.idleHandles = nil
	p.cond.Broadcast()
	return err
}
