package sqlitehandle

import (
	"fmt"
	"strings"

	"github.com/orsinium-labs/enum"
)

// OpenFlags is a bitset of SQLite open flags. The values match the engine's
// SQLITE_OPEN_* constants.
//
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int

const (
	OpenReadOnly     OpenFlags = 0x00000001
	OpenReadWrite    OpenFlags = 0x00000002
	OpenCreate       OpenFlags = 0x00000004
	OpenURI          OpenFlags = 0x00000040
	OpenMemory       OpenFlags = 0x00000080
	OpenNoMutex      OpenFlags = 0x00008000
	OpenFullMutex    OpenFlags = 0x00010000
	OpenSharedCache  OpenFlags = 0x00020000
	OpenPrivateCache OpenFlags = 0x00040000
)

var openFlagNames = []struct {
	flag OpenFlags
	name string
}{
	{OpenReadOnly, "READONLY"},
	{OpenReadWrite, "READWRITE"},
	{OpenCreate, "CREATE"},
	{OpenURI, "URI"},
	{OpenMemory, "MEMORY"},
	{OpenNoMutex, "NOMUTEX"},
	{OpenFullMutex, "FULLMUTEX"},
	{OpenSharedCache, "SHAREDCACHE"},
	{OpenPrivateCache, "PRIVATECACHE"},
}

// Has reports whether every bit of flag is set in f.
func (f OpenFlags) Has(flag OpenFlags) bool {
	return f&flag == flag
}

// String renders the flags as NAME|NAME, with unknown bits in hex.
func (f OpenFlags) String() string {
	if f == 0 {
		return "0"
	}

	names := []string{}
	rest := f
	for _, fn := range openFlagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", int(rest)))
	}

	return strings.Join(names, "|")
}

// Validate checks that f is a combination the engine accepts.
func (f OpenFlags) Validate() error {
	known := OpenFlags(0)
	for _, fn := range openFlagNames {
		known |= fn.flag
	}

	switch {
	case f&^known != 0:
		return &EngineError{Message: fmt.Sprintf("invalid open flags: unknown bits 0x%x", int(f&^known))}
	case f.Has(OpenReadOnly) && f.Has(OpenReadWrite):
		return &EngineError{Message: "invalid open flags: READONLY and READWRITE are mutually exclusive"}
	case !f.Has(OpenReadOnly) && !f.Has(OpenReadWrite):
		return &EngineError{Message: "invalid open flags: one of READONLY or READWRITE is required"}
	case f.Has(OpenCreate) && !f.Has(OpenReadWrite):
		return &EngineError{Message: "invalid open flags: CREATE requires READWRITE"}
	case f.Has(OpenNoMutex) && f.Has(OpenFullMutex):
		return &EngineError{Message: "invalid open flags: NOMUTEX and FULLMUTEX are mutually exclusive"}
	case f.Has(OpenSharedCache) && f.Has(OpenPrivateCache):
		return &EngineError{Message: "invalid open flags: SHAREDCACHE and PRIVATECACHE are mutually exclusive"}
	}

	return nil
}

// Mode is the value of the "mode" URI parameter.
//
// https://www.sqlite.org/uri.html#urimode
type Mode = enum.Member[string]

var (
	ModeReadOnly        = Mode{Value: "ro"}
	ModeReadWrite       = Mode{Value: "rw"}
	ModeReadWriteCreate = Mode{Value: "rwc"}
	ModeMemory          = Mode{Value: "memory"}

	Modes = enum.New(ModeReadOnly, ModeReadWrite, ModeReadWriteCreate, ModeMemory)
)

// Mode returns the URI mode that corresponds to f.
func (f OpenFlags) Mode() Mode {
	switch {
	case f.Has(OpenMemory):
		return ModeMemory
	case f.Has(OpenReadWrite | OpenCreate):
		return ModeReadWriteCreate
	case f.Has(OpenReadWrite):
		return ModeReadWrite
	default:
		return ModeReadOnly
	}
}

// ParseMode returns the open flags for a mode name (ro, rw, rwc, memory).
func ParseMode(value string) (OpenFlags, error) {
	mode := Modes.Parse(strings.ToLower(strings.TrimSpace(value)))
	if mode == nil {
		return 0, fmt.Errorf(
			"invalid mode %q, valid values are: %s",
			value, strings.Join(Modes.Values(), ", "),
		)
	}

	switch *mode {
	case ModeReadWrite:
		return OpenReadWrite, nil
	case ModeReadWriteCreate:
		return OpenReadWrite | OpenCreate, nil
	case ModeMemory:
		return OpenReadWrite | OpenCreate | OpenMemory, nil
	default:
		return OpenReadOnly, nil
	}
}
