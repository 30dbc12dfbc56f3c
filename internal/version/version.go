package version

import (
	"github.com/fatih/color"
	"github.com/mattn/go-sqlite3"
)

const Version = "v0.1.0"

// EngineVersion returns the version of the SQLite library linked in.
func EngineVersion() string {
	libVersion, _, _ := sqlite3.Version()
	return libVersion
}

// CLIVersion returns the version banner of sqlexec.
func CLIVersion() string {
	return color.New(color.FgCyan, color.Bold).Sprintf(
		"sqlexec %s (SQLite %s)", Version, EngineVersion(),
	)
}
