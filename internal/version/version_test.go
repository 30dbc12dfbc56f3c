package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCLIVersion(t *testing.T) {
	color.NoColor = true

	assert.NotEmpty(t, EngineVersion())
	assert.Equal(t, "sqlexec "+Version+" (SQLite "+EngineVersion()+")", CLIVersion())
}
