package sysutil

import (
	"io"
	"os"
	"os/exec"
	"runtime"
)

// clearSequence moves the cursor home and erases the screen on ANSI
// terminals.
const clearSequence = "\033[H\033[2J"

// ClearTerminal clears the terminal screen behind out. Windows consoles use
// cls; everything else gets the ANSI sequence.
func ClearTerminal(out io.Writer) {
	if runtime.GOOS == "windows" {
		cmd := exec.Command("cmd", "/c", "cls")
		cmd.Stdout = os.Stdout
		_ = cmd.Run()
		return
	}

	_, _ = io.WriteString(out, clearSequence)
}
