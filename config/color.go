package config

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// ColorEnabled reports whether CLI output should use color: the
// -C/--disable-color flag always wins, and absent that we auto-detect by
// checking whether stdout is actually a terminal, the same check a shell
// prompt uses before emitting escape codes.
func (c *CLI) ColorEnabled() bool {
	if c.DisableColor {
		return false
	}
	return isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	if runtime.GOOS != "linux" {
		// Conservatively assume non-Linux hosts (e.g. CI runners) aren't
		// interactive terminals.
		return false
	}

	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}
