//go:build !windows

package procinspect

import (
	"io"
	"os"
)

// ConsoleWriter on non-Windows hosts is plain stdout: this program's console
// color handling exists only to route around older Windows consoles lacking
// native ANSI support.
func ConsoleWriter() io.Writer {
	return os.Stdout
}
