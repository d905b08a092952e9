//go:build windows

package procinspect

import (
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ConsoleWriter returns a writer capable of interpreting ANSI escape codes
// on the Windows console, falling back to a colorable wrapper when the
// console doesn't natively support virtual terminal sequences. The isatty
// check up front gates the color/ConEmu/virtual-terminal decisions on stdout
// actually being a console rather than a redirected file.
func ConsoleWriter() io.Writer {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return os.Stdout
	}

	if strings.ToLower(os.Getenv("ConEmuANSI")) == "on" {
		return os.Stdout
	}

	const enableVirtualTerminalProcessing = 0x0004

	h, err := syscall.GetStdHandle(syscall.STD_OUTPUT_HANDLE)
	if err != nil {
		return os.Stdout
	}
	var mode uint32
	if err := syscall.GetConsoleMode(h, &mode); err != nil {
		return os.Stdout
	}
	if mode&enableVirtualTerminalProcessing != 0 {
		return os.Stdout
	}
	return colorable.NewColorableStdout()
}
