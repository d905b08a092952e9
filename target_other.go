//go:build !windows

package procinspect

import "fmt"

// openTarget has no native implementation outside Windows; the process
// memory APIs this package wraps (VirtualQueryEx, ReadProcessMemory,
// toolhelp32 snapshots) don't exist on other platforms. Kept as a stub
// rather than omitted so the package and its fake-backed tests still build
// and run on any GOOS.
func openTarget(pid uint32) (TargetProcess, error) {
	return nil, fmt.Errorf("procinspect: not supported on this platform")
}
