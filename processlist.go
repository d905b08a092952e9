//go:build windows

package procinspect

import (
	"fmt"
	"io"
	"strings"
	"unsafe"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/windows"
)

// ProcessInfo is one row of the `lp` listing: the toolhelp32 snapshot fields
// (pid, parent pid, thread count, image name), enriched with the priority
// class gopsutil resolves more conveniently than a second OpenProcess/
// GetPriorityClass round trip per process.
type ProcessInfo struct {
	PID           uint32
	ParentPID     uint32
	ThreadCount   uint32
	Name          string
	PriorityClass int32
}

// ListProcesses enumerates every process on the host: a toolhelp32 snapshot
// walk for pid, parent pid, and thread count, with the priority-class lookup
// delegated to gopsutil/v3/process instead of a second raw
// OpenProcess/GetPriorityClass call per entry.
func ListProcesses() ([]ProcessInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("list processes: create snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var pe32 windows.ProcessEntry32
	pe32.Size = uint32(unsafe.Sizeof(pe32))

	if err := windows.Process32First(snapshot, &pe32); err != nil {
		return nil, fmt.Errorf("list processes: Process32First: %w", err)
	}

	var infos []ProcessInfo
	for {
		info := ProcessInfo{
			PID:         pe32.ProcessID,
			ParentPID:   pe32.ParentProcessID,
			ThreadCount: pe32.Threads,
			Name:        windows.UTF16ToString(pe32.ExeFile[:]),
		}

		if p, err := gopsprocess.NewProcess(int32(pe32.ProcessID)); err == nil {
			// gopsutil reports "nice" on Windows as the priority class;
			// a lookup failure (permission denied, process exited) just
			// leaves PriorityClass at zero, matching the original's
			// behavior of printing 0 when GetPriorityClass fails.
			if nice, err := p.Nice(); err == nil {
				info.PriorityClass = nice
			}
		}

		infos = append(infos, info)

		if err := windows.Process32Next(snapshot, &pe32); err != nil {
			break
		}
	}

	return infos, nil
}

// FindProcessesByName returns every running process whose image name
// matches name case-insensitively, built on top of ListProcesses rather
// than running its own snapshot walk.
func FindProcessesByName(name string) ([]uint32, error) {
	infos, err := ListProcesses()
	if err != nil {
		return nil, err
	}

	var pids []uint32
	for _, info := range infos {
		if strings.EqualFold(info.Name, name) {
			pids = append(pids, info.PID)
		}
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("process not found: %s", name)
	}
	return pids, nil
}

// WriteProcessList renders the `lp` listing in the tool's console style.
func WriteProcessList(w io.Writer, infos []ProcessInfo) {
	for _, info := range infos {
		fmt.Fprintf(w, "\nPROCESS NAME:  %s\n", info.Name)
		fmt.Fprintf(w, "  Process ID        = 0x%08X\n", info.PID)
		fmt.Fprintf(w, "  Thread count      = %d\n", info.ThreadCount)
		fmt.Fprintf(w, "  Parent process ID = 0x%08X\n", info.ParentPID)
		fmt.Fprintf(w, "  Priority class    = %d\n", info.PriorityClass)
	}
}
