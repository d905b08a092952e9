//go:build windows

package procinspect

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/windows"
)

const th32csSnapModule = 0x00000008

// moduleEntry32 mirrors MODULEENTRY32 from tlhelp32.h. x/sys/windows does
// not expose a typed wrapper for the module snapshot API, so the struct is
// declared locally and called through a lazy DLL proc instead.
type moduleEntry32 struct {
	Size         uint32
	ModuleID     uint32
	ProcessID    uint32
	GlblcntUsage uint32
	ProccntUsage uint32
	ModBaseAddr  uintptr
	ModBaseSize  uint32
	ModuleHandle windows.Handle
	Module       [256]uint16
	ExePath      [windows.MAX_PATH]uint16
}

var (
	modKernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procModule32First = modKernel32.NewProc("Module32FirstW")
	procModule32Next  = modKernel32.NewProc("Module32NextW")
)

// ModuleInfo is one row of the `lM` listing.
type ModuleInfo struct {
	Name        string
	ExePath     string
	BaseAddress uintptr
	BaseSize    uint32
}

// ListModules enumerates the modules loaded in pid via Module32First/Next
// over a TH32CS_SNAPMODULE snapshot.
func ListModules(pid uint32) ([]ModuleInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(th32csSnapModule, pid)
	if err != nil {
		return nil, fmt.Errorf("list modules: create snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var me moduleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	ret, _, _ := procModule32First.Call(uintptr(snapshot), uintptr(unsafe.Pointer(&me)))
	if ret == 0 {
		return nil, fmt.Errorf("list modules: Module32First failed")
	}

	var infos []ModuleInfo
	for ret != 0 {
		infos = append(infos, ModuleInfo{
			Name:        windows.UTF16ToString(me.Module[:]),
			ExePath:     windows.UTF16ToString(me.ExePath[:]),
			BaseAddress: me.ModBaseAddr,
			BaseSize:    me.ModBaseSize,
		})
		ret, _, _ = procModule32Next.Call(uintptr(snapshot), uintptr(unsafe.Pointer(&me)))
	}

	return infos, nil
}

// WriteModuleList renders the `lM` listing in the tool's console style.
func WriteModuleList(w io.Writer, infos []ModuleInfo) {
	for _, m := range infos {
		fmt.Fprintf(w, "\n     MODULE NAME:     %s\n", m.Name)
		fmt.Fprintf(w, "     Executable     = %s\n", m.ExePath)
		fmt.Fprintf(w, "     Base address   = 0x%08X\n", m.BaseAddress)
		fmt.Fprintf(w, "     Base size      = 0x%X\n", m.BaseSize)
	}
	fmt.Fprintln(w)
}
