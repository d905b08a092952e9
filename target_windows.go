//go:build windows

package procinspect

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsTarget is the real TargetProcess implementation: the same
// OpenProcess flags and VirtualQueryEx/ReadProcessMemory pair any
// memory-scanning tool needs, exposed behind the TargetProcess interface
// instead of being inlined into a single scan loop.
type windowsTarget struct {
	handle windows.Handle
}

func openTarget(pid uint32) (TargetProcess, error) {
	h, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}
	return &windowsTarget{handle: h}, nil
}

func (t *windowsTarget) QueryRegion(addr Address) (RegionDescriptor, bool, bool, error) {
	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQueryEx(t.handle, uintptr(addr), &mbi, unsafe.Sizeof(mbi))
	if err != nil {
		return RegionDescriptor{}, false, false, nil
	}

	desc := RegionDescriptor{
		Base:           Address(mbi.BaseAddress),
		Size:           uint64(mbi.RegionSize),
		Protect:        mbi.Protect,
		AllocationBase: Address(mbi.AllocationBase),
		Kind:           regionKindOf(mbi.Type),
	}
	committed := mbi.State == windows.MEM_COMMIT
	return desc, committed, true, nil
}

func regionKindOf(typ uint32) RegionKind {
	// MEMORY_BASIC_INFORMATION.Type values from winnt.h.
	const (
		memPrivate = 0x00020000
		memMapped  = 0x00040000
		memImage   = 0x01000000
	)
	switch typ {
	case memImage:
		return RegionImage
	case memMapped:
		return RegionMapped
	case memPrivate:
		return RegionPrivate
	default:
		return RegionUnknown
	}
}

func (t *windowsTarget) ReadAt(addr Address, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var bytesRead uintptr
	err := windows.ReadProcessMemory(t.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &bytesRead)
	if err != nil {
		return int(bytesRead), fmt.Errorf("read process memory at %s: %w", addr, err)
	}
	return int(bytesRead), nil
}

func (t *windowsTarget) ResolveModulePath(allocationBase Address) (string, bool) {
	var nameBuf [windows.MAX_PATH]uint16
	err := windows.GetModuleFileNameEx(t.handle, windows.Handle(allocationBase), &nameBuf[0], windows.MAX_PATH)
	if err != nil {
		return "", false
	}
	path := windows.UTF16ToString(nameBuf[:])
	if path == "" {
		return "", false
	}
	return path, true
}

func (t *windowsTarget) Close() error {
	if t.handle != 0 {
		err := windows.CloseHandle(t.handle)
		t.handle = 0
		return err
	}
	return nil
}
