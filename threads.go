//go:build windows

package procinspect

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	th32csSnapThread    = 0x00000004
	threadAllAccess     = 0x001F03FF
	contextControlAMD64 = 0x00100001 // CONTEXT_AMD64 | CONTEXT_CONTROL
)

var (
	procOpenThread       = modKernel32.NewProc("OpenThread")
	procGetThreadContext = modKernel32.NewProc("GetThreadContext")
)

// threadContextAMD64 is the subset of the x86-64 CONTEXT structure needed to
// recover the stack pointer. Only the fields up to and including Rsp matter
// here; the structure's true size (and therefore the offset of every field
// after ContextFlags) must still match the OS definition exactly, so the
// padding fields are kept even though this code never reads them.
type threadContextAMD64 struct {
	P1Home, P2Home, P3Home, P4Home, P5Home, P6Home uint64
	ContextFlags, MxCsr                            uint32
	SegCs, SegDs, SegEs, SegFs, SegGs, SegSs       uint16
	EFlags                                         uint32
	Dr0, Dr1, Dr2, Dr3, Dr6, Dr7                   uint64
	Rax, Rcx, Rdx, Rbx                             uint64
	Rsp, Rbp                                       uint64
	Rsi, Rdi                                       uint64
	R8, R9, R10, R11, R12, R13, R14, R15           uint64
	Rip                                            uint64
	_                                              [512]byte    // FltSave (XSAVE area), unused
	_                                              [26][16]byte // VectorRegister, unused
	_                                              [6]uint64    // VectorControl through LastExceptionFromRip, unused
}

// ThreadInfo is one row of the `lt` listing.
type ThreadInfo struct {
	ThreadID      uint32
	BasePriority  int32
	DeltaPriority int32
	StackBase     Address
	StackSize     uint64
	HaveStack     bool
}

// ListThreads enumerates the threads owned by pid, including the committed
// private region backing each thread's stack: GetThreadContext's stack
// pointer fed back into VirtualQueryEx, requiring the containing region to
// be MEM_PRIVATE and MEM_COMMIT.
func ListThreads(target TargetProcess, pid uint32) ([]ThreadInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(th32csSnapThread, 0)
	if err != nil {
		return nil, fmt.Errorf("list threads: create snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var te windows.ThreadEntry32
	te.Size = uint32(unsafe.Sizeof(te))

	if err := windows.Thread32First(snapshot, &te); err != nil {
		return nil, fmt.Errorf("list threads: Thread32First: %w", err)
	}

	var infos []ThreadInfo
	for {
		if te.OwnerProcessID == pid {
			info := ThreadInfo{
				ThreadID:      te.ThreadID,
				BasePriority:  te.BasePri,
				DeltaPriority: te.DeltaPri,
			}
			if base, size, ok := threadStackBase(target, te.ThreadID); ok {
				info.StackBase = base
				info.StackSize = size
				info.HaveStack = true
			}
			infos = append(infos, info)
		}

		if err := windows.Thread32Next(snapshot, &te); err != nil {
			break
		}
	}

	return infos, nil
}

func threadStackBase(target TargetProcess, threadID uint32) (Address, uint64, bool) {
	hThread, _, _ := procOpenThread.Call(threadAllAccess, 0, uintptr(threadID))
	if hThread == 0 {
		return 0, 0, false
	}
	defer windows.CloseHandle(windows.Handle(hThread))

	var ctx threadContextAMD64
	ctx.ContextFlags = contextControlAMD64
	ret, _, _ := procGetThreadContext.Call(hThread, uintptr(unsafe.Pointer(&ctx)))
	if ret == 0 {
		return 0, 0, false
	}

	desc, committed, ok, err := target.QueryRegion(Address(ctx.Rsp))
	if err != nil || !ok || !committed || desc.Kind != RegionPrivate {
		return 0, 0, false
	}
	return desc.Base, desc.Size, true
}

// WriteThreadList renders the `lt` listing in the tool's console style.
func WriteThreadList(w io.Writer, infos []ThreadInfo) {
	for _, t := range infos {
		fmt.Fprintf(w, "\n     THREAD ID         = 0x%08X\n", t.ThreadID)
		fmt.Fprintf(w, "     Base priority     = %d\n", t.BasePriority)
		fmt.Fprintf(w, "     Delta priority    = %d\n", t.DeltaPriority)
		if t.HaveStack {
			fmt.Fprintf(w, "     Stack Base        = %s\n", t.StackBase)
			fmt.Fprintf(w, "     Stack Size        = 0x%X\n", t.StackSize)
		} else {
			fmt.Fprintln(w, "     Failed acquiring stack base!")
		}
	}
	fmt.Fprintln(w)
}
