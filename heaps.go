//go:build windows

package procinspect

import (
	"fmt"
	"io"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"
)

const th32csSnapHeapList = 0x00000001

// heapList32 and heapEntry32 mirror HEAPLIST32/HEAPENTRY32 from tlhelp32.h.
// Like moduleEntry32, these have no typed wrapper in x/sys/windows, so they
// are declared locally and called through lazy DLL procs.
type heapList32 struct {
	Size      uintptr
	ProcessID uint32
	HeapID    uintptr
	Flags     uint32
}

type heapEntry32 struct {
	Size        uint32
	HandleRaw   uintptr
	Address     uintptr
	BlockSize   uintptr
	Flags       uint32
	LockCount   uint32
	Reserved    uint32
	ProcessID   uint32
	HeapID      uintptr
}

var (
	procHeap32ListFirst = modKernel32.NewProc("Heap32ListFirst")
	procHeap32ListNext  = modKernel32.NewProc("Heap32ListNext")
	procHeap32First     = modKernel32.NewProc("Heap32First")
	procHeap32Next      = modKernel32.NewProc("Heap32Next")
)

// HeapBlock is one entry surfaced by the `thb` listing.
type HeapBlock struct {
	Address Address
	Size    uint64
}

// HeapReport is one heap's traversal result.
type HeapReport struct {
	HeapID     uintptr
	StartAddr  Address
	EndAddr    Address
	Size       uint64
	Blocks     []HeapBlock // populated only when listBlocks is requested
	Entropy    float64     // populated only when calculateEntropy is requested
	HasEntropy bool
}

const entropyAlphabetSize = 0x100

// TraverseHeaps walks every heap of pid via the Heap32List*/Heap32* snapshot
// APIs, optionally listing every block and/or computing each heap's Shannon
// entropy over the bytes read from every block: a 256-bucket frequency table
// and the -sum(p*log2(p)) formula, read through TargetProcess.ReadAt instead
// of a raw ReadProcessMemory call.
func TraverseHeaps(target TargetProcess, pid uint32, listBlocks, calculateEntropy bool) ([]HeapReport, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(th32csSnapHeapList, pid)
	if err != nil {
		return nil, fmt.Errorf("traverse heaps: create snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var hl heapList32
	hl.Size = unsafe.Sizeof(hl)
	ret, _, _ := procHeap32ListFirst.Call(uintptr(snapshot), uintptr(unsafe.Pointer(&hl)))
	if ret == 0 {
		return nil, fmt.Errorf("traverse heaps: Heap32ListFirst failed")
	}

	var reports []HeapReport
	for ret != 0 {
		report, ok := traverseOneHeap(target, pid, hl.HeapID, listBlocks, calculateEntropy)
		if ok {
			reports = append(reports, report)
		}
		hl.Size = unsafe.Sizeof(hl)
		ret, _, _ = procHeap32ListNext.Call(uintptr(snapshot), uintptr(unsafe.Pointer(&hl)))
	}

	return reports, nil
}

func traverseOneHeap(target TargetProcess, pid uint32, heapID uintptr, listBlocks, calculateEntropy bool) (HeapReport, bool) {
	var he heapEntry32
	he.Size = uint32(unsafe.Sizeof(he))
	ret, _, _ := procHeap32First.Call(uintptr(unsafe.Pointer(&he)), uintptr(pid), heapID)
	if ret == 0 {
		return HeapReport{}, false
	}

	report := HeapReport{HeapID: heapID}
	startAddr := he.Address
	endAddr := startAddr
	var lastBlockSize uintptr

	var freq [entropyAlphabetSize]uint64
	var totalEntropyBytes uint64
	var entBuf []byte

	for {
		if listBlocks {
			report.Blocks = append(report.Blocks, HeapBlock{
				Address: Address(he.Address),
				Size:    uint64(he.BlockSize),
			})
		}

		if calculateEntropy {
			if cap(entBuf) < int(he.BlockSize) {
				entBuf = make([]byte, he.BlockSize)
			}
			buf := entBuf[:he.BlockSize]
			n, err := target.ReadAt(Address(he.Address), buf)
			if err == nil && uint64(n) == uint64(he.BlockSize) {
				for _, b := range buf {
					freq[b]++
				}
				totalEntropyBytes += uint64(he.BlockSize)
			}
		}

		if he.Address < startAddr {
			startAddr = he.Address
		}
		if endAddr < he.Address {
			endAddr = he.Address
			lastBlockSize = he.BlockSize
		}

		he.Size = uint32(unsafe.Sizeof(he))
		ret, _, _ = procHeap32Next.Call(uintptr(unsafe.Pointer(&he)))
		if ret == 0 {
			break
		}
	}

	endAddr += lastBlockSize
	report.StartAddr = Address(startAddr)
	report.EndAddr = Address(endAddr)
	report.Size = uint64(endAddr - startAddr)

	if calculateEntropy && totalEntropyBytes > 0 {
		report.Entropy = shannonEntropy(freq[:], totalEntropyBytes)
		report.HasEntropy = true
	}

	return report, true
}

func shannonEntropy(freq []uint64, totalBytes uint64) float64 {
	entropy := 0.0
	size := float64(totalBytes)
	for _, f := range freq {
		if f == 0 {
			continue
		}
		p := float64(f) / size
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// WriteHeapReports renders th/the/thb listings in the tool's console style.
func WriteHeapReports(w io.Writer, reports []HeapReport, listBlocks bool) {
	for _, r := range reports {
		fmt.Fprintf(w, "\n---- Heap ID: 0x%x ----\n", r.HeapID)
		if listBlocks {
			for _, b := range r.Blocks {
				fmt.Fprintf(w, "Start address: %s Block size: 0x%X\n", b.Address, b.Size)
			}
		}
		fmt.Fprintf(w, "\nStart Address: %s\n", r.StartAddr)
		fmt.Fprintf(w, "End Address: %s\n", r.EndAddr)
		fmt.Fprintf(w, "Size: 0x%X\n", r.Size)
		if r.HasEntropy {
			fmt.Fprintf(w, "Entropy: %.2f\n", r.Entropy)
		}
	}
	fmt.Fprintln(w)
}
