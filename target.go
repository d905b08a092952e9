package procinspect

import "errors"

// ErrNoMoreRegions names the end of the target's address space. The
// TargetProcess implementations in this package do not return it:
// QueryRegion reports the end of the walk with ok == false.
var ErrNoMoreRegions = errors.New("procinspect: no more regions")

// TargetProcess is the complete external dependency of the scanner core. A
// Windows implementation lives in target_windows.go, built behind a
// `//go:build windows` tag; tests use an in-memory fake so the scanner's
// concurrency and matching logic is exercised without a live Windows
// process.
type TargetProcess interface {
	// QueryRegion reports the committed-or-not region that contains addr,
	// or the next region at or after addr if none contains it exactly.
	// ok is false once the walk has passed the end of the address space.
	QueryRegion(addr Address) (desc RegionDescriptor, committed bool, ok bool, err error)

	// ReadAt reads len(buf) bytes starting at addr into buf, returning the
	// number of bytes actually copied. A short read is not itself an error;
	// n < len(buf) with err == nil means a partial read.
	ReadAt(addr Address, buf []byte) (n int, err error)

	// ResolveModulePath returns the file path of the module loaded at
	// allocationBase, if any.
	ResolveModulePath(allocationBase Address) (path string, ok bool)

	// Close releases the handle opened by OpenTarget.
	Close() error
}

// OpenTarget opens pid for read and query access, returning the
// platform-specific TargetProcess implementation.
func OpenTarget(pid uint32) (TargetProcess, error) {
	return openTarget(pid)
}
