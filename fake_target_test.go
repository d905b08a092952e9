package procinspect

import "fmt"

// fakeTarget is an in-memory TargetProcess: a simulated address space made
// of a handful of regions, each backed by a byte slice. It exists so the
// scanner's region enumeration, planning, and matching logic can be
// exercised without a live Windows process.
type fakeTarget struct {
	regions []fakeRegion
	// failReads, if set, makes ReadAt fail for any address whose region
	// index is in the set, simulating a hard read failure.
	failReads map[int]bool
	// shortReads, if set, caps the number of bytes returned for a region
	// index, simulating a short read.
	shortReads map[int]int
}

type fakeRegion struct {
	desc      RegionDescriptor
	data      []byte
	committed bool
}

// committedRegion builds a fake region backed by data, with desc.Size
// inferred from len(data) when desc.Size is zero.
func committedRegion(desc RegionDescriptor, data []byte) fakeRegion {
	if desc.Size == 0 {
		desc.Size = uint64(len(data))
	}
	return fakeRegion{desc: desc, data: data, committed: true}
}

// gapRegion builds a fake region that QueryRegion reports but which is not
// committed, so the enumerator must skip it.
func gapRegion(desc RegionDescriptor) fakeRegion {
	return fakeRegion{desc: desc, committed: false}
}

func newFakeTarget(regions ...fakeRegion) *fakeTarget {
	return &fakeTarget{regions: regions}
}

func (f *fakeTarget) QueryRegion(addr Address) (RegionDescriptor, bool, bool, error) {
	for _, r := range f.regions {
		if uint64(addr) < uint64(r.desc.Base)+r.desc.Size {
			return r.desc, r.committed, true, nil
		}
	}
	return RegionDescriptor{}, false, false, nil
}

func (f *fakeTarget) ReadAt(addr Address, buf []byte) (int, error) {
	for idx, r := range f.regions {
		if uint64(addr) >= uint64(r.desc.Base) && uint64(addr) < uint64(r.desc.Base)+r.desc.Size {
			if f.failReads[idx] {
				return 0, fmt.Errorf("fake read failure")
			}
			off := uint64(addr) - uint64(r.desc.Base)
			n := copy(buf, r.data[off:])
			if cap, ok := f.shortReads[idx]; ok && n > cap {
				n = cap
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("address %s not mapped", addr)
}

func (f *fakeTarget) ResolveModulePath(allocationBase Address) (string, bool) {
	for _, r := range f.regions {
		if r.desc.AllocationBase == allocationBase && r.desc.Kind == RegionImage {
			return "C:\\fake\\module.dll", true
		}
	}
	return "", false
}

func (f *fakeTarget) Close() error { return nil }
