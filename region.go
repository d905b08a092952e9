package procinspect

// enumerateRegions walks target from address zero upward, collecting every
// committed region of at least minSize bytes. This is the familiar
// VirtualQueryEx walk (`for (_p = NULL; VirtualQueryEx(...) ...; _p +=
// _info.RegionSize)`) expressed behind the TargetProcess interface so it can
// be exercised against a fake target in tests.
func enumerateRegions(target TargetProcess, minSize uint64) ([]RegionDescriptor, error) {
	var regions []RegionDescriptor

	addr := Address(0)
	for {
		desc, committed, ok, err := target.QueryRegion(addr)
		if err != nil {
			return regions, err
		}
		if !ok {
			break
		}

		if desc.Size == 0 {
			// Defensive against a misbehaving target; avoid an infinite loop.
			addr++
			continue
		}

		if committed && desc.Size >= minSize {
			regions = append(regions, desc)
		}

		next := uint64(desc.Base) + desc.Size
		if next <= uint64(addr) {
			break
		}
		addr = Address(next)
	}

	return regions, nil
}
