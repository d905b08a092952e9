package procinspect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnumerateRegionsSkipsGapsAndSmallRegions(t *testing.T) {
	target := newFakeTarget(
		committedRegion(RegionDescriptor{Base: 0x1000, Kind: RegionPrivate}, make([]byte, 64)),
		gapRegion(RegionDescriptor{Base: 0x1040, Size: 4096}),
		committedRegion(RegionDescriptor{Base: 0x2040, Kind: RegionImage}, make([]byte, 2)),
		committedRegion(RegionDescriptor{Base: 0x2042, Kind: RegionPrivate}, make([]byte, 128)),
	)

	regions, err := enumerateRegions(target, 4)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	require.Equal(t, Address(0x1000), regions[0].Base)
	require.Equal(t, Address(0x2042), regions[1].Base)
}

func TestEnumerateRegionsEmptyAddressSpace(t *testing.T) {
	target := newFakeTarget()
	regions, err := enumerateRegions(target, 4)
	require.NoError(t, err)
	require.Empty(t, regions)
}
