package procinspect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlapFor(t *testing.T) {
	tests := []struct {
		patternLen int
		want       uint64
	}{
		{0, 0},
		{1, 16},
		{16, 16},
		{17, 32},
		{32, 32},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, overlapFor(tt.patternLen))
	}
}

// TestPlanBlocksCoverage verifies the coverage property: the union of
// planned block ranges covers every byte of every region at least once.
func TestPlanBlocksCoverage(t *testing.T) {
	region := RegionDescriptor{Base: 0x1000, Size: 200}
	blocks := planBlocks([]RegionDescriptor{region}, 4, 64)

	covered := make(map[uint64]bool)
	for _, b := range blocks {
		for i := uint64(0); i < b.Size; i++ {
			covered[uint64(b.Start)+i] = true
		}
	}
	for a := uint64(region.Base); a < uint64(region.Base)+region.Size; a++ {
		require.Truef(t, covered[a], "address 0x%x not covered by any block", a)
	}
}

// TestPlanBlocksOverlap verifies that adjacent blocks of the same region
// overlap by exactly overlapFor(patternLen) bytes.
func TestPlanBlocksOverlap(t *testing.T) {
	region := RegionDescriptor{Base: 0x2000, Size: 300}
	patternLen := 5
	stride := uint64(64)
	blocks := planBlocks([]RegionDescriptor{region}, patternLen, stride)

	wantOverlap := overlapFor(patternLen)
	for i := 1; i < len(blocks); i++ {
		prevEnd := uint64(blocks[i-1].Start) + blocks[i-1].Size
		curStart := uint64(blocks[i].Start)
		require.Equal(t, wantOverlap, prevEnd-curStart, "block %d overlap", i)
	}
}

func TestPlanBlocksSkipsSmallRegions(t *testing.T) {
	regions := []RegionDescriptor{
		{Base: 0x1000, Size: 2},
		{Base: 0x2000, Size: 64},
	}
	blocks := planBlocks(regions, 8, 64)
	for _, b := range blocks {
		require.NotEqual(t, 0, b.RegionIdx, "region smaller than pattern length should contribute no blocks")
	}
}

func TestPlanBlocksSingleBlockForSmallRegion(t *testing.T) {
	region := RegionDescriptor{Base: 0x3000, Size: 40}
	blocks := planBlocks([]RegionDescriptor{region}, 8, 1024)
	require.Len(t, blocks, 1, "expected exactly one block for a region smaller than stride+overlap")
	require.Equal(t, region.Size, blocks[0].Size, "single block should cover the whole region")
}
