package procinspect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateDedupesConsecutiveAddressesAcrossBlocks(t *testing.T) {
	region := RegionDescriptor{Base: 0x1000, Size: 256, Kind: RegionPrivate}
	blocks := []Block{
		{Start: 0x1000, Size: 128, RegionIdx: 0},
		{Start: 0x1060, Size: 128, RegionIdx: 0}, // overlaps the first block
	}
	// The same match address surfaces from both blocks because of the
	// overlap region; aggregate must report it once.
	perBlock := [][]Match{
		{{Address: 0x1010}, {Address: 0x1070}},
		{{Address: 0x1070}, {Address: 0x1100}},
	}

	cfg := DefaultConfig()
	report := aggregate(blocks, []RegionDescriptor{region}, perBlock, cfg, newModuleCache(nil, 8))

	require.Equal(t, 4, report.TotalMatches, "ceiling check counts raw matches, not deduped")
	require.False(t, report.Suppressed)

	var all []Address
	for _, br := range report.BlockReports {
		all = append(all, br.Matches...)
	}
	require.Equal(t, []Address{0x1010, 0x1070, 0x1100}, all, "the repeated 0x1070 from the overlapping block must be deduped")
}

func TestAggregatePreservesBlockOrder(t *testing.T) {
	region := RegionDescriptor{Base: 0x2000, Size: 256}
	blocks := []Block{
		{Start: 0x2000, Size: 64, RegionIdx: 0},
		{Start: 0x2040, Size: 64, RegionIdx: 0},
		{Start: 0x2080, Size: 64, RegionIdx: 0},
	}
	perBlock := [][]Match{
		{{Address: 0x2010}},
		{{Address: 0x2050}},
		{{Address: 0x2090}},
	}

	report := aggregate(blocks, []RegionDescriptor{region}, perBlock, DefaultConfig(), newModuleCache(nil, 8))
	require.Equal(t, 3, report.TotalMatches)

	var all []Address
	for _, br := range report.BlockReports {
		all = append(all, br.Matches...)
	}
	require.Equal(t, []Address{0x2010, 0x2050, 0x2090}, all)
}

func TestAggregateSuppressesAboveResultCeiling(t *testing.T) {
	region := RegionDescriptor{Base: 0x3000, Size: 64}
	blocks := []Block{{Start: 0x3000, Size: 64, RegionIdx: 0}}

	cfg := DefaultConfig()
	cfg.ResultCeiling = 1
	perBlock := [][]Match{{{Address: 0x3001}, {Address: 0x3002}}}

	report := aggregate(blocks, []RegionDescriptor{region}, perBlock, cfg, newModuleCache(nil, 8))
	require.True(t, report.Suppressed)
	require.Equal(t, 2, report.TotalMatches)
	require.Empty(t, report.BlockReports)
}

func TestAggregateNoMatches(t *testing.T) {
	report := aggregate(nil, nil, nil, DefaultConfig(), newModuleCache(nil, 8))
	require.Equal(t, 0, report.TotalMatches)
	require.False(t, report.Suppressed)
	require.Empty(t, report.BlockReports)
}
