package procinspect

import (
	"fmt"
	"io"
)

// ScanReport is the final, deduplicated outcome of one scan.
type ScanReport struct {
	TotalMatches int
	Suppressed   bool // true when TotalMatches exceeds the result ceiling
	BlockReports []BlockReport
}

// BlockReport groups the matches found in one block together with the
// region that contains it, so the aggregator only has to resolve a region's
// module path once per block rather than once per match.
type BlockReport struct {
	Region     RegionDescriptor
	ModulePath string
	HasModule  bool
	Matches    []Address
}

// aggregate counts the raw matches, applies the result ceiling, then walks
// blocks in block order grouping each block's matches under its region and deduplicating
// consecutive addresses across the overlap between adjacent blocks of the
// same region. The "compare with previous address" dedup mirrors the
// original tool's prev_match loop and is only correct because this walk is
// single-threaded and strictly in block order.
func aggregate(blocks []Block, regions []RegionDescriptor, perBlock [][]Match, cfg Config, modules *moduleCache) ScanReport {
	total := 0
	for _, ms := range perBlock {
		total += len(ms)
	}

	report := ScanReport{TotalMatches: total}
	if total == 0 {
		return report
	}
	if total > cfg.ResultCeiling {
		report.Suppressed = true
		return report
	}

	var prevAddr Address
	havePrev := false

	for i, ms := range perBlock {
		if len(ms) == 0 {
			continue
		}
		region := regions[blocks[i].RegionIdx]

		br := BlockReport{Region: region}
		if region.Kind == RegionImage {
			if path, ok := modules.resolve(region.AllocationBase); ok {
				br.ModulePath = path
				br.HasModule = true
			}
		}

		for _, m := range ms {
			if havePrev && m.Address == prevAddr {
				continue
			}
			br.Matches = append(br.Matches, m.Address)
			prevAddr = m.Address
			havePrev = true
		}

		if len(br.Matches) > 0 {
			report.BlockReports = append(report.BlockReports, br)
		}
	}

	return report
}

// WriteReport renders a report in the tool's console-listing style: a
// region header per block with matches, followed by addresses.
func WriteReport(w io.Writer, r ScanReport) {
	if r.TotalMatches == 0 {
		fmt.Fprintln(w, "*** No matches found. ***")
		return
	}
	if r.Suppressed {
		fmt.Fprintf(w, "*** %d matches found; listing suppressed above the result ceiling. ***\n", r.TotalMatches)
		return
	}

	fmt.Fprintf(w, "*** %d matches found ***\n\n", r.TotalMatches)
	for _, br := range r.BlockReports {
		if br.HasModule {
			fmt.Fprintln(w, "------------------------------------")
			fmt.Fprintf(w, "Module name: %s\n", br.ModulePath)
		}
		fmt.Fprintf(w, "Base address: %s\tAllocation Base: %s\tRegion Size: 0x%X\tType: %s\n",
			br.Region.Base, br.Region.AllocationBase, br.Region.Size, br.Region.Kind)
		for _, a := range br.Matches {
			fmt.Fprintf(w, "\tMatch at address: %s\n", a)
		}
		fmt.Fprintln(w)
	}
}
