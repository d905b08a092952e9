package procinspect

// overlapFor rounds patternLen up to a 16-byte multiple, mirroring the
// original's multiple_of_n(pattern_len, sizeof(__m128i)): every match must
// fit entirely inside some block, and the overlap is sized for vectorized
// comparison at that boundary.
func overlapFor(patternLen int) uint64 {
	const vecWidth = 16
	n := uint64(patternLen)
	if n == 0 {
		return 0
	}
	return ((n + vecWidth - 1) / vecWidth) * vecWidth
}

// planBlocks splits every region in regions into overlap-safe blocks for a
// pattern of length patternLen, using stride as the planner's nominal block
// size S (the host allocation granularity times the configured stride
// factor). Regions smaller than patternLen contribute no blocks. The region
// slice and the returned blocks' RegionIdx fields are a single coupled pair:
// callers must never reindex regions without recomputing blocks.
func planBlocks(regions []RegionDescriptor, patternLen int, stride uint64) []Block {
	overlap := overlapFor(patternLen)
	var blocks []Block

	for idx, r := range regions {
		if r.Size < uint64(patternLen) {
			continue
		}

		remaining := r.Size
		offset := uint64(0)
		idealSize := stride + overlap

		for remaining > 0 {
			var size uint64
			if remaining >= idealSize {
				size = idealSize
				remaining -= stride
			} else {
				size = remaining
				remaining = 0
			}

			blocks = append(blocks, Block{
				Start:     Address(uint64(r.Base) + offset),
				Size:      size,
				RegionIdx: idx,
			})
			offset += stride
		}
	}

	return blocks
}
