package procinspect

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scanner ties the region enumerator, block planner, budget-gated worker
// pool, and aggregator together behind a single entry point, built around a
// TargetProcess rather than a raw windows.Handle so it can run against any
// implementation of the interface.
type Scanner struct {
	pid    uint32
	target TargetProcess
	cfg    Config
	log    *logrus.Logger
}

// NewScanner opens pid and returns a Scanner ready to run searches against
// it.
func NewScanner(pid uint32, cfg Config, log *logrus.Logger) (*Scanner, error) {
	target, err := OpenTarget(pid)
	if err != nil {
		return nil, fmt.Errorf("new scanner for pid %d: %w", pid, err)
	}
	if log == nil {
		log = NewTextLogger(cfg)
	}
	return &Scanner{pid: pid, target: target, cfg: cfg, log: log}, nil
}

// Close releases the underlying target handle.
func (s *Scanner) Close() error {
	return s.target.Close()
}

// Scan enumerates the target's committed address space, plans overlap-safe
// blocks for pattern, reads and matches them through the worker pool, and
// returns the deduplicated report. aborted, if non-nil, is polled between
// blocks so an operator interrupt can stop unclaimed work without cancelling
// blocks already in flight.
func (s *Scanner) Scan(pattern []byte, aborted func() bool) (ScanReport, error) {
	return scan(s.target, pattern, s.cfg, s.log, aborted)
}

// scan is the platform-independent core of Scan, factored out so tests can
// drive it against a fake TargetProcess.
func scan(target TargetProcess, pattern []byte, cfg Config, log *logrus.Logger, aborted func() bool) (ScanReport, error) {
	if len(pattern) == 0 {
		return ScanReport{}, fmt.Errorf("scan: empty pattern")
	}

	stride := nominalStride(cfg)
	overlap := overlapFor(len(pattern))
	if stride+overlap > cfg.MemoryBudget {
		return ScanReport{}, fmt.Errorf("scan: block size %d exceeds memory budget %d", stride+overlap, cfg.MemoryBudget)
	}

	regions, err := enumerateRegions(target, uint64(len(pattern)))
	if err != nil {
		log.WithError(err).Debug("region enumeration ended early")
	}

	blocks := planBlocks(regions, len(pattern), stride)
	perBlock := runWorkerPool(target, blocks, pattern, cfg, log, aborted)
	modules := newModuleCache(target, 64)

	report := aggregate(blocks, regions, perBlock, cfg, modules)
	return report, nil
}

// nominalStride computes the planner's stride S: the host allocation
// granularity times the configured stride factor, as in the original's
// `block_size = alloc_granularity * g_num_alloc_blocks`. The allocation
// granularity itself is a host constant (64KiB on every Windows release to
// date); rather than query it per scan it is a constant here, leaving
// StrideFactor as the only operator-facing knob.
func nominalStride(cfg Config) uint64 {
	const allocGranularity = 64 * 1024
	return allocGranularity * cfg.StrideFactor
}
