package procinspect

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// runWorkerPool reads and matches every block through a bounded pool of
// workers gated by budget: a shared index source instead of a static split,
// so a worker that finishes its block quickly just takes the next one. Each
// worker writes directly into its own result slot rather than feeding a
// dedicated printer goroutine, since match order is recovered afterward by
// block index.
func runWorkerPool(target TargetProcess, blocks []Block, pattern []byte, cfg Config, log *logrus.Logger, aborted func() bool) [][]Match {
	results := make([][]Match, len(blocks))
	if len(blocks) == 0 {
		return results
	}

	workerCount := len(blocks)
	if workerCount > cfg.WorkerCeiling {
		workerCount = cfg.WorkerCeiling
	}
	if n := runtime.NumCPU(); workerCount > n {
		workerCount = n
	}
	if workerCount < 1 {
		workerCount = 1
	}

	gate := newBudgetGate(cfg.MemoryBudget)
	matcher := newLiteralMatcher(pattern)

	nextIdx := int64(0)
	var idxMu sync.Mutex
	take := func() (int, bool) {
		idxMu.Lock()
		defer idxMu.Unlock()
		if int(nextIdx) >= len(blocks) {
			return 0, false
		}
		i := int(nextIdx)
		nextIdx++
		return i, true
	}

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, blockBufferSize(blocks))
			for {
				if aborted != nil && aborted() {
					return
				}
				i, ok := take()
				if !ok {
					return
				}
				results[i] = processBlock(target, blocks[i], buf, matcher, gate, cfg, log)
			}
		}()
	}
	wg.Wait()

	return results
}

func blockBufferSize(blocks []Block) uint64 {
	var max uint64
	for _, b := range blocks {
		if b.Size > max {
			max = b.Size
		}
	}
	return max
}

// processBlock is the per-block worker body: acquire budget, read, classify
// the read outcome, match, and always release budget before returning.
func processBlock(target TargetProcess, block Block, buf []byte, matcher *literalMatcher, gate *budgetGate, cfg Config, log *logrus.Logger) []Match {
	gate.acquire(block.Size)
	defer gate.release(block.Size)

	readBuf := buf[:block.Size]
	n, err := target.ReadAt(block.Start, readBuf)

	switch {
	case err != nil:
		if cfg.VerboseReads {
			log.WithFields(logrus.Fields{
				"address": block.Start,
				"size":    block.Size,
			}).WithError(err).Debug("read process memory failed")
		}
		return nil
	case n == 0:
		// Zero bytes with no error is treated the same as a hard failure:
		// there is nothing to match over.
		if cfg.VerboseReads {
			log.WithFields(logrus.Fields{
				"address": block.Start,
				"size":    block.Size,
			}).Debug("read process memory returned zero bytes")
		}
		return nil
	case uint64(n) < block.Size:
		if cfg.VerboseReads {
			log.WithFields(logrus.Fields{
				"address":   block.Start,
				"requested": block.Size,
				"actual":    n,
			}).Debug("short read, matching over partial buffer")
		}
	}

	if n < matcher.Len() {
		return nil
	}

	data := readBuf[:n]
	offsets := matcher.FindAll(data)
	if len(offsets) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(offsets))
	for _, off := range offsets {
		end := off + matcher.Len()
		matched := make([]byte, matcher.Len())
		copy(matched, data[off:end])
		matches = append(matches, Match{
			Address: Address(uint64(block.Start) + uint64(off)),
			Data:    matched,
		})
	}
	return matches
}
