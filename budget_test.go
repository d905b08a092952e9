package procinspect

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestBudgetGateBlocksOverBudget verifies the budget-safety property: a
// second acquire that would exceed the limit blocks until a release makes
// room.
func TestBudgetGateBlocksOverBudget(t *testing.T) {
	gate := newBudgetGate(100)
	gate.acquire(80)

	acquired := make(chan struct{})
	go func() {
		gate.acquire(30)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should have blocked: 80+30 > 100")
	case <-time.After(50 * time.Millisecond):
	}

	gate.release(80)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire should have unblocked after release")
	}

	gate.release(30)
	require.EqualValues(t, 0, gate.inUse(), "all bytes should be released")
}

// TestBudgetGateNeverExceedsLimit stresses many concurrent acquire/release
// pairs of varying size and checks the invariant holds throughout.
func TestBudgetGateNeverExceedsLimit(t *testing.T) {
	const limit = 1000
	gate := newBudgetGate(limit)

	sizes := []uint64{50, 120, 30, 900, 10, 400, 600, 1}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var maxObserved uint64

	for _, size := range sizes {
		size := size
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.acquire(size)
			mu.Lock()
			if u := gate.inUse(); u > maxObserved {
				maxObserved = u
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			gate.release(size)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, maxObserved, uint64(limit))
	require.EqualValues(t, 0, gate.inUse(), "all workers should have released their bytes")
}
