package procinspect

import "sync"

// budgetGate admits variably-sized reads onto the worker pool while keeping
// the sum of in-flight bytes under a fixed ceiling. It is the direct Go
// translation of the original implementation's std::mutex + condition_variable
// pair guarding a g_memory_usage_bytes counter: a counting semaphore with a
// fixed unit would underutilize the budget here because block sizes vary (the
// final block of a region is usually smaller than the planner's stride).
type budgetGate struct {
	mu    sync.Mutex
	cond  *sync.Cond
	used  uint64
	limit uint64
}

func newBudgetGate(limit uint64) *budgetGate {
	g := &budgetGate{limit: limit}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// acquire blocks until size bytes can be checked out without exceeding the
// budget, then checks them out.
func (g *budgetGate) acquire(size uint64) {
	g.mu.Lock()
	for g.used+size > g.limit {
		g.cond.Wait()
	}
	g.used += size
	g.mu.Unlock()
}

// release returns size bytes to the budget and wakes every waiter, mirroring
// the original's notify_all-on-every-release policy.
func (g *budgetGate) release(size uint64) {
	g.mu.Lock()
	g.used -= size
	g.mu.Unlock()
	g.cond.Broadcast()
}

// inUse reports the current checked-out byte count; used by tests to verify
// the budget-safety property.
func (g *budgetGate) inUse() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}
