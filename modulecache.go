package procinspect

import lru "github.com/hashicorp/golang-lru"

// moduleCache memoizes TargetProcess.ResolveModulePath by allocation base so
// repeated matches inside the same image-backed region don't re-query the
// target for every match, only once per allocation base per scan.
type moduleCache struct {
	target TargetProcess
	cache  *lru.Cache
}

func newModuleCache(target TargetProcess, size int) *moduleCache {
	c, err := lru.New(size)
	if err != nil {
		// Only returns an error for a non-positive size; fall back to a
		// single-entry cache rather than propagating a constructor error
		// for what is a pure optimization.
		c, _ = lru.New(1)
	}
	return &moduleCache{target: target, cache: c}
}

func (m *moduleCache) resolve(allocationBase Address) (string, bool) {
	if v, ok := m.cache.Get(allocationBase); ok {
		entry := v.(cachedModule)
		return entry.path, entry.ok
	}

	path, ok := m.target.ResolveModulePath(allocationBase)
	m.cache.Add(allocationBase, cachedModule{path: path, ok: ok})
	return path, ok
}

type cachedModule struct {
	path string
	ok   bool
}
