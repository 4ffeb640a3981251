package orchestrator

import (
	"path/filepath"
	"sync"
)

// pathLocks serializes mutating stages per canonical project path, so two
// concurrent runs against the same tree (through different spellings of the
// path) cannot interleave writes.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a path and returns its release func.
func (p *pathLocks) Lock(path string) func() {
	canon := canonicalPath(path)

	p.mu.Lock()
	m, ok := p.locks[canon]
	if !ok {
		m = &sync.Mutex{}
		p.locks[canon] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// canonicalPath resolves a path to its absolute, symlink-free form. A path
// that cannot be resolved still locks consistently on its literal form.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
