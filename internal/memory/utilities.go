// Package memory provides the memory management helpers used while a table is
// expanded: reclaiming scratch memory after large intermediate structures are
// dropped, and tracking intermediate Arrow-backed values so they are released
// exactly once.
package memory

import (
	"runtime"
	"sync"
)

// Releaser is anything holding Arrow memory that must be released.
type Releaser interface {
	Release()
}

// ForceGC reclaims memory after a large intermediate structure is dropped.
func ForceGC() {
	runtime.GC()

	// Second cycle picks up objects freed by finalizers run in the first.
	runtime.GC()

	runtime.Gosched()
}

// Scope tracks intermediate resources and releases them together.
type Scope struct {
	mu        sync.Mutex
	resources []Releaser
}

// NewScope creates an empty scope
func NewScope() *Scope {
	return &Scope{}
}

// Track adds r to the scope and returns it.
func Track[T Releaser](s *Scope, r T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, r)
	return r
}

// ReleaseAll releases all tracked resources in reverse order of tracking.
func (s *Scope) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.resources) - 1; i >= 0; i-- {
		if s.resources[i] != nil {
			s.resources[i].Release()
		}
	}
	s.resources = nil
}
