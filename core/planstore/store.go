// Package planstore keeps the most recent optimization results in memory
// so API handlers and publishers read a consistent plan while the
// scheduler replaces it.
package planstore

import (
	"sync"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// Store exposes the latest published plan and a bounded run history.
type Store interface {
	Set(model.RunResult)
	Latest() (model.RunResult, bool)
	History(n int) []model.RunResult
}

const defaultHistorySize = 32

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	latest  model.RunResult
	has     bool
	history []model.RunResult
	size    int
}

// NewMemoryStore returns a store retaining up to historySize past results.
// A non-positive size falls back to the default.
func NewMemoryStore(historySize int) *MemoryStore {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &MemoryStore{size: historySize}
}

// Set replaces the latest result and appends it to the history.
func (s *MemoryStore) Set(res model.RunResult) {
	cp := res.Clone()
	s.mu.Lock()
	s.latest = cp
	s.has = true
	s.history = append(s.history, cp)
	if len(s.history) > s.size {
		s.history = s.history[len(s.history)-s.size:]
	}
	s.mu.Unlock()
}

// Latest returns the most recent result. The boolean is false before the
// first publish.
func (s *MemoryStore) Latest() (model.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return model.RunResult{}, false
	}
	return s.latest.Clone(), true
}

// History returns up to n past results, newest first. n <= 0 returns all
// retained results.
func (s *MemoryStore) History(n int) []model.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.history) {
		n = len(s.history)
	}
	out := make([]model.RunResult, 0, n)
	for i := len(s.history) - 1; i >= len(s.history)-n; i-- {
		out = append(out, s.history[i].Clone())
	}
	return out
}
