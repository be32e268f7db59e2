package server

import (
	"sync"

	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
)

// StatusStore keeps the latest status reported by each search run
type StatusStore struct {
	mu    sync.RWMutex
	runs  map[string]search.Status
	order []string
}

func NewStatusStore() *StatusStore {
	return &StatusStore{
		runs: make(map[string]search.Status),
	}
}

// Put records st, replacing any earlier status of the same run
func (s *StatusStore) Put(st search.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[st.RunID]; !exists {
		s.order = append(s.order, st.RunID)
	}
	s.runs[st.RunID] = st
}

func (s *StatusStore) Get(runID string) (search.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[runID]
	return st, ok
}

// List returns up to limit statuses, most recently started run first
func (s *StatusStore) List(limit int) []search.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]search.Status, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out
}

// Active reports whether any run has not finished yet
func (s *StatusStore) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.runs {
		if !st.Done {
			return true
		}
	}
	return false
}
