package exploration

import "github.com/GoSim-25-26J-441/platform-dse/internal/space"

// Set is a set of configurations compared by canonical key
type Set struct {
	keys map[space.Key]struct{}
}

// NewSet creates a set holding the given configurations
func NewSet(cfgs ...space.Configuration) *Set {
	s := &Set{keys: make(map[space.Key]struct{}, len(cfgs))}
	for _, c := range cfgs {
		s.Add(c)
	}
	return s
}

// Has reports membership. A nil set is empty.
func (s *Set) Has(c space.Configuration) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[c.Key()]
	return ok
}

// Add inserts c and reports whether it was new
func (s *Set) Add(c space.Configuration) bool {
	if _, ok := s.keys[c.Key()]; ok {
		return false
	}
	s.keys[c.Key()] = struct{}{}
	return true
}

// Len returns the number of members
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}
