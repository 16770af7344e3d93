package visits

import "sync"

// ListState is the in-memory visit list shared by the booking and
// cancellation coordinators. Writers replace the whole list through reducer
// events; readers get copies.
type ListState struct {
	mu     sync.RWMutex
	visits []Visit
}

// NewListState creates an empty list.
func NewListState() *ListState {
	return &ListState{visits: []Visit{}}
}

// Snapshot returns a copy of the current list.
func (s *ListState) Snapshot() []Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Visit, len(s.visits))
	copy(out, s.visits)
	return out
}

// Apply runs a reducer event against the list.
func (s *ListState) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = Apply(s.visits, ev)
}

// Replace swaps in an authoritative list, typically after a remote refresh.
func (s *ListState) Replace(visits []Visit) {
	next := make([]Visit, len(visits))
	copy(next, visits)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = next
}
