package fusion

import "sync"

// TargetState is the goal-scoped observation shared between the fusion
// writer and the control loop. Both sides hold the lock only to copy.
type TargetState struct {
	mu     sync.Mutex
	obs    Observation
	writes uint64
}

func NewTargetState() *TargetState {
	return &TargetState{}
}

// Store replaces the observation wholesale.
func (s *TargetState) Store(obs Observation) {
	s.mu.Lock()
	s.obs = obs
	s.writes++
	s.mu.Unlock()
}

// Snapshot returns a copy of the current observation.
func (s *TargetState) Snapshot() Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obs
}

// Writes returns how many observations have been stored.
func (s *TargetState) Writes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
