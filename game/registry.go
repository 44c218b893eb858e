package game

import (
	"sync"
	"time"
)

// Registry owns every live session. Session IDs are monotonic and never
// reused for the lifetime of the process.
type Registry struct {
	mu         sync.Mutex
	sessions   map[uint]*Session
	nextID     uint
	tiers      map[int]bool
	minPlayers int
}

// NewRegistry builds a registry accepting the given stake tiers.
func NewRegistry(tiers []int, minPlayers int) *Registry {
	allowed := make(map[int]bool, len(tiers))
	for _, t := range tiers {
		allowed[t] = true
	}
	return &Registry{
		sessions:   make(map[uint]*Session),
		tiers:      allowed,
		minPlayers: minPlayers,
	}
}

// ValidStake reports whether the stake is a configured tier. The tier set is
// fixed at construction, so no locking is needed.
func (r *Registry) ValidStake(stake int) bool {
	return r.tiers[stake]
}

// Create opens a new waiting session for the given stake tier with a
// registry-assigned monotonic id.
func (r *Registry) Create(stake int) (*Session, error) {
	if !r.tiers[stake] {
		return nil, ErrInvalidStake
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s := newSession(r.nextID, stake, r.minPlayers)
	r.sessions[s.ID] = s
	return s, nil
}

// CreateWithID opens a session under an externally assigned id, typically
// the archive row's primary key so ids stay unique across restarts.
func (r *Registry) CreateWithID(id uint, stake int) (*Session, error) {
	if !r.tiers[stake] {
		return nil, ErrInvalidStake
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return nil, ErrSessionExists
	}
	if id > r.nextID {
		r.nextID = id
	}
	s := newSession(id, stake, r.minPlayers)
	r.sessions[id] = s
	return s, nil
}

// Get looks up a live session.
func (r *Registry) Get(id uint) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// PruneFinished drops finished sessions older than the cutoff and returns
// how many were removed. The janitor calls this on a schedule; the durable
// archive row outlives the in-memory session.
func (r *Registry) PruneFinished(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.finishedBefore(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
