package game

import (
	"math/rand"
	"sync"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Participant is one player's view of a session: an immutable card plus a
// mark bitmap. The center cell starts marked.
type Participant struct {
	UserID int64
	Card   Card
	Marked [CardSize]bool
}

// Session owns the state of one running game. All mutating operations are
// serialized by the session's own mutex; sessions never contend with each
// other.
type Session struct {
	ID        uint
	Stake     int
	CreatedAt time.Time

	mu           sync.RWMutex
	status       Status
	participants map[int64]*Participant
	drawn        []int
	drawnSet     map[int]bool
	remaining    []int
	pool         float64
	winner       *int64
	winnerLine   string
	minPlayers   int
	finishedAt   time.Time
}

// Snapshot is a consistent read of a session's public state.
type Snapshot struct {
	ID        uint      `json:"session_id"`
	Stake     int       `json:"stake"`
	Status    Status    `json:"status"`
	Players   int       `json:"players"`
	Pool      float64   `json:"pool"`
	Drawn     []int     `json:"drawn_numbers"`
	Remaining int       `json:"remaining"`
	Winner    *int64    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newSession(id uint, stake, minPlayers int) *Session {
	remaining := make([]int, 75)
	for i := range remaining {
		remaining[i] = i + 1
	}
	return &Session{
		ID:           id,
		Stake:        stake,
		CreatedAt:    time.Now(),
		status:       StatusWaiting,
		participants: make(map[int64]*Participant),
		drawnSet:     make(map[int]bool),
		remaining:    remaining,
		minPlayers:   minPlayers,
	}
}

// Join admits a user while the session is still waiting, assigns a fresh
// card and adds the stake to the pool.
func (s *Session) Join(userID int64) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[userID]; ok {
		return Card{}, ErrAlreadyJoined
	}
	if s.status != StatusWaiting {
		return Card{}, ErrNotAccepting
	}

	p := &Participant{UserID: userID, Card: GenerateCard()}
	p.Marked[freeIndex] = true
	s.participants[userID] = p
	s.pool += float64(s.Stake)
	return p.Card, nil
}

// TryStart moves the session to active once enough players joined. Calling
// it on an already active session is a no-op reporting success.
func (s *Session) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusActive {
		return true
	}
	if s.status != StatusWaiting || len(s.participants) < s.minPlayers {
		return false
	}
	s.status = StatusActive
	return true
}

// Draw removes one number uniformly at random from the remaining pool and
// appends it to the drawn history. A number is never drawn twice.
func (s *Session) Draw() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return 0, ErrNotActive
	}
	if len(s.remaining) == 0 {
		return 0, ErrExhausted
	}

	i := rand.Intn(len(s.remaining))
	n := s.remaining[i]
	last := len(s.remaining) - 1
	s.remaining[i] = s.remaining[last]
	s.remaining = s.remaining[:last]
	s.drawn = append(s.drawn, n)
	s.drawnSet[n] = true
	return n, nil
}

// Mark sets the mark bit for a number on the participant's card. The number
// must already have been drawn; a client cannot mark ahead of the caller.
func (s *Session) Mark(userID int64, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return ErrNotActive
	}
	p, ok := s.participants[userID]
	if !ok {
		return ErrUnknownParticipant
	}
	idx, ok := p.Card.Contains(number)
	if !ok {
		return ErrNumberNotOnCard
	}
	if !s.drawnSet[number] {
		return ErrNumberNotDrawn
	}
	p.Marked[idx] = true
	return nil
}

// CheckWin reports whether the participant has a fully marked row, column
// or diagonal, and which kind of line completed. Pure read.
func (s *Session) CheckWin(userID int64) (bool, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[userID]
	if !ok {
		return false, "", ErrUnknownParticipant
	}
	return checkLines(p.Marked)
}

func checkLines(marked [CardSize]bool) (bool, string, error) {
	// Columns: contiguous runs of 5 in column-major layout.
	for col := 0; col < 5; col++ {
		full := true
		for row := 0; row < 5; row++ {
			if !marked[col*5+row] {
				full = false
				break
			}
		}
		if full {
			return true, "column", nil
		}
	}
	for row := 0; row < 5; row++ {
		full := true
		for col := 0; col < 5; col++ {
			if !marked[col*5+row] {
				full = false
				break
			}
		}
		if full {
			return true, "row", nil
		}
	}
	diag, anti := true, true
	for i := 0; i < 5; i++ {
		if !marked[i*5+i] {
			diag = false
		}
		if !marked[i*5+(4-i)] {
			anti = false
		}
	}
	if diag || anti {
		return true, "diagonal", nil
	}
	return false, "", nil
}

// Finish transitions the session to finished and records the winner. It is
// idempotent: the second and later calls report alreadyFinished so the
// caller does not pay out twice.
func (s *Session) Finish(winnerID int64, line string) (alreadyFinished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[winnerID]; !ok {
		return false, ErrUnknownParticipant
	}
	if s.status == StatusFinished {
		return true, nil
	}
	s.status = StatusFinished
	s.winner = &winnerID
	s.winnerLine = line
	s.finishedAt = time.Now()
	return false, nil
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Pool returns the stakes collected so far.
func (s *Session) Pool() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// ParticipantIDs lists the admitted users.
func (s *Session) ParticipantIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.participants))
	for id := range s.participants {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns a consistent copy of the public state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		ID:        s.ID,
		Stake:     s.Stake,
		Status:    s.status,
		Players:   len(s.participants),
		Pool:      s.pool,
		Drawn:     append([]int(nil), s.drawn...),
		Remaining: len(s.remaining),
		Winner:    s.winner,
		CreatedAt: s.CreatedAt,
	}
}

func (s *Session) finishedBefore(cutoff time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusFinished && s.finishedAt.Before(cutoff)
}
