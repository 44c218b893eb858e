package game

import (
	"errors"
	"sync"
	"testing"
)

func activeSession(t *testing.T) *Session {
	t.Helper()
	s := newSession(1, 20, 2)
	if _, err := s.Join(100); err != nil {
		t.Fatalf("Join(100): %v", err)
	}
	if _, err := s.Join(200); err != nil {
		t.Fatalf("Join(200): %v", err)
	}
	if !s.TryStart() {
		t.Fatal("TryStart() = false with enough players")
	}
	return s
}

func TestSession_JoinBuildsPool(t *testing.T) {
	s := newSession(1, 20, 2)

	if _, err := s.Join(100); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := s.Join(200); err != nil {
		t.Fatalf("second join: %v", err)
	}
	if got := s.Pool(); got != 40 {
		t.Errorf("pool = %.0f, want 40", got)
	}

	if _, err := s.Join(100); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("rejoin error = %v, want ErrAlreadyJoined", err)
	}

	s.TryStart()
	if _, err := s.Join(300); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("late join error = %v, want ErrNotAccepting", err)
	}
	// A participant rejoining keeps its membership error even once started.
	if _, err := s.Join(100); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("rejoin after start error = %v, want ErrAlreadyJoined", err)
	}
	if got := s.Pool(); got != 40 {
		t.Errorf("pool after rejected joins = %.0f, want 40", got)
	}
}

func TestSession_JoinMarksCenter(t *testing.T) {
	s := newSession(1, 10, 2)
	if _, err := s.Join(100); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !s.participants[100].Marked[freeIndex] {
		t.Error("center cell not pre-marked after join")
	}
}

func TestSession_TryStart(t *testing.T) {
	s := newSession(1, 10, 2)

	if s.TryStart() {
		t.Error("TryStart() with no players = true, want false")
	}
	s.Join(100)
	if s.TryStart() {
		t.Error("TryStart() below min players = true, want false")
	}
	s.Join(200)
	if !s.TryStart() {
		t.Error("TryStart() at min players = false, want true")
	}
	if !s.TryStart() {
		t.Error("TryStart() on active session = false, want true (idempotent)")
	}
	if got := s.Status(); got != StatusActive {
		t.Errorf("status = %q, want %q", got, StatusActive)
	}
}

func TestSession_DrawRequiresActive(t *testing.T) {
	s := newSession(1, 10, 2)
	if _, err := s.Draw(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Draw() on waiting session error = %v, want ErrNotActive", err)
	}
}

func TestSession_DrawCoversAllNumbersOnce(t *testing.T) {
	s := activeSession(t)

	seen := make(map[int]bool)
	for i := 0; i < 75; i++ {
		n, err := s.Draw()
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if n < 1 || n > 75 {
			t.Fatalf("draw %d = %d, want in [1, 75]", i, n)
		}
		if seen[n] {
			t.Fatalf("number %d drawn twice", n)
		}
		seen[n] = true

		snap := s.Snapshot()
		if len(snap.Drawn)+snap.Remaining != 75 {
			t.Fatalf("after draw %d: drawn %d + remaining %d != 75", i, len(snap.Drawn), snap.Remaining)
		}
	}

	if _, err := s.Draw(); !errors.Is(err, ErrExhausted) {
		t.Errorf("76th draw error = %v, want ErrExhausted", err)
	}
}

func TestSession_Mark(t *testing.T) {
	s := activeSession(t)
	card := s.participants[100].Card

	if err := s.Mark(999, card[0]); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("mark by stranger error = %v, want ErrUnknownParticipant", err)
	}
	if err := s.Mark(100, card[0]); !errors.Is(err, ErrNumberNotDrawn) {
		t.Errorf("mark before draw error = %v, want ErrNumberNotDrawn", err)
	}

	// Exhaust the pool so every card number is drawn.
	for {
		if _, err := s.Draw(); err != nil {
			break
		}
	}

	if err := s.Mark(100, card[0]); err != nil {
		t.Fatalf("mark drawn number: %v", err)
	}
	if !s.participants[100].Marked[0] {
		t.Error("mark bit not set")
	}

	// A number from another column range cannot be on more than one cell,
	// so any value outside the card is a reliable miss.
	notOnCard := 0
	for n := 1; n <= 75; n++ {
		if _, ok := card.Contains(n); !ok {
			notOnCard = n
			break
		}
	}
	if err := s.Mark(100, notOnCard); !errors.Is(err, ErrNumberNotOnCard) {
		t.Errorf("mark foreign number error = %v, want ErrNumberNotOnCard", err)
	}
}

func TestCheckLines(t *testing.T) {
	mark := func(indices ...int) [CardSize]bool {
		var m [CardSize]bool
		m[freeIndex] = true
		for _, i := range indices {
			m[i] = true
		}
		return m
	}

	tests := []struct {
		name     string
		marked   [CardSize]bool
		want     bool
		wantLine string
	}{
		{"center only", mark(), false, ""},
		{"full first column", mark(0, 1, 2, 3, 4), true, "column"},
		{"full middle column uses free cell", mark(10, 11, 13, 14), true, "column"},
		{"full top row", mark(0, 5, 10, 15, 20), true, "row"},
		{"full middle row uses free cell", mark(2, 7, 17, 22), true, "row"},
		{"main diagonal", mark(0, 6, 18, 24), true, "diagonal"},
		{"anti diagonal", mark(4, 8, 16, 20), true, "diagonal"},
		{"four corners only", mark(0, 4, 20, 24), false, ""},
		{"broken column", mark(0, 1, 2, 3), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, line, err := checkLines(tt.marked)
			if err != nil {
				t.Fatalf("checkLines: %v", err)
			}
			if got != tt.want || line != tt.wantLine {
				t.Errorf("checkLines = (%v, %q), want (%v, %q)", got, line, tt.want, tt.wantLine)
			}
		})
	}
}

func TestSession_CheckWin(t *testing.T) {
	s := activeSession(t)

	if _, _, err := s.CheckWin(999); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("CheckWin for stranger error = %v, want ErrUnknownParticipant", err)
	}

	won, _, err := s.CheckWin(100)
	if err != nil {
		t.Fatalf("CheckWin: %v", err)
	}
	if won {
		t.Error("fresh card reports a win")
	}

	// Drain the pool and mark participant 100's first column.
	for {
		if _, err := s.Draw(); err != nil {
			break
		}
	}
	card := s.participants[100].Card
	for row := 0; row < 5; row++ {
		if err := s.Mark(100, card[row]); err != nil {
			t.Fatalf("mark %d: %v", card[row], err)
		}
	}

	won, line, err := s.CheckWin(100)
	if err != nil {
		t.Fatalf("CheckWin: %v", err)
	}
	if !won || line != "column" {
		t.Errorf("CheckWin = (%v, %q), want (true, \"column\")", won, line)
	}
}

func TestSession_Finish(t *testing.T) {
	s := activeSession(t)

	if _, err := s.Finish(999, "row"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("finish by stranger error = %v, want ErrUnknownParticipant", err)
	}

	already, err := s.Finish(100, "row")
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if already {
		t.Error("first Finish reported alreadyFinished")
	}
	if got := s.Status(); got != StatusFinished {
		t.Errorf("status = %q, want %q", got, StatusFinished)
	}

	already, err = s.Finish(200, "column")
	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	if !already {
		t.Error("second Finish did not report alreadyFinished")
	}
	if snap := s.Snapshot(); snap.Winner == nil || *snap.Winner != 100 {
		t.Error("second Finish overwrote the winner")
	}

	if _, err := s.Draw(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Draw after finish error = %v, want ErrNotActive", err)
	}
}

func TestSession_ConcurrentDraws(t *testing.T) {
	s := activeSession(t)

	var wg sync.WaitGroup
	results := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := s.Draw(); err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	count := 0
	for n := range results {
		if seen[n] {
			t.Fatalf("number %d drawn twice under concurrency", n)
		}
		seen[n] = true
		count++
	}
	if count != 75 {
		t.Errorf("successful draws = %d, want 75", count)
	}
}
