package game

import "errors"

// Domain errors surfaced by sessions and the registry. All of them are
// recoverable by the caller; controllers map them to HTTP statuses.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExists      = errors.New("session id already in use")
	ErrInvalidStake       = errors.New("stake is not a configured tier")
	ErrAlreadyJoined      = errors.New("user already joined this session")
	ErrNotAccepting       = errors.New("session is not accepting players")
	ErrNotActive          = errors.New("session is not active")
	ErrExhausted          = errors.New("no numbers left to draw")
	ErrUnknownParticipant = errors.New("user is not a participant of this session")
	ErrNumberNotOnCard    = errors.New("number is not on the card")
	ErrNumberNotDrawn     = errors.New("number has not been drawn yet")
)
