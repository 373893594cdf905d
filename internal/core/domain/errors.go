package domain

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired compare sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLimit is returned when no more sessions can be opened.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrRequestPending is returned when a ranking request is already in flight.
	ErrRequestPending = errors.New("a suggestion request is already pending")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRanking wraps failures of the ranking backend.
	ErrRanking = errors.New("ranking backend")
)

// RankingError is a failed ranking request. Message is the user-visible text:
// the backend's response body, or a generic message when it sent none.
type RankingError struct {
	Status  int // 0 for transport failures
	Message string
}

func (e *RankingError) Error() string { return e.Message }

func (e *RankingError) Unwrap() error { return ErrRanking }
