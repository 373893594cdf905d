package domain

import "time"

// SuggestionsReplacedEvent is emitted when a response replaces a session's
// suggestion set.
type SuggestionsReplacedEvent struct {
	Time          time.Time `json:"time"`
	SessionID     string    `json:"session_id"`
	SuggestionIDs []string  `json:"suggestion_ids"`
	ActiveID      string    `json:"active_id,omitempty"`
}

// SelectionChangedEvent is emitted when a surface changes the active suggestion.
type SelectionChangedEvent struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	Surface   string    `json:"surface"`
	PrevID    string    `json:"prev_id,omitempty"`
	ActiveID  string    `json:"active_id"`
}
