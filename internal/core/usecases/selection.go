package usecases

import (
	"slices"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// SelectionListener is notified after the suggestion set or the active id
// changes.
type SelectionListener func(suggestions []domain.Suggestion, activeID string)

// SelectionCoordinator holds the single active suggestion id of a compare
// session. Every surface reads from it and changes it only through Select;
// a new response goes through Replace.
//
// The active id is "" exactly when the suggestion set is empty; otherwise it
// names a member of the set. SelectionCoordinator is not safe for concurrent
// use; CompareSession serializes access.
type SelectionCoordinator struct {
	suggestions []domain.Suggestion
	activeID    string

	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn SelectionListener
}

// NewSelectionCoordinator creates a coordinator in the empty state.
func NewSelectionCoordinator() *SelectionCoordinator {
	return &SelectionCoordinator{}
}

// Replace installs a new suggestion set. The first suggestion becomes active
// regardless of the previous selection; an empty set clears the selection.
func (c *SelectionCoordinator) Replace(suggestions []domain.Suggestion) {
	c.suggestions = slices.Clone(suggestions)
	c.activeID = ""
	if len(c.suggestions) > 0 {
		c.activeID = c.suggestions[0].ID
	}
	c.notify()
}

// Select makes id the active suggestion. It returns false and leaves the
// state untouched when id is not in the current set or is already active.
func (c *SelectionCoordinator) Select(id string) bool {
	if id == c.activeID || !c.Has(id) {
		return false
	}
	c.activeID = id
	c.notify()
	return true
}

// Has reports whether id names a suggestion of the current set.
func (c *SelectionCoordinator) Has(id string) bool {
	return c.indexOf(id) >= 0
}

// ActiveID returns the active suggestion id, or "" when the set is empty.
func (c *SelectionCoordinator) ActiveID() string {
	return c.activeID
}

// Active returns the active suggestion and its position in response order.
func (c *SelectionCoordinator) Active() (domain.Suggestion, int, bool) {
	i := c.indexOf(c.activeID)
	if i < 0 {
		return domain.Suggestion{}, -1, false
	}
	return c.suggestions[i], i, true
}

// Suggestions returns the current set in response order.
func (c *SelectionCoordinator) Suggestions() []domain.Suggestion {
	return c.suggestions
}

// Subscribe registers fn. Listeners run in subscription order. The returned
// func removes the listener.
func (c *SelectionCoordinator) Subscribe(fn SelectionListener) func() {
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		c.listeners = slices.DeleteFunc(c.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

func (c *SelectionCoordinator) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.suggestions, func(s domain.Suggestion) bool { return s.ID == id })
}

func (c *SelectionCoordinator) notify() {
	for _, l := range slices.Clone(c.listeners) {
		l.fn(c.suggestions, c.activeID)
	}
}
