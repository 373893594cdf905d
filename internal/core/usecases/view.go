package usecases

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/pkg/units"
)

// Chip is one entry of the route chip strip.
type Chip struct {
	ID     string `json:"id"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
}

// CardLabels holds the formatted metrics of a card.
type CardLabels struct {
	Score     string `json:"score"`
	Distance  string `json:"distance"`
	ETA       string `json:"eta"`
	Ascent    string `json:"ascent"`
	Scenic    string `json:"scenic"`
	MainRoads string `json:"main_roads"`
}

// Card is one entry of the suggestion card list.
type Card struct {
	ID          string                   `json:"id"`
	Index       int                      `json:"index"`
	Color       string                   `json:"color"`
	Active      bool                     `json:"active"`
	Drawable    bool                     `json:"drawable"`
	Score       float64                  `json:"score"`
	Explanation string                   `json:"explanation"`
	Metrics     domain.SuggestionMetrics `json:"metrics"`
	Labels      CardLabels               `json:"labels"`
	Route       json.RawMessage          `json:"route,omitempty"`
}

// MapView is the rendered state of the session's map surface.
type MapView struct {
	Camera  domain.Camera      `json:"camera"`
	Lines   []domain.RouteLine `json:"lines"`
	Markers []domain.Marker    `json:"markers"`
}

// SessionView is an immutable snapshot of a compare session that every
// surface renders from.
type SessionView struct {
	ID        string               `json:"id"`
	ActiveID  *string              `json:"active_id"`
	Pending   bool                 `json:"pending"`
	Error     string               `json:"error,omitempty"`
	Responded bool                 `json:"responded"`
	Meta      *domain.ResponseMeta `json:"meta,omitempty"`
	Summary   string               `json:"summary"`
	Chips     []Chip               `json:"chips"`
	Cards     []Card               `json:"cards"`
	Map       MapView              `json:"map"`
	Version   uint64               `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Card returns the card for id.
func (v SessionView) Card(id string) (Card, bool) {
	for _, c := range v.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Active returns the card of the active suggestion.
func (v SessionView) Active() (Card, bool) {
	if v.ActiveID == nil {
		return Card{}, false
	}
	return v.Card(*v.ActiveID)
}

const emptySummary = "Request suggestions to render routes on the map."

func buildCards(suggestions []domain.Suggestion, activeID string, skipped []string) []Card {
	notDrawn := make(map[string]bool, len(skipped))
	for _, id := range skipped {
		notDrawn[id] = true
	}

	cards := make([]Card, 0, len(suggestions))
	for i, s := range suggestions {
		cards = append(cards, Card{
			ID:          s.ID,
			Index:       i,
			Color:       RouteColor(i),
			Active:      s.ID == activeID,
			Drawable:    !notDrawn[s.ID],
			Score:       s.Score,
			Explanation: s.Explanation,
			Metrics:     s.Metrics,
			Labels: CardLabels{
				Score:     "score " + units.Score(s.Score),
				Distance:  units.Km(s.Metrics.DistanceM),
				ETA:       units.Mins(s.Metrics.DurationS),
				Ascent:    units.Meters(s.Metrics.AscendM),
				Scenic:    units.Ratio(s.Metrics.ScenicRatio),
				MainRoads: units.Ratio(s.Metrics.MajorRoadRatio),
			},
			Route: s.Route,
		})
	}
	return cards
}

func buildChips(suggestions []domain.Suggestion, activeID string) []Chip {
	chips := make([]Chip, 0, len(suggestions))
	for i, s := range suggestions {
		chips = append(chips, Chip{ID: s.ID, Color: RouteColor(i), Active: s.ID == activeID})
	}
	return chips
}

func summary(active domain.Suggestion, ok bool) string {
	if !ok {
		return emptySummary
	}
	return fmt.Sprintf("Active: %s (%s, %s)", active.ID, units.Km(active.Metrics.DistanceM), units.Mins(active.Metrics.DurationS))
}
