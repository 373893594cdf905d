package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/openroute/internal/core/domain"
)

const (
	DefaultMaxSuggestions = 3
	MaxSuggestionsLimit   = 6
)

// DefaultRequest returns a request with the backend's default preferences.
// Decoding a JSON body into it keeps the defaults for omitted fields.
func DefaultRequest() domain.SuggestionRequest {
	return domain.SuggestionRequest{
		MaxSuggestions: DefaultMaxSuggestions,
		Preferences: domain.Preferences{
			FitnessLevel:     0.5,
			ScenicPreference: 0.5,
			AvoidMainRoads:   0.5,
			TimePriority:     0.5,
		},
	}
}

// ParseLatLon parses "lat,lon".
func ParseLatLon(s string) (domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("expected 'lat,lon', got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("parse longitude: %w", err)
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("coordinate %q out of range", s)
	}
	return p, nil
}

// NormalizeRequest validates start and end and clamps max_suggestions and
// the preference weights into their ranges.
func NormalizeRequest(req domain.SuggestionRequest) (domain.SuggestionRequest, error) {
	if _, err := ParseLatLon(req.Start); err != nil {
		return req, fmt.Errorf("%w: start must be 'lat,lon'", domain.ErrInvalidRequest)
	}
	if _, err := ParseLatLon(req.End); err != nil {
		return req, fmt.Errorf("%w: end must be 'lat,lon'", domain.ErrInvalidRequest)
	}

	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
	if req.MaxSuggestions == 0 {
		req.MaxSuggestions = DefaultMaxSuggestions
	}
	req.MaxSuggestions = min(max(req.MaxSuggestions, 1), MaxSuggestionsLimit)

	req.Preferences = domain.Preferences{
		FitnessLevel:     clamp01(req.Preferences.FitnessLevel),
		ScenicPreference: clamp01(req.Preferences.ScenicPreference),
		AvoidMainRoads:   clamp01(req.Preferences.AvoidMainRoads),
		TimePriority:     clamp01(req.Preferences.TimePriority),
	}
	return req, nil
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
