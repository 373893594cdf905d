package ports

import (
	"context"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// Surface is the drawable map a RouteLayer owns exclusively. Lines and
// markers are drawn in call order; later calls render on top.
type Surface interface {
	// Clear removes every line and marker. The camera is kept.
	Clear()
	// AddLine draws a styled polyline. onClick is invoked when the line is
	// activated on the surface.
	AddLine(line domain.RouteLine, onClick func())
	// AddMarker draws a point marker.
	AddMarker(marker domain.Marker)
	// Size returns the drawable area in pixels.
	Size() (width, height int)
	// FitBounds moves the camera to the given fit.
	FitBounds(fit domain.ViewportFit)
	// Camera returns the current camera.
	Camera() domain.Camera
}

// Ranker requests ranked suggestions from the ranking backend.
type Ranker interface {
	Suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error)
}

// EventPublisher exports session events to a message broker.
type EventPublisher interface {
	PublishSuggestionsReplaced(ctx context.Context, event *domain.SuggestionsReplacedEvent) error
	PublishSelectionChanged(ctx context.Context, event *domain.SelectionChangedEvent) error
}

// Clickable is implemented by surfaces that dispatch pointer input to the
// lines drawn on them.
type Clickable interface {
	// ClickAt invokes the click handler of the topmost line near p and
	// reports whether one was hit.
	ClickAt(p domain.GeoPoint) bool
}
