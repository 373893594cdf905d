package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
)

func validRequest() domain.SuggestionRequest {
	req := usecases.DefaultRequest()
	req.Start = "48.137154,11.576124"
	req.End = "48.370545,10.897790"
	return req
}

func respondWith(suggestions ...domain.Suggestion) *mockRanker {
	return &mockRanker{
		suggestFn: func(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
			return &domain.SuggestionResponse{
				Suggestions: suggestions,
				Meta:        &domain.ResponseMeta{SourcePaths: len(suggestions) + 1, ReturnedSuggestions: len(suggestions)},
			}, nil
		},
	}
}

func newSession(ranker *mockRanker, surface *mockSurface) *usecases.CompareSession {
	return usecases.NewCompareSession("s1", surface, usecases.SessionOptions{Ranker: ranker})
}

func TestCompareSession_InitialView(t *testing.T) {
	s := newSession(&mockRanker{}, newMockSurface())
	v := s.View()

	assert.Equal(t, "s1", v.ID)
	assert.Nil(t, v.ActiveID)
	assert.False(t, v.Responded)
	assert.Empty(t, v.Cards)
	assert.Equal(t, "Request suggestions to render routes on the map.", v.Summary)
	assert.Equal(t, 10.0, v.Map.Camera.Zoom)
}

func TestCompareSession_SubmitRendersAndSelectsFirst(t *testing.T) {
	surface := newMockSurface()
	s := newSession(respondWith(threeRoutes()...), surface)

	v, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotNil(t, v.ActiveID)
	assert.Equal(t, "A", *v.ActiveID)
	assert.Len(t, v.Map.Lines, 3)
	assert.Len(t, v.Chips, 3)
	assert.True(t, v.Chips[0].Active)
	assert.Equal(t, usecases.RoutePalette[1], v.Cards[1].Color)
	assert.Equal(t, "12.3 km", v.Cards[0].Labels.Distance)
	assert.Equal(t, "Active: A (12.3 km, 42 min)", v.Summary)
	assert.Equal(t, 4, v.Meta.SourcePaths)
	assert.False(t, v.Pending)
	assert.Empty(t, v.Error)
}

func TestCompareSession_ScenarioC_CardSelectRefits(t *testing.T) {
	surface := newMockSurface()
	s := newSession(respondWith(threeRoutes()...), surface)
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	camA := surface.Camera()

	changed, v := s.Select(context.Background(), usecases.SurfaceCard, "B")
	require.True(t, changed)

	assert.Equal(t, "B", *v.ActiveID)
	top := v.Map.Lines[len(v.Map.Lines)-1]
	assert.Equal(t, "B", top.SuggestionID)
	assert.NotEqual(t, camA, surface.Camera())

	card, ok := v.Active()
	require.True(t, ok)
	assert.Equal(t, "B", card.ID)
	assert.True(t, v.Chips[1].Active)
	assert.False(t, v.Chips[0].Active)
}

func TestCompareSession_ScenarioD_NewResponseResetsSelection(t *testing.T) {
	ranker := respondWith(threeRoutes()...)
	s := newSession(ranker, newMockSurface())
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	s.Select(context.Background(), usecases.SurfaceChip, "C")

	ranker.suggestFn = respondWith(
		suggestion("X", domain.GeoPoint{Lat: 1, Lon: 1}, domain.GeoPoint{Lat: 2, Lon: 2}),
		suggestion("Y", domain.GeoPoint{Lat: 3, Lon: 3}, domain.GeoPoint{Lat: 4, Lon: 4}),
	).suggestFn
	v, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "X", *v.ActiveID)
	assert.Len(t, v.Cards, 2)
}

func TestCompareSession_ScenarioE_StaleSelectIgnored(t *testing.T) {
	s := newSession(respondWith(threeRoutes()...), newMockSurface())
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	before := s.View()

	var notified int
	s.Subscribe(func(usecases.SessionView) { notified++ })

	changed, after := s.Select(context.Background(), usecases.SurfaceChip, "unknown-id")
	assert.False(t, changed)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, "A", *after.ActiveID)
	assert.Zero(t, notified)
}

func TestCompareSession_FailureLeavesStateUnchanged(t *testing.T) {
	ranker := respondWith(threeRoutes()...)
	s := newSession(ranker, newMockSurface())
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	s.Select(context.Background(), usecases.SurfaceCard, "B")

	ranker.suggestFn = func(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
		return nil, &domain.RankingError{Status: 502, Message: "GraphHopper response missing paths array"}
	}
	v, err := s.Submit(context.Background(), validRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRanking))
	assert.Equal(t, "GraphHopper response missing paths array", v.Error)
	assert.Equal(t, "B", *v.ActiveID)
	assert.Len(t, v.Cards, 3)
	assert.False(t, v.Pending)

	// A later success clears the error.
	ranker.suggestFn = respondWith(threeRoutes()...).suggestFn
	v, err = s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, v.Error)
}

func TestCompareSession_TransportErrorGenericMessage(t *testing.T) {
	ranker := &mockRanker{suggestFn: func(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	s := newSession(ranker, newMockSurface())

	v, err := s.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, "Unknown network error", v.Error)
}

func TestCompareSession_InvalidRequestNotSent(t *testing.T) {
	ranker := respondWith(threeRoutes()...)
	s := newSession(ranker, newMockSurface())

	req := validRequest()
	req.Start = "somewhere"
	v, err := s.Submit(context.Background(), req)

	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, ranker.requests)
	assert.Contains(t, v.Error, "start must be 'lat,lon'")
}

func TestCompareSession_RequestIsNormalized(t *testing.T) {
	ranker := respondWith()
	s := newSession(ranker, newMockSurface())

	req := validRequest()
	req.MaxSuggestions = 42
	req.Preferences.ScenicPreference = 3
	_, err := s.Submit(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, ranker.requests, 1)
	assert.Equal(t, 6, ranker.requests[0].MaxSuggestions)
	assert.Equal(t, 1.0, ranker.requests[0].Preferences.ScenicPreference)
}

func TestCompareSession_PendingGuard(t *testing.T) {
	var s *usecases.CompareSession
	var nestedErr error
	ranker := &mockRanker{}
	ranker.suggestFn = func(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
		// A second submit while the first is in flight.
		assert.True(t, s.View().Pending)
		_, nestedErr = s.Submit(ctx, validRequest())
		return &domain.SuggestionResponse{Suggestions: threeRoutes()}, nil
	}
	s = newSession(ranker, newMockSurface())

	v, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, domain.ErrRequestPending)
	assert.Len(t, ranker.requests, 1)
	assert.False(t, v.Pending)
	assert.Equal(t, "A", *v.ActiveID)
}

func TestCompareSession_EmptyResponse(t *testing.T) {
	surface := newMockSurface()
	s := newSession(respondWith(threeRoutes()...), surface)
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	cam := surface.Camera()

	s.ApplyResponse(context.Background(), &domain.SuggestionResponse{})
	v := s.View()

	assert.Nil(t, v.ActiveID)
	assert.Empty(t, v.Map.Lines)
	assert.True(t, v.Responded)
	assert.Equal(t, cam, v.Map.Camera)
}

// clickSurface hits whatever line target names.
type clickSurface struct {
	*mockSurface
	target string
}

func (c *clickSurface) ClickAt(p domain.GeoPoint) bool {
	if _, ok := c.handlers[c.target]; !ok {
		return false
	}
	c.click(c.target)
	return true
}

func TestCompareSession_MapClickSelects(t *testing.T) {
	surface := &clickSurface{mockSurface: newMockSurface(), target: "C"}
	events := &mockEvents{}
	s := usecases.NewCompareSession("s1", surface, usecases.SessionOptions{
		Ranker: respondWith(threeRoutes()...),
		Events: events,
	})
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	changed, v := s.ClickMap(context.Background(), domain.GeoPoint{Lat: 48.02, Lon: 11.75})
	require.True(t, changed)
	assert.Equal(t, "C", *v.ActiveID)
	assert.Equal(t, "C", v.Map.Lines[len(v.Map.Lines)-1].SuggestionID)
	require.Len(t, events.selected, 1)
	assert.Equal(t, usecases.SurfaceMap, events.selected[0].Surface)

	// Clicking the already active line is a no-op.
	changed, _ = s.ClickMap(context.Background(), domain.GeoPoint{Lat: 48.02, Lon: 11.75})
	assert.False(t, changed)

	surface.target = "nothing-here"
	changed, _ = s.ClickMap(context.Background(), domain.GeoPoint{})
	assert.False(t, changed)
}

func TestCompareSession_MapClickWithoutClickableSurface(t *testing.T) {
	s := newSession(respondWith(threeRoutes()...), newMockSurface())
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	changed, v := s.ClickMap(context.Background(), domain.GeoPoint{})
	assert.False(t, changed)
	assert.Equal(t, "A", *v.ActiveID)
}

func TestCompareSession_ObserversAndEvents(t *testing.T) {
	events := &mockEvents{}
	s := usecases.NewCompareSession("s1", newMockSurface(), usecases.SessionOptions{
		Ranker: respondWith(threeRoutes()...),
		Events: events,
	})

	var views []usecases.SessionView
	unsub := s.Subscribe(func(v usecases.SessionView) { views = append(views, v) })

	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	s.Select(context.Background(), usecases.SurfaceChip, "B")
	s.Select(context.Background(), usecases.SurfaceChip, "B")

	// pending, response, selection
	require.Len(t, views, 3)
	assert.True(t, views[0].Pending)
	assert.Equal(t, "A", *views[1].ActiveID)
	assert.Equal(t, "B", *views[2].ActiveID)

	require.Len(t, events.replaced, 1)
	assert.Equal(t, []string{"A", "B", "C"}, events.replaced[0].SuggestionIDs)
	require.Len(t, events.selected, 1)
	assert.Equal(t, domain.SelectionChangedEvent{
		Time:      events.selected[0].Time,
		SessionID: "s1",
		Surface:   usecases.SurfaceChip,
		PrevID:    "A",
		ActiveID:  "B",
	}, events.selected[0])

	unsub()
	s.Select(context.Background(), usecases.SurfaceChip, "C")
	assert.Len(t, views, 3)
}

func TestCompareSession_Close(t *testing.T) {
	surface := newMockSurface()
	s := newSession(respondWith(threeRoutes()...), surface)
	_, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	s.Close()
	assert.Empty(t, surface.lines)
	assert.ErrorIs(t, s.BeginRequest(), domain.ErrSessionNotFound)

	changed, _ := s.Select(context.Background(), usecases.SurfaceCard, "B")
	assert.False(t, changed)
}
