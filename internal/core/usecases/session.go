package usecases

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/ports"
	"github.com/samirrijal/openroute/internal/pkg/geospatial"
	"github.com/samirrijal/openroute/internal/pkg/metrics"
	"github.com/samirrijal/openroute/internal/pkg/telemetry"
)

// Selection surfaces.
const (
	SurfaceChip = "chip"
	SurfaceCard = "card"
	SurfaceMap  = "map"
	SurfaceAPI  = "api"
)

// SessionOptions configures a CompareSession.
type SessionOptions struct {
	Ranker ports.Ranker
	Fitter *geospatial.Fitter
	Style  LayerStyle
	Events ports.EventPublisher // optional
	Now    func() time.Time     // defaults to time.Now
}

// ViewObserver receives the session view after every settled event.
type ViewObserver func(SessionView)

// CompareSession is one view mount: a SelectionCoordinator, the RouteLayer
// drawing on the session's surface and the state of the ranking request.
// Events are applied one at a time under the session lock, so there is only
// ever one render pass in flight.
type CompareSession struct {
	id   string
	opts SessionOptions

	mu        sync.Mutex
	coord     *SelectionCoordinator
	layer     *RouteLayer
	surface   ports.Surface
	unsub     func()
	pending   bool
	lastErr   string
	responded bool
	meta      *domain.ResponseMeta
	version   uint64
	updatedAt time.Time
	lastUsed  time.Time
	closed    bool

	// selection changes made by surface callbacks during the current event
	queued []domain.SelectionChangedEvent

	observers []observerEntry
	nextObs   int
}

type observerEntry struct {
	id int
	fn ViewObserver
}

// NewCompareSession mounts a session on surface.
func NewCompareSession(id string, surface ports.Surface, opts SessionOptions) *CompareSession {
	if opts.Fitter == nil {
		opts.Fitter = geospatial.NewFitter(geospatial.DefaultFitOptions())
	}
	if opts.Style == (LayerStyle{}) {
		opts.Style = DefaultLayerStyle()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now()
	s := &CompareSession{
		id:        id,
		opts:      opts,
		coord:     NewSelectionCoordinator(),
		surface:   surface,
		updatedAt: now,
		lastUsed:  now,
	}
	s.layer = NewRouteLayer(surface, opts.Fitter, opts.Style, func(id string) {
		// Surface callbacks run inside an event, with s.mu held.
		s.selectLocked(SurfaceMap, id)
	})
	s.unsub = s.coord.Subscribe(func(suggestions []domain.Suggestion, activeID string) {
		s.layer.Render(suggestions, activeID)
	})
	return s
}

// ID returns the session id.
func (s *CompareSession) ID() string {
	return s.id
}

// Surface returns the surface the session draws on.
func (s *CompareSession) Surface() ports.Surface {
	return s.surface
}

// Submit validates req, sends it to the ranking backend and applies the
// outcome. A failure is recorded as the session's error message and leaves
// suggestions and selection unchanged. Submitting while a request is in
// flight fails with domain.ErrRequestPending.
func (s *CompareSession) Submit(ctx context.Context, req domain.SuggestionRequest) (SessionView, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSessionSubmit)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrSessionID, s.id))

	norm, err := NormalizeRequest(req)
	if err != nil {
		s.fail(err, false)
		return s.View(), err
	}
	if s.opts.Ranker == nil {
		return s.View(), errors.New("no ranking backend configured")
	}
	if err := s.BeginRequest(); err != nil {
		return s.View(), err
	}

	resp, err := s.opts.Ranker.Suggest(ctx, norm)
	if err != nil {
		s.ApplyFailure(err)
		return s.View(), err
	}
	return s.ApplyResponse(ctx, resp), nil
}

// BeginRequest marks a ranking request as in flight and clears the previous
// error.
func (s *CompareSession) BeginRequest() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if s.pending {
		s.mu.Unlock()
		return domain.ErrRequestPending
	}
	s.pending = true
	s.lastErr = ""
	s.bumpLocked()
	view, obs := s.viewLocked(), s.observersLocked()
	s.mu.Unlock()

	notify(obs, view)
	return nil
}

// ApplyResponse replaces the suggestion set with the response's. The first
// suggestion becomes active.
func (s *CompareSession) ApplyResponse(ctx context.Context, resp *domain.SuggestionResponse) SessionView {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SessionView{ID: s.id}
	}
	s.pending = false
	s.lastErr = ""
	s.responded = true

	var suggestions []domain.Suggestion
	if resp != nil {
		suggestions = resp.Suggestions
		s.meta = resp.Meta
	}
	s.coord.Replace(suggestions)
	s.bumpLocked()

	event := &domain.SuggestionsReplacedEvent{
		Time:      s.updatedAt,
		SessionID: s.id,
		ActiveID:  s.coord.ActiveID(),
	}
	for _, sg := range suggestions {
		event.SuggestionIDs = append(event.SuggestionIDs, sg.ID)
	}
	view, obs := s.viewLocked(), s.observersLocked()
	s.mu.Unlock()

	slog.Info("suggestions replaced", "session", s.id, "count", len(suggestions), "active", event.ActiveID)
	if s.opts.Events != nil {
		if err := s.opts.Events.PublishSuggestionsReplaced(ctx, event); err != nil {
			slog.Warn("publish suggestions replaced", "session", s.id, "error", err)
		}
	}
	notify(obs, view)
	return view
}

// ApplyFailure records a failed request. Suggestions and selection stay as
// they were.
func (s *CompareSession) ApplyFailure(err error) {
	s.fail(err, true)
}

func (s *CompareSession) fail(err error, settlesRequest bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if settlesRequest {
		s.pending = false
	}
	s.lastErr = userMessage(err)
	s.bumpLocked()
	view, obs := s.viewLocked(), s.observersLocked()
	s.mu.Unlock()

	slog.Warn("suggestion request failed", "session", s.id, "error", err)
	notify(obs, view)
}

// Select is the single entry point for selection intents from any surface.
// It reports whether the active suggestion changed; unknown ids are ignored.
func (s *CompareSession) Select(ctx context.Context, surface, id string) (bool, SessionView) {
	return s.event(ctx, func() {
		s.selectLocked(surface, id)
	})
}

// ClickMap activates whatever line the map surface has under p. It reports
// whether the active suggestion changed.
func (s *CompareSession) ClickMap(ctx context.Context, p domain.GeoPoint) (bool, SessionView) {
	return s.event(ctx, func() {
		if c, ok := s.surface.(ports.Clickable); ok {
			c.ClickAt(p)
		}
	})
}

// View returns a snapshot of the session.
func (s *CompareSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe registers fn to receive the view after every settled event. The
// returned func removes it.
func (s *CompareSession) Subscribe(fn ViewObserver) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool { return e.id == id })
	}
}

// Close unmounts the session and releases its surface.
func (s *CompareSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.unsub()
	s.layer.Release()
	s.observers = nil
}

// Touch records activity for idle expiry.
func (s *CompareSession) Touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// IdleSince returns the time of the last activity.
func (s *CompareSession) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// event runs fn as one settled event and notifies observers if the
// selection changed.
func (s *CompareSession) event(ctx context.Context, fn func()) (bool, SessionView) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, SessionView{ID: s.id}
	}
	before := s.version
	fn()
	changed := s.version != before
	queued := s.queued
	s.queued = nil
	view, obs := s.viewLocked(), s.observersLocked()
	s.mu.Unlock()

	if s.opts.Events != nil {
		for i := range queued {
			if err := s.opts.Events.PublishSelectionChanged(ctx, &queued[i]); err != nil {
				slog.Warn("publish selection changed", "session", s.id, "error", err)
			}
		}
	}
	if changed {
		notify(obs, view)
	}
	return changed, view
}

func (s *CompareSession) selectLocked(surface, id string) {
	prev := s.coord.ActiveID()
	switch {
	case !s.coord.Has(id):
		metrics.SelectionIntents.WithLabelValues(surface, "stale").Inc()
		slog.Debug("stale selection ignored", "session", s.id, "surface", surface, "id", id)
		return
	case !s.coord.Select(id):
		metrics.SelectionIntents.WithLabelValues(surface, "unchanged").Inc()
		return
	}
	metrics.SelectionIntents.WithLabelValues(surface, "applied").Inc()
	s.bumpLocked()
	s.queued = append(s.queued, domain.SelectionChangedEvent{
		Time:      s.updatedAt,
		SessionID: s.id,
		Surface:   surface,
		PrevID:    prev,
		ActiveID:  id,
	})
}

func (s *CompareSession) bumpLocked() {
	s.version++
	s.updatedAt = s.opts.Now()
	s.lastUsed = s.updatedAt
}

func (s *CompareSession) viewLocked() SessionView {
	suggestions := s.coord.Suggestions()
	activeID := s.coord.ActiveID()
	last := s.layer.Last()
	active, _, ok := s.coord.Active()

	v := SessionView{
		ID:        s.id,
		Pending:   s.pending,
		Error:     s.lastErr,
		Responded: s.responded,
		Meta:      s.meta,
		Summary:   summary(active, ok),
		Chips:     buildChips(suggestions, activeID),
		Cards:     buildCards(suggestions, activeID, last.Skipped),
		Map: MapView{
			Camera:  s.surface.Camera(),
			Lines:   slices.Clone(last.Lines),
			Markers: slices.Clone(last.Markers),
		},
		Version:   s.version,
		UpdatedAt: s.updatedAt,
	}
	if activeID != "" {
		v.ActiveID = &activeID
	}
	return v
}

func (s *CompareSession) observersLocked() []ViewObserver {
	out := make([]ViewObserver, 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o.fn)
	}
	return out
}

func notify(obs []ViewObserver, view SessionView) {
	for _, fn := range obs {
		fn(view)
	}
}

// userMessage turns a request failure into the text shown to the user.
func userMessage(err error) string {
	var rerr *domain.RankingError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	if err == nil {
		return ""
	}
	return "Unknown network error"
}
