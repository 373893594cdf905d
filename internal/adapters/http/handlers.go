package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
)

// SessionCreated is the response of POST /v1/sessions.
type SessionCreated struct {
	ID   string               `json:"id"`
	View usecases.SessionView `json:"view"`
}

// SessionSummary is one entry of GET /v1/sessions.
type SessionSummary struct {
	ID          string    `json:"id"`
	ActiveID    *string   `json:"active_id"`
	Suggestions int       `json:"suggestions"`
	Pending     bool      `json:"pending"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SelectRequest is the body of POST /v1/sessions/:id/select.
type SelectRequest struct {
	ID      string `json:"id"`
	Surface string `json:"surface"` // chip | card | map | api (default)
}

// ClickRequest is the body of POST /v1/sessions/:id/map/click.
type ClickRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// SelectionResult reports whether a selection intent changed the active
// suggestion.
type SelectionResult struct {
	Changed bool                 `json:"changed"`
	View    usecases.SessionView `json:"view"`
}

var selectSurfaces = map[string]bool{
	usecases.SurfaceChip: true,
	usecases.SurfaceCard: true,
	usecases.SurfaceMap:  true,
	usecases.SurfaceAPI:  true,
}

// geoJSONScene is implemented by surfaces that can export their drawing.
type geoJSONScene interface {
	FeatureCollection() *geojson.FeatureCollection
}

// CreateSessionHandler opens a compare session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Create()
		if err != nil {
			return errDomain(c, err, nil)
		}
		c.Location("/v1/sessions/" + s.ID())
		return c.Status(fiber.StatusCreated).JSON(SessionCreated{ID: s.ID(), View: s.View()})
	}
}

// ListSessionsHandler returns a page of open sessions.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		sessions := deps.Sessions.List()
		total := len(sessions)
		page := pageBounds(offset, limit, total)

		out := make([]SessionSummary, 0, page.end-page.start)
		for _, s := range sessions[page.start:page.end] {
			v := s.View()
			out = append(out, SessionSummary{
				ID:          v.ID,
				ActiveID:    v.ActiveID,
				Suggestions: len(v.Cards),
				Pending:     v.Pending,
				UpdatedAt:   v.UpdatedAt,
			})
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: out, Pagination: pg})
	}
}

// GetSessionHandler returns the current view of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err, nil)
		}
		return c.JSON(s.View())
	}
}

// DeleteSessionHandler closes a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Params("id")); err != nil {
			return errDomain(c, err, nil)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SubmitSuggestionsHandler sends the body as a ranking request on behalf of
// the session. Omitted fields keep their defaults. On a ranking failure the
// error body carries the session view, whose suggestions are unchanged.
func SubmitSuggestionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err, nil)
		}

		req := usecases.DefaultRequest()
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.requestTimeout())
		defer cancel()

		LoggerFromCtx(ctx).Debug("submitting suggestion request",
			"session", s.ID(), "start", req.Start, "end", req.End, "max", req.MaxSuggestions)

		view, err := s.Submit(ctx, req)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrRequestPending):
				return errDomain(c, err, nil)
			default:
				return errDomain(c, err, &view)
			}
		}
		return c.JSON(view)
	}
}

// SelectHandler applies a selection intent. Unknown ids are not an error:
// the response reports changed=false.
func SelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err, nil)
		}

		var body SelectRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		body.ID = strings.TrimSpace(body.ID)
		if body.ID == "" {
			return errBadRequest(c, "id is required")
		}
		if body.Surface == "" {
			body.Surface = usecases.SurfaceAPI
		}
		if !selectSurfaces[body.Surface] {
			return errBadRequest(c, "surface must be one of chip, card, map, api")
		}

		changed, view := s.Select(c.UserContext(), body.Surface, body.ID)
		return c.JSON(SelectionResult{Changed: changed, View: view})
	}
}

// MapClickHandler hit-tests the session's map at a point and selects the
// topmost route line there.
func MapClickHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err, nil)
		}

		var body ClickRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if body.Lat == nil || body.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}
		p := domain.GeoPoint{Lat: *body.Lat, Lon: *body.Lon}
		if !p.Valid() {
			return errBadRequest(c, "lat must be within [-90,90] and lon within [-180,180]")
		}

		changed, view := s.ClickMap(c.UserContext(), p)
		return c.JSON(SelectionResult{Changed: changed, View: view})
	}
}

// SceneHandler exports the session's map as a GeoJSON FeatureCollection in
// draw order.
func SceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errDomain(c, err, nil)
		}
		sc, ok := s.Surface().(geoJSONScene)
		if !ok {
			return errInternal(c, "session surface cannot be exported")
		}

		data, err := sc.FeatureCollection().MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
