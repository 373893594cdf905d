package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the session manager.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	cameraType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Camera",
		Fields: graphql.Fields{
			"lat":  &graphql.Field{Type: graphql.Float},
			"lon":  &graphql.Field{Type: graphql.Float},
			"zoom": &graphql.Field{Type: graphql.Float},
		},
	})

	chipType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Chip",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"color":  &graphql.Field{Type: graphql.String},
			"active": &graphql.Field{Type: graphql.Boolean},
		},
	})

	cardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Card",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"index":          &graphql.Field{Type: graphql.Int},
			"color":          &graphql.Field{Type: graphql.String},
			"active":         &graphql.Field{Type: graphql.Boolean},
			"drawable":       &graphql.Field{Type: graphql.Boolean},
			"score":          &graphql.Field{Type: graphql.Float},
			"explanation":    &graphql.Field{Type: graphql.String},
			"distance_m":     &graphql.Field{Type: graphql.Float},
			"duration_s":     &graphql.Field{Type: graphql.Float},
			"ascend_m":       &graphql.Field{Type: graphql.Float},
			"distance_label": &graphql.Field{Type: graphql.String},
			"eta_label":      &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"active_id": &graphql.Field{Type: graphql.String},
			"pending":   &graphql.Field{Type: graphql.Boolean},
			"error":     &graphql.Field{Type: graphql.String},
			"summary":   &graphql.Field{Type: graphql.String},
			"version":   &graphql.Field{Type: graphql.Int},
			"camera":    &graphql.Field{Type: cameraType},
			"chips":     &graphql.Field{Type: graphql.NewList(chipType)},
			"cards":     &graphql.Field{Type: graphql.NewList(cardType)},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SelectionResult",
		Fields: graphql.Fields{
			"changed": &graphql.Field{Type: graphql.Boolean},
			"session": &graphql.Field{Type: sessionType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current state of a compare session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Sessions.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return viewToMap(s.View()), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"selectSuggestion": &graphql.Field{
				Type:        selectionType,
				Description: "Make a suggestion active. Unknown ids leave the session unchanged.",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"surface": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: usecases.SurfaceAPI},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Sessions.Get(p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					surface := p.Args["surface"].(string)
					if !selectSurfaces[surface] {
						return nil, errors.New("surface must be one of chip, card, map, api")
					}
					changed, view := s.Select(p.Context, surface, p.Args["id"].(string))
					return map[string]interface{}{
						"changed": changed,
						"session": viewToMap(view),
					}, nil
				},
			},
			"requestSuggestions": &graphql.Field{
				Type:        sessionType,
				Description: "Ask the ranking backend for suggestions between two 'lat,lon' points",
				Args: graphql.FieldConfigArgument{
					"session":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"start":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"end":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"max_suggestions": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: usecases.DefaultMaxSuggestions},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Sessions.Get(p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					req := usecases.DefaultRequest()
					req.Start = p.Args["start"].(string)
					req.End = p.Args["end"].(string)
					req.MaxSuggestions = p.Args["max_suggestions"].(int)

					ctx, cancel := context.WithTimeout(p.Context, deps.requestTimeout())
					defer cancel()
					view, err := s.Submit(ctx, req)
					if err != nil {
						var rerr *domain.RankingError
						if errors.As(err, &rerr) {
							return nil, errors.New(rerr.Message)
						}
						return nil, err
					}
					return viewToMap(view), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// viewToMap flattens a session view for the default resolvers.
func viewToMap(v usecases.SessionView) map[string]interface{} {
	chips := make([]map[string]interface{}, 0, len(v.Chips))
	for _, ch := range v.Chips {
		chips = append(chips, map[string]interface{}{
			"id":     ch.ID,
			"color":  ch.Color,
			"active": ch.Active,
		})
	}
	cards := make([]map[string]interface{}, 0, len(v.Cards))
	for _, cd := range v.Cards {
		cards = append(cards, map[string]interface{}{
			"id":             cd.ID,
			"index":          cd.Index,
			"color":          cd.Color,
			"active":         cd.Active,
			"drawable":       cd.Drawable,
			"score":          cd.Score,
			"explanation":    cd.Explanation,
			"distance_m":     cd.Metrics.DistanceM,
			"duration_s":     cd.Metrics.DurationS,
			"ascend_m":       cd.Metrics.AscendM,
			"distance_label": cd.Labels.Distance,
			"eta_label":      cd.Labels.ETA,
		})
	}

	m := map[string]interface{}{
		"id":      v.ID,
		"pending": v.Pending,
		"error":   v.Error,
		"summary": v.Summary,
		"version": int(v.Version),
		"camera": map[string]interface{}{
			"lat":  v.Map.Camera.Center.Lat,
			"lon":  v.Map.Camera.Center.Lon,
			"zoom": v.Map.Camera.Zoom,
		},
		"chips": chips,
		"cards": cards,
	}
	if v.ActiveID != nil {
		m["active_id"] = *v.ActiveID
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
