package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

func coordinateMaps(ring domain.Ring) []map[string]interface{} {
	out := make([]map[string]interface{}, len(ring))
	for i, c := range ring {
		out[i] = map[string]interface{}{"lat": c.Lat, "lng": c.Lng}
	}
	return out
}

func zoneMap(z domain.Zone) map[string]interface{} {
	return map[string]interface{}{
		"id":         string(z.ID),
		"name":       z.Name,
		"color":      z.Color.Hex(),
		"ring":       coordinateMaps(z.Ring),
		"revision":   int(z.Revision),
		"created_at": z.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updated_at": z.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func sessionMap(st domain.SessionState) map[string]interface{} {
	m := map[string]interface{}{
		"mode":      string(st.Mode),
		"pen_color": st.PenColor.Hex(),
	}
	if st.ZoneID != "" {
		m["zone_id"] = string(st.ZoneID)
	}
	return m
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Zone",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"color":      &graphql.Field{Type: graphql.String},
			"ring":       &graphql.Field{Type: graphql.NewList(coordinateType)},
			"revision":   &graphql.Field{Type: graphql.Int},
			"created_at": &graphql.Field{Type: graphql.String},
			"updated_at": &graphql.Field{Type: graphql.String},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoneSummary",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"color":        &graphql.Field{Type: graphql.String},
			"vertex_count": &graphql.Field{Type: graphql.Int},
			"perimeter_m":  &graphql.Field{Type: graphql.Float},
			"area_m2":      &graphql.Field{Type: graphql.Float},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"mode":      &graphql.Field{Type: graphql.String},
			"zone_id":   &graphql.Field{Type: graphql.String},
			"pen_color": &graphql.Field{Type: graphql.String},
		},
	})

	renderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoneRender",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"index":         &graphql.Field{Type: graphql.Int},
			"name":          &graphql.Field{Type: graphql.String},
			"ring":          &graphql.Field{Type: graphql.NewList(coordinateType)},
			"fill_color":    &graphql.Field{Type: graphql.String},
			"stroke_color":  &graphql.Field{Type: graphql.String},
			"fill_opacity":  &graphql.Field{Type: graphql.Float},
			"stroke_weight": &graphql.Field{Type: graphql.Int},
			"editable":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "All zones in creation order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zones := deps.Queries.List()
					out := make([]map[string]interface{}, len(zones))
					for i, z := range zones {
						out[i] = zoneMap(z)
					}
					return out, nil
				},
			},
			"zone": &graphql.Field{
				Type:        zoneType,
				Description: "Get a zone by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					z, err := deps.Queries.Get(domain.ZoneID(p.Args["id"].(string)))
					if err != nil {
						return nil, err
					}
					return zoneMap(z), nil
				},
			},
			"zoneSummaries": &graphql.Field{
				Type:        graphql.NewList(summaryType),
				Description: "Zone list with vertex counts and measurements",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sums := deps.Queries.Summaries()
					out := make([]map[string]interface{}, len(sums))
					for i, s := range sums {
						out[i] = map[string]interface{}{
							"id":           string(s.ID),
							"name":         s.Name,
							"color":        s.Color.Hex(),
							"vertex_count": s.VertexCount,
							"perimeter_m":  s.PerimeterM,
							"area_m2":      s.AreaM2,
						}
					}
					return out, nil
				},
			},
			"containingZone": &graphql.Field{
				Type:        zoneType,
				Description: "First zone containing the point; the configured check point when lat/lng are omitted",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.Float},
					"lng": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := deps.Queries.CheckPoint()
					lat, hasLat := p.Args["lat"].(float64)
					lng, hasLng := p.Args["lng"].(float64)
					if hasLat != hasLng {
						return nil, fmt.Errorf("lat and lng must be given together")
					}
					if hasLat {
						point = domain.Coordinate{Lat: lat, Lng: lng}
					}
					z, err := deps.Queries.ContainingZone(p.Context, point)
					if err != nil || z == nil {
						return nil, err
					}
					return zoneMap(*z), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Edit session state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sessionMap(deps.Session.State()), nil
				},
			},
			"render": &graphql.Field{
				Type:        graphql.NewList(renderType),
				Description: "Map frame for the current snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					frame := deps.Session.Render()
					out := make([]map[string]interface{}, len(frame))
					for i, r := range frame {
						out[i] = map[string]interface{}{
							"id":            string(r.ID),
							"index":         r.Index,
							"name":          r.Name,
							"ring":          coordinateMaps(r.Ring),
							"fill_color":    r.FillColor.Hex(),
							"stroke_color":  r.StrokeColor.Hex(),
							"fill_opacity":  r.FillOpacity,
							"stroke_weight": r.StrokeWeight,
							"editable":      r.Editable,
						}
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"renameZone": &graphql.Field{
				Type: zoneType,
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					z, err := deps.Store.Rename(domain.ZoneID(p.Args["id"].(string)), p.Args["name"].(string))
					if err != nil {
						return nil, err
					}
					return zoneMap(z), nil
				},
			},
			"recolorZone": &graphql.Field{
				Type: zoneType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"color": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					color, err := domain.ParseColor(p.Args["color"].(string))
					if err != nil {
						return nil, err
					}
					z, err := deps.Store.Recolor(domain.ZoneID(p.Args["id"].(string)), color)
					if err != nil {
						return nil, err
					}
					return zoneMap(z), nil
				},
			},
			"deleteZone": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Store.Delete(domain.ZoneID(p.Args["id"].(string))); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
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
