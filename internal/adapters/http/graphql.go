package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	viewportInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ViewportInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"north_east": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(geoPointInput)},
			"south_west": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(geoPointInput)},
			"zoom":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	offsetResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OffsetResult",
		Fields: graphql.Fields{
			"polygon":         &graphql.Field{Type: graphql.NewList(geoPointType)},
			"meters_per_unit": &graphql.Field{Type: graphql.Float},
			"planar_offset":   &graphql.Field{Type: graphql.Float},
			"cached":          &graphql.Field{Type: graphql.Boolean},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Zone",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"source":        &graphql.Field{Type: graphql.NewList(geoPointType)},
			"boundary":      &graphql.Field{Type: graphql.NewList(geoPointType)},
			"offset_meters": &graphql.Field{Type: graphql.Float},
			"zoom":          &graphql.Field{Type: graphql.Float},
			"area_m2":       &graphql.Field{Type: graphql.Float},
			"created_at":    &graphql.Field{Type: graphql.DateTime},
		},
	})

	zonePageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZonePage",
		Fields: graphql.Fields{
			"data":  &graphql.Field{Type: graphql.NewList(zoneType)},
			"total": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"offsetPolygon": &graphql.Field{
				Type:        offsetResultType,
				Description: "Offset a polygon by a distance in meters (positive grows, negative shrinks)",
				Args: graphql.FieldConfigArgument{
					"polygon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(geoPointInput)))},
					"viewport":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(viewportInput)},
					"offsetMeters":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"joinStyle":     &graphql.ArgumentConfig{Type: graphql.String},
					"curveSegments": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := offsetRequestFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Offsets.Compute(p.Context, req)
				},
			},
			"zone": &graphql.Field{
				Type:        zoneType,
				Description: "Get a stored zone by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Zones.Get(p.Context, id)
				},
			},
			"zones": &graphql.Field{
				Type:        zonePageType,
				Description: "List stored zones, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					zones, total, err := deps.Zones.List(p.Context, offset, limit)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"data": zones, "total": total}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func offsetRequestFromArgs(args map[string]interface{}) (domain.OffsetRequest, error) {
	var req domain.OffsetRequest

	points, _ := args["polygon"].([]interface{})
	req.Polygon = make(domain.Polygon, 0, len(points))
	for _, raw := range points {
		pt, err := geoPointFromArg(raw)
		if err != nil {
			return req, err
		}
		req.Polygon = append(req.Polygon, pt)
	}

	vp, ok := args["viewport"].(map[string]interface{})
	if !ok {
		return req, fmt.Errorf("%w: viewport is required", domain.ErrInvalidRequest)
	}
	ne, err := geoPointFromArg(vp["north_east"])
	if err != nil {
		return req, err
	}
	sw, err := geoPointFromArg(vp["south_west"])
	if err != nil {
		return req, err
	}
	req.Viewport = domain.ViewportSpec{NorthEast: ne, SouthWest: sw, Zoom: toFloat(vp["zoom"])}
	req.OffsetMeters = toFloat(args["offsetMeters"])

	join, hasJoin := args["joinStyle"].(string)
	segments, hasSegments := args["curveSegments"].(int)
	if hasJoin || hasSegments {
		req.Options = &domain.OffsetOptions{JoinStyle: domain.JoinStyle(join), CurveSegments: segments}
	}
	return req, nil
}

func geoPointFromArg(raw interface{}) (domain.GeoPoint, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%w: expected {lat, lon}", domain.ErrInvalidRequest)
	}
	return domain.GeoPoint{Lat: toFloat(m["lat"]), Lon: toFloat(m["lon"])}, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
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
