package http

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/geomconv"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_x": &graphql.Field{Type: graphql.Float},
			"min_y": &graphql.Field{Type: graphql.Float},
			"max_x": &graphql.Field{Type: graphql.Float},
			"max_y": &graphql.Field{Type: graphql.Float},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"type":       &graphql.Field{Type: graphql.String},
			"family":     &graphql.Field{Type: graphql.String},
			"srid":       &graphql.Field{Type: graphql.Int},
			"num_points": &graphql.Field{Type: graphql.Int},
			"bounds":     &graphql.Field{Type: boundsType},
			"length_m":   &graphql.Field{Type: graphql.Float},
			"geohash":    &graphql.Field{Type: graphql.String},
			"is_empty":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geometry",
		Fields: graphql.Fields{
			"type":    &graphql.Field{Type: graphql.String},
			"family":  &graphql.Field{Type: graphql.String},
			"srid":    &graphql.Field{Type: graphql.Int},
			"wkt":     &graphql.Field{Type: graphql.String},
			"ewkt":    &graphql.Field{Type: graphql.String},
			"geojson": &graphql.Field{Type: graphql.String},
			"summary": &graphql.Field{Type: summaryType},
		},
	})

	conversionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Conversion",
		Fields: graphql.Fields{
			"format":  &graphql.Field{Type: graphql.String},
			"output":  &graphql.Field{Type: graphql.String},
			"summary": &graphql.Field{Type: summaryType},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"distance":   &graphql.Field{Type: graphql.Float},
			"created_at": &graphql.Field{Type: graphql.String},
			"geometry":   &graphql.Field{Type: geometryType},
		},
	})

	geometryArgs := graphql.FieldConfigArgument{
		"input":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"format": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "wkt"},
		"family": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "geometry"},
	}

	decodeArgs := func(p graphql.ResolveParams) (usecases.DecodeRequest, error) {
		return geometryRequest{
			Input:  quote(p.Args["input"].(string)),
			Format: p.Args["format"].(string),
			Family: p.Args["family"].(string),
		}.decodeRequest()
	}

	geometryMap := func(g domain.Geometry) (map[string]any, error) {
		gj, err := geomconv.GeoJSON(g, geomconv.DefaultGeoJSONDecimalDigits, false)
		if err != nil {
			return nil, err
		}
		m := map[string]any{
			"type":    g.Type().String(),
			"family":  g.Family().String(),
			"wkt":     codec.Encode(g),
			"ewkt":    codec.EncodeExtended(g, true),
			"geojson": string(gj),
			"summary": summaryMap(deps.Conversions.Describe(g)),
		}
		if srid, ok := g.SRID(); ok {
			m["srid"] = int(srid)
		}
		return m, nil
	}

	featureMap := func(f *domain.Feature) (map[string]any, error) {
		g, err := geometryMap(f.Geometry)
		if err != nil {
			return nil, err
		}
		m := map[string]any{
			"id":         f.ID,
			"name":       f.Name,
			"created_at": f.CreatedAt.Format(time.RFC3339),
			"geometry":   g,
		}
		if f.Distance != nil {
			m["distance"] = *f.Distance
		}
		return m, nil
	}

	featureList := func(features []*domain.Feature, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(features))
		for _, f := range features {
			m, err := featureMap(f)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"decode": &graphql.Field{
				Type:        geometryType,
				Description: "Decode a WKT, WKB or GeoJSON geometry",
				Args:        geometryArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := decodeArgs(p)
					if err != nil {
						return nil, err
					}
					g, err := deps.Conversions.Decode(p.Context, req)
					if err != nil {
						return nil, err
					}
					return geometryMap(g)
				},
			},
			"convert": &graphql.Field{
				Type:        conversionType,
				Description: "Re-encode a geometry",
				Args: graphql.FieldConfigArgument{
					"input":      geometryArgs["input"],
					"format":     geometryArgs["format"],
					"family":     geometryArgs["family"],
					"output":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"byte_order": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "ndr"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := decodeArgs(p)
					if err != nil {
						return nil, err
					}
					output, err := usecases.ParseFormat(p.Args["output"].(string))
					if err != nil {
						return nil, err
					}
					conv, err := deps.Conversions.Convert(p.Context, usecases.ConvertRequest{
						DecodeRequest: req,
						Output:        output,
						ByteOrder:     p.Args["byte_order"].(string),
					})
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"format":  string(conv.Format),
						"output":  conv.Output,
						"summary": summaryMap(conv.Summary),
					}, nil
				},
			},
			"feature": &graphql.Field{
				Type:        featureType,
				Description: "Get a feature by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := deps.Features.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return featureMap(f)
				},
			},
			"features": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "List stored features, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					features, _, err := deps.Features.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return featureList(features, err)
				},
			},
			"featuresNearby": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Find geography features near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return featureList(deps.Features.FindNearby(p.Context,
						p.Args["lon"].(float64), p.Args["lat"].(float64),
						p.Args["radius"].(float64), p.Args["limit"].(int)))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createFeature": &graphql.Field{
				Type:        featureType,
				Description: "Store a named geometry",
				Args: graphql.FieldConfigArgument{
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"input":  geometryArgs["input"],
					"format": geometryArgs["format"],
					"family": geometryArgs["family"],
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := decodeArgs(p)
					if err != nil {
						return nil, err
					}
					f, err := deps.Features.Create(p.Context, usecases.CreateFeatureRequest{
						DecodeRequest: req,
						Name:          p.Args["name"].(string),
					})
					if err != nil {
						return nil, err
					}
					return featureMap(f)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func summaryMap(s domain.Summary) map[string]any {
	m := map[string]any{
		"type":       s.Type,
		"family":     s.Family,
		"num_points": s.NumPoints,
		"geohash":    s.Geohash,
		"is_empty":   s.IsEmpty,
	}
	if s.SRID != nil {
		m["srid"] = int(*s.SRID)
	}
	if s.Bounds != nil {
		m["bounds"] = map[string]any{
			"min_x": s.Bounds.MinX, "min_y": s.Bounds.MinY,
			"max_x": s.Bounds.MaxX, "max_y": s.Bounds.MaxY,
		}
	}
	if s.LengthM != nil {
		m["length_m"] = *s.LengthM
	}
	return m
}

// quote turns a GraphQL string argument into the JSON form geometryRequest expects.
func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
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
