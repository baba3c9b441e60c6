package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/geomconv"
)

// geometryRequest is the JSON body shared by the geometry and feature endpoints. Input is a
// string (WKT, hex WKB, base64 WKB) or, for geojson, either a string or a geometry object.
type geometryRequest struct {
	Input  json.RawMessage `json:"input"`
	Format string          `json:"format"`
	Family string          `json:"family"`
}

func (r geometryRequest) decodeRequest() (usecases.DecodeRequest, error) {
	format, err := usecases.ParseFormat(r.Format)
	if err != nil {
		return usecases.DecodeRequest{}, err
	}
	family, err := domain.ParseFamily(r.Family)
	if err != nil {
		return usecases.DecodeRequest{}, errors.Mark(err, domain.ErrInvalidArgument)
	}

	raw := []byte(strings.TrimSpace(string(r.Input)))
	var input []byte
	switch {
	case len(raw) == 0 || string(raw) == "null":
		return usecases.DecodeRequest{}, errors.Wrap(domain.ErrInvalidArgument, "input is required")
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return usecases.DecodeRequest{}, errors.Wrap(domain.ErrInvalidArgument, "input is not a valid string")
		}
		if input, err = usecases.InputBytes(format, s); err != nil {
			return usecases.DecodeRequest{}, err
		}
	case format == usecases.FormatGeoJSON:
		input = raw
	default:
		return usecases.DecodeRequest{}, errors.Wrapf(domain.ErrInvalidArgument, "%s input must be a string", format)
	}
	return usecases.DecodeRequest{Input: input, Family: family, Format: format}, nil
}

type geometryResponse struct {
	Type        string         `json:"type"`
	Family      string         `json:"family"`
	SRID        *uint32        `json:"srid,omitempty"`
	WKT         string         `json:"wkt"`
	EWKT        string         `json:"ewkt"`
	Coordinates any            `json:"coordinates"`
	Summary     domain.Summary `json:"summary"`
}

type featureResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Family    string          `json:"family"`
	Type      string          `json:"type"`
	EWKT      string          `json:"ewkt"`
	Geometry  json.RawMessage `json:"geometry"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	Distance  *float64        `json:"distance,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newFeatureResponse(f *domain.Feature) (featureResponse, error) {
	gj, err := geomconv.GeoJSON(f.Geometry, geomconv.DefaultGeoJSONDecimalDigits, false)
	if err != nil {
		return featureResponse{}, err
	}
	return featureResponse{
		ID:        f.ID,
		Name:      f.Name,
		Family:    f.Family.String(),
		Type:      f.Geometry.Type().String(),
		EWKT:      codec.EncodeExtended(f.Geometry, true),
		Geometry:  gj,
		Metadata:  f.Metadata,
		Distance:  f.Distance,
		CreatedAt: f.CreatedAt,
	}, nil
}

func newFeatureResponses(features []*domain.Feature) ([]featureResponse, error) {
	out := make([]featureResponse, 0, len(features))
	for _, f := range features {
		r, err := newFeatureResponse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DecodeHandler parses a geometry and returns its structure and summary. A body sent as
// application/octet-stream is raw WKB, with the family taken from the query string.
func DecodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			req usecases.DecodeRequest
			err error
		)
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEOctetStream) {
			req.Format = usecases.FormatWKB
			req.Input = c.Body()
			if req.Family, err = domain.ParseFamily(c.Query("family")); err != nil {
				return errBadRequest(c, err.Error())
			}
		} else {
			var body geometryRequest
			if err := c.BodyParser(&body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
			if req, err = body.decodeRequest(); err != nil {
				return errFromService(c, err)
			}
		}

		g, err := deps.Conversions.Decode(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}

		resp := geometryResponse{
			Type:        g.Type().String(),
			Family:      g.Family().String(),
			WKT:         codec.Encode(g),
			EWKT:        codec.EncodeExtended(g, true),
			Coordinates: g.Coordinates(),
			Summary:     deps.Conversions.Describe(g),
		}
		if srid, ok := g.SRID(); ok {
			resp.SRID = &srid
		}
		return c.JSON(resp)
	}
}

// ConvertHandler re-encodes a geometry in another representation.
func ConvertHandler(deps *Dependencies) fiber.Handler {
	type convertRequest struct {
		geometryRequest
		Output    string `json:"output"`
		ByteOrder string `json:"byte_order"`
	}

	return func(c *fiber.Ctx) error {
		var body convertRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		req, err := body.decodeRequest()
		if err != nil {
			return errFromService(c, err)
		}
		output, err := usecases.ParseFormat(body.Output)
		if err != nil {
			return errFromService(c, err)
		}

		conv, err := deps.Conversions.Convert(c.UserContext(), usecases.ConvertRequest{
			DecodeRequest: req,
			Output:        output,
			ByteOrder:     body.ByteOrder,
		})
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(conv)
	}
}

// CreateFeatureHandler stores a named geometry.
func CreateFeatureHandler(deps *Dependencies) fiber.Handler {
	type createRequest struct {
		geometryRequest
		Name     string         `json:"name"`
		Metadata map[string]any `json:"metadata"`
	}

	return func(c *fiber.Ctx) error {
		var body createRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		req, err := body.decodeRequest()
		if err != nil {
			return errFromService(c, err)
		}

		f, err := deps.Features.Create(c.UserContext(), usecases.CreateFeatureRequest{
			DecodeRequest: req,
			Name:          body.Name,
			Metadata:      body.Metadata,
		})
		if err != nil {
			return errFromService(c, err)
		}

		resp, err := newFeatureResponse(f)
		if err != nil {
			return errFromService(c, err)
		}
		c.Location("/v1/features/" + f.ID)
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// ListFeaturesHandler returns a page of features, as JSON or as a GeoJSON FeatureCollection
// with ?format=geojson.
func ListFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		features, total, err := deps.Features.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromService(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)

		if strings.EqualFold(c.Query("format"), "geojson") {
			data, err := geomconv.FeatureCollection(features)
			if err != nil {
				return errFromService(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		}

		data, err := newFeatureResponses(features)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(PaginatedResponse{Data: data, Pagination: pg})
	}
}

// NearbyFeaturesHandler returns geography features within a radius of a point.
func NearbyFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		limit := c.QueryInt("limit", 20)

		features, err := deps.Features.FindNearby(c.UserContext(), lon, lat, radius, limit)
		if err != nil {
			return errFromService(c, err)
		}

		data, err := newFeatureResponses(features)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(data)
	}
}

// GetFeatureHandler returns a single feature by ID.
func GetFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Features.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}

		resp, err := newFeatureResponse(f)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(resp)
	}
}

// DeleteFeatureHandler removes a feature.
func DeleteFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Features.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
