package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/usecases"
	"github.com/samirrijal/geooffset/internal/pkg/geospatial"
	"github.com/samirrijal/geooffset/internal/workflows"
)

const geoJSONContentType = "application/geo+json"

// createZoneRequest is an offset request plus the zone name.
type createZoneRequest struct {
	Name string `json:"name"`
	domain.OffsetRequest
}

// OffsetHandler computes an offset polygon. With ?format=geojson it returns a
// FeatureCollection with the source and offset polygons.
func OffsetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.OffsetRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		res, err := deps.Offsets.Compute(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		if c.Query("format") == "geojson" {
			return c.JSON(geospatial.FeatureCollection(req.Polygon, res.Polygon, req.OffsetMeters), geoJSONContentType)
		}
		return c.JSON(res)
	}
}

// OffsetDefaultsHandler returns the offset options applied when a request omits them.
func OffsetDefaultsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Offsets.Defaults())
	}
}

// CreateZoneHandler computes and stores a named offset zone.
func CreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createZoneRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		zone, err := deps.Zones.Create(c.UserContext(), req.Name, req.OffsetRequest)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Location("/v1/zones/" + zone.ID)
		return c.Status(fiber.StatusCreated).JSON(zone)
	}
}

const maxBatchSize = 100

// batchZoneRequest is the body of POST /v1/zones/batch.
type batchZoneRequest struct {
	Name     string                 `json:"name"`
	Requests []domain.OffsetRequest `json:"requests"`
}

// BatchZonesHandler validates a batch and starts the batch zone workflow. The zones
// are created asynchronously; the response carries the workflow ID.
func BatchZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Batches == nil {
			return newError(c, fiber.StatusServiceUnavailable, "unavailable", "batch processing is not configured")
		}

		var req batchZoneRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return errBadRequest(c, "name is required")
		}
		if len(req.Requests) == 0 || len(req.Requests) > maxBatchSize {
			return errBadRequest(c, fmt.Sprintf("requests must hold 1-%d items", maxBatchSize))
		}
		// Zones are named "<name>-<n>"; the longest suffix must still fit.
		if longest := len(workflows.ZoneName(req.Name, len(req.Requests))); longest > usecases.MaxZoneNameLen {
			return errBadRequest(c, fmt.Sprintf("name too long: zone names would reach %d characters, max %d", longest, usecases.MaxZoneNameLen))
		}
		for i, r := range req.Requests {
			if err := r.Validate(); err != nil {
				return errBadRequest(c, fmt.Sprintf("requests[%d]: %v", i, err))
			}
		}

		workflowID, runID, err := deps.Batches.StartBatch(c.UserContext(), workflows.BatchZoneInput{
			Name:     req.Name,
			Requests: req.Requests,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"workflow_id": workflowID,
			"run_id":      runID,
		})
	}
}

// ListZonesHandler returns a page of stored zones.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		zones, total, err := deps.Zones.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if zones == nil {
			zones = []domain.Zone{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: zones, Pagination: pg})
	}
}

// GetZoneHandler returns one zone, optionally as GeoJSON.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, err := deps.Zones.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		if c.Query("format") == "geojson" {
			fc := geospatial.FeatureCollection(zone.Source, zone.Boundary, zone.OffsetMeters)
			for _, f := range fc.Features {
				f.Properties["zone_id"] = zone.ID
				f.Properties["name"] = zone.Name
			}
			return c.JSON(fc, geoJSONContentType)
		}
		return c.JSON(zone)
	}
}

// DeleteZoneHandler removes a zone.
func DeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Zones.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
