// Package offset composes projection, scale estimation and the planar offset into the
// geographic polygon offset pipeline.
package offset

import (
	"fmt"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/core/projection"
)

// Calculator is stateless and safe for concurrent use.
type Calculator struct {
	offsetter ports.PlanarOffsetter
}

// NewCalculator creates a Calculator around a planar offset engine.
func NewCalculator(offsetter ports.PlanarOffsetter) *Calculator {
	return &Calculator{offsetter: offsetter}
}

// ComputeOffsetPolygon offsets polygon by offsetMeters (positive grows, negative shrinks)
// using a local planar approximation of ctx. Polygons with fewer than three vertices
// yield an empty result. Any failure aborts without a partial result.
func (c *Calculator) ComputeOffsetPolygon(polygon domain.Polygon, ctx domain.ViewportContext, offsetMeters float64) (domain.Polygon, error) {
	res, err := c.Compute(polygon, ctx, offsetMeters)
	if err != nil {
		return nil, err
	}
	return res.Polygon, nil
}

// Compute is ComputeOffsetPolygon plus the scale diagnostics.
func (c *Calculator) Compute(polygon domain.Polygon, ctx domain.ViewportContext, offsetMeters float64) (domain.OffsetResult, error) {
	if len(polygon) <= 2 {
		return domain.OffsetResult{Polygon: domain.Polygon{}}, nil
	}

	planar, err := projection.ProjectPolygon(polygon, ctx)
	if err != nil {
		return domain.OffsetResult{}, fmt.Errorf("project: %w", err)
	}

	// The scale is measured along the first edge and reused for the whole ring.
	metersPerUnit, err := projection.EstimateMetersPerUnit(polygon[0], polygon[1], ctx)
	if err != nil {
		return domain.OffsetResult{}, fmt.Errorf("estimate scale: %w", err)
	}
	planarOffset := offsetMeters / metersPerUnit

	shifted, err := c.offsetter.Offset(planar, planarOffset)
	if err != nil {
		return domain.OffsetResult{}, fmt.Errorf("offset: %w", err)
	}

	result, err := projection.UnprojectPolygon(shifted, ctx)
	if err != nil {
		return domain.OffsetResult{}, fmt.Errorf("reproject: %w", err)
	}

	return domain.OffsetResult{
		Polygon:       result,
		MetersPerUnit: metersPerUnit,
		PlanarOffset:  planarOffset,
	}, nil
}
