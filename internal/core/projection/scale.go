package projection

import (
	"fmt"
	"math"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/pkg/geospatial"
)

// EstimateMetersPerUnit returns how many meters one pixel spans at p0 in the direction
// of p1. It steps one unit from p0 towards p1 in pixel space, reprojects that step and
// measures its great-circle length. The value depends on latitude, direction and zoom.
func EstimateMetersPerUnit(p0, p1 domain.GeoPoint, ctx domain.ViewportContext) (float64, error) {
	f, err := newFrame(ctx)
	if err != nil {
		return 0, err
	}
	q0, err := f.toPlanar(p0)
	if err != nil {
		return 0, err
	}
	q1, err := f.toPlanar(p1)
	if err != nil {
		return 0, err
	}

	vx, vy := q1.X-q0.X, q1.Y-q0.Y
	length := math.Hypot(vx, vy)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return 0, fmt.Errorf("%w: reference vertices coincide", domain.ErrInvalidDirectionVector)
	}

	step, err := f.toGeo(domain.PlanarPoint{X: q0.X + vx/length, Y: q0.Y + vy/length})
	if err != nil {
		return 0, err
	}

	meters := geospatial.Distance(p0, step)
	if meters <= 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0, fmt.Errorf("%w: degenerate unit step (%v m)", domain.ErrInvalidDirectionVector, meters)
	}
	return meters, nil
}
