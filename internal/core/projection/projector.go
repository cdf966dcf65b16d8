// Package projection converts between geographic coordinates and viewport-pixel space
// and derives the local meters-per-pixel scale at a given zoom.
//
// Pixel space has its origin at the top-left corner of the visible viewport and is scaled
// by 2^zoom relative to the world projection. Every function recomputes the viewport
// corners from the context, so a context can be swapped freely between calls.
package projection

import (
	"fmt"
	"math"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// frame is the per-call derivation of a viewport: its world-pixel corners and zoom scale.
type frame struct {
	proj       domain.WorldProjection
	topRight   domain.PlanarPoint
	bottomLeft domain.PlanarPoint
	scale      float64
}

func newFrame(ctx domain.ViewportContext) (frame, error) {
	if !ctx.Ready() {
		return frame{}, domain.ErrUnavailableProjection
	}
	topRight, err := ctx.Projection.FromLatLngToPoint(ctx.Bounds.NorthEast)
	if err != nil {
		return frame{}, fmt.Errorf("%w: north-east corner: %v", domain.ErrUnavailableProjection, err)
	}
	bottomLeft, err := ctx.Projection.FromLatLngToPoint(ctx.Bounds.SouthWest)
	if err != nil {
		return frame{}, fmt.Errorf("%w: south-west corner: %v", domain.ErrUnavailableProjection, err)
	}
	scale := math.Pow(2, ctx.Zoom)
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return frame{}, fmt.Errorf("%w: zoom %v", domain.ErrUnavailableProjection, ctx.Zoom)
	}
	return frame{proj: ctx.Projection, topRight: topRight, bottomLeft: bottomLeft, scale: scale}, nil
}

func (f frame) toPlanar(p domain.GeoPoint) (domain.PlanarPoint, error) {
	w, err := f.proj.FromLatLngToPoint(p)
	if err != nil {
		return domain.PlanarPoint{}, fmt.Errorf("%w: %v", domain.ErrUnavailableProjection, err)
	}
	return domain.PlanarPoint{
		X: (w.X - f.bottomLeft.X) * f.scale,
		Y: (w.Y - f.topRight.Y) * f.scale,
	}, nil
}

func (f frame) toGeo(p domain.PlanarPoint) (domain.GeoPoint, error) {
	w := domain.PlanarPoint{
		X: p.X/f.scale + f.bottomLeft.X,
		Y: p.Y/f.scale + f.topRight.Y,
	}
	g, err := f.proj.FromPointToLatLng(w)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrUnavailableProjection, err)
	}
	return g, nil
}

// ToPlanar maps a geographic point to viewport-pixel space.
func ToPlanar(p domain.GeoPoint, ctx domain.ViewportContext) (domain.PlanarPoint, error) {
	f, err := newFrame(ctx)
	if err != nil {
		return domain.PlanarPoint{}, err
	}
	return f.toPlanar(p)
}

// ToGeo is the inverse of ToPlanar.
func ToGeo(p domain.PlanarPoint, ctx domain.ViewportContext) (domain.GeoPoint, error) {
	f, err := newFrame(ctx)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return f.toGeo(p)
}

// ProjectPolygon maps every vertex to pixel space, stopping at the first failure.
func ProjectPolygon(poly domain.Polygon, ctx domain.ViewportContext) (domain.PlanarPolygon, error) {
	f, err := newFrame(ctx)
	if err != nil {
		return nil, err
	}
	out := make(domain.PlanarPolygon, len(poly))
	for i, p := range poly {
		if out[i], err = f.toPlanar(p); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return out, nil
}

// UnprojectPolygon maps every vertex back to geographic coordinates.
func UnprojectPolygon(poly domain.PlanarPolygon, ctx domain.ViewportContext) (domain.Polygon, error) {
	f, err := newFrame(ctx)
	if err != nil {
		return nil, err
	}
	out := make(domain.Polygon, len(poly))
	for i, p := range poly {
		if out[i], err = f.toGeo(p); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return out, nil
}
