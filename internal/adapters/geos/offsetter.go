// Package geos implements ports.PlanarOffsetter on top of libgeos through
// simplefeatures' cgo binding.
package geos

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/peterstace/simplefeatures/geos"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// Offsetter buffers planar rings with a flat cap and a configurable join.
type Offsetter struct {
	opts domain.OffsetOptions
}

// New returns an Offsetter. Zero-valued options fall back to round joins and 10 segments
// per quarter circle.
func New(opts domain.OffsetOptions) *Offsetter {
	return &Offsetter{opts: opts.WithDefaults(domain.DefaultOffsetOptions())}
}

// Options returns the effective options.
func (o *Offsetter) Options() domain.OffsetOptions {
	return o.opts
}

// WithOptions returns a copy using opts, with unset fields inherited from o.
func (o *Offsetter) WithOptions(opts domain.OffsetOptions) *Offsetter {
	return &Offsetter{opts: opts.WithDefaults(o.opts)}
}

// Offset buffers ring by distance planar units: positive grows, negative shrinks.
// Only the exterior ring of the result is returned. An inset that swallows the polygon
// yields an empty ring and no error.
func (o *Offsetter) Offset(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error) {
	closed := ring.Closed()
	if len(closed) < 4 {
		return nil, fmt.Errorf("%w: ring needs at least 3 distinct vertices, got %d", domain.ErrGeometryOperationFailed, len(ring))
	}

	coords := make([]float64, 0, 2*len(closed))
	for _, p := range closed {
		coords = append(coords, p.X, p.Y)
	}
	shell := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{shell})
	if err := poly.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid input ring: %v", domain.ErrGeometryOperationFailed, err)
	}

	buffered, err := geos.Buffer(poly.AsGeometry(), distance, o.bufferOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: buffer: %v", domain.ErrGeometryOperationFailed, err)
	}
	return exteriorRing(buffered)
}

func (o *Offsetter) bufferOptions() []geos.BufferOption {
	opts := []geos.BufferOption{
		geos.BufferQuadSegments(o.opts.CurveSegments),
		geos.BufferEndCapFlat(),
	}
	// Unknown spellings were rejected upstream; an error here falls back to round.
	join, _ := domain.ParseJoinStyle(string(o.opts.JoinStyle))
	switch join {
	case domain.JoinMitre:
		opts = append(opts, geos.BufferJoinStyleMitre(o.opts.MitreLimit))
	case domain.JoinBevel:
		opts = append(opts, geos.BufferJoinStyleBevel())
	default:
		opts = append(opts, geos.BufferJoinStyleRound())
	}
	return opts
}

func exteriorRing(g geom.Geometry) (domain.PlanarPolygon, error) {
	if g.IsEmpty() {
		return domain.PlanarPolygon{}, nil
	}

	var poly geom.Polygon
	switch g.Type() {
	case geom.TypePolygon:
		poly = g.MustAsPolygon()
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		if mp.NumPolygons() != 1 {
			return nil, fmt.Errorf("%w: %d polygons", domain.ErrMultiRingResult, mp.NumPolygons())
		}
		poly = mp.PolygonN(0)
	default:
		return nil, fmt.Errorf("%w: unexpected result type %s", domain.ErrGeometryOperationFailed, g.Type())
	}

	seq := poly.ExteriorRing().Coordinates()
	out := make(domain.PlanarPolygon, seq.Len())
	for i := range out {
		xy := seq.GetXY(i)
		out[i] = domain.PlanarPoint{X: xy.X, Y: xy.Y}
	}
	return out, nil
}
