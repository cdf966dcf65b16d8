// Package geospatial holds the Web-Mercator world projection and small geographic helpers
// built on paulmach/orb.
package geospatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// TileSize is the width of the world in world-pixel units at zoom 0.
const TileSize = 256.0

// MaxLatitude is the latitude at which spherical mercator is clipped.
const MaxLatitude = 85.05112878

const originShift = math.Pi * orb.EarthRadius

type webMercator struct{}

// WebMercator is the world projection used by Google and OSM slippy maps: the globe spans
// [0, 256) world pixels on both axes at zoom 0 with y growing southwards.
var WebMercator domain.WorldProjection = webMercator{}

func (webMercator) FromLatLngToPoint(p domain.GeoPoint) (domain.PlanarPoint, error) {
	if !finite(p.Lat) || !finite(p.Lon) {
		return domain.PlanarPoint{}, fmt.Errorf("mercator: non-finite coordinate (%v, %v)", p.Lat, p.Lon)
	}
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, p.Lat))
	m := project.WGS84.ToMercator(orb.Point{p.Lon, lat})
	return domain.PlanarPoint{
		X: (m[0] + originShift) / (2 * originShift) * TileSize,
		Y: (originShift - m[1]) / (2 * originShift) * TileSize,
	}, nil
}

func (webMercator) FromPointToLatLng(p domain.PlanarPoint) (domain.GeoPoint, error) {
	if !finite(p.X) || !finite(p.Y) {
		return domain.GeoPoint{}, fmt.Errorf("mercator: non-finite world point (%v, %v)", p.X, p.Y)
	}
	m := orb.Point{
		p.X/TileSize*2*originShift - originShift,
		originShift - p.Y/TileSize*2*originShift,
	}
	g := project.Mercator.ToWGS84(m)
	return domain.GeoPoint{Lat: g[1], Lon: g[0]}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
