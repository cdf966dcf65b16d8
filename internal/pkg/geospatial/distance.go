package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// Distance returns the great-circle distance in meters between two points, on a sphere
// of radius orb.EarthRadius (6378137 m).
func Distance(a, b domain.GeoPoint) float64 {
	return geo.Distance(toOrb(a), toOrb(b))
}

func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
