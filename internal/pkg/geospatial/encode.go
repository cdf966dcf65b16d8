package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// Ring converts a polygon to a closed orb ring in lon/lat order.
func Ring(p domain.Polygon) orb.Ring {
	if len(p) == 0 {
		return nil
	}
	r := make(orb.Ring, 0, len(p)+1)
	for _, v := range p {
		r = append(r, toOrb(v))
	}
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// WKT encodes a polygon as a closed WKT POLYGON, suitable for ST_GeomFromText.
func WKT(p domain.Polygon) string {
	return wkt.MarshalString(orb.Polygon{Ring(p)})
}

// FeatureCollection builds a GeoJSON collection with the source polygon and its offset.
// Empty polygons are left out.
func FeatureCollection(source, offset domain.Polygon, offsetMeters float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(source) > 0 {
		f := geojson.NewFeature(orb.Polygon{Ring(source)})
		f.Properties["role"] = "source"
		fc.Append(f)
	}
	if len(offset) > 0 {
		f := geojson.NewFeature(orb.Polygon{Ring(offset)})
		f.Properties["role"] = "offset"
		f.Properties["offset_meters"] = offsetMeters
		fc.Append(f)
	}
	return fc
}
