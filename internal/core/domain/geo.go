package domain

// GeoPoint represents a geographic coordinate (WGS 84) in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanarPoint is a coordinate in viewport-pixel space at a specific zoom level.
// It is only meaningful together with the ViewportContext that produced it.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an ordered ring of geographic vertices. Closing the ring is optional.
type Polygon []GeoPoint

// PlanarPolygon is an ordered ring of planar vertices.
type PlanarPolygon []PlanarPoint

// Closed returns the ring with its first vertex appended when it is not already closed.
// The receiver is never modified.
func (p PlanarPolygon) Closed() PlanarPolygon {
	if len(p) == 0 {
		return nil
	}
	out := make(PlanarPolygon, len(p), len(p)+1)
	copy(out, p)
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// LatLngBounds is the visible area of a map viewport.
type LatLngBounds struct {
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
}
