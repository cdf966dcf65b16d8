package domain

// WorldProjection maps geographic coordinates to a projection's global pixel space
// at zoom level 0 and back. Implementations must be free of side effects.
type WorldProjection interface {
	FromLatLngToPoint(p GeoPoint) (PlanarPoint, error)
	FromPointToLatLng(p PlanarPoint) (GeoPoint, error)
}

// ViewportContext carries the projection parameters in effect for a single call.
// It is read-only; nothing in this module caches or mutates it.
type ViewportContext struct {
	Projection WorldProjection
	Bounds     *LatLngBounds
	Zoom       float64
}

// Ready reports whether the context can produce a projection.
func (v ViewportContext) Ready() bool {
	return v.Projection != nil && v.Bounds != nil
}

// ViewportSpec is the wire form of a viewport. The server always pairs it with the
// Web-Mercator world projection.
type ViewportSpec struct {
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
	Zoom      float64  `json:"zoom"`
}

// Bounds returns the viewport bounds as LatLngBounds.
func (s ViewportSpec) Bounds() *LatLngBounds {
	return &LatLngBounds{NorthEast: s.NorthEast, SouthWest: s.SouthWest}
}
