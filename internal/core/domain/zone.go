package domain

import "time"

// Zone is a named, persisted offset polygon (e.g. a geofence with a safety margin).
type Zone struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Source       Polygon `json:"source"`
	Boundary     Polygon `json:"boundary"`
	OffsetMeters float64 `json:"offset_meters"`
	Zoom         float64 `json:"zoom"`
	// AreaM2 is the geodesic area of Boundary, filled in by the repository.
	AreaM2    float64   `json:"area_m2"`
	CreatedAt time.Time `json:"created_at"`
}

// OffsetComputedEvent is published after every successful, non-cached computation.
type OffsetComputedEvent struct {
	Vertices       int       `json:"vertices"`
	ResultVertices int       `json:"result_vertices"`
	OffsetMeters   float64   `json:"offset_meters"`
	MetersPerUnit  float64   `json:"meters_per_unit"`
	Zoom           float64   `json:"zoom"`
	ComputedAt     time.Time `json:"computed_at"`
}

// ZoneEvent is published when a zone is created or deleted, or when a batch of zones
// has been stored.
type ZoneEvent struct {
	Type    string    `json:"type"` // "created" | "deleted" | "batch_completed"
	ZoneID  string    `json:"zone_id,omitempty"`
	ZoneIDs []string  `json:"zone_ids,omitempty"`
	Name    string    `json:"name,omitempty"`
	At      time.Time `json:"at"`
}
