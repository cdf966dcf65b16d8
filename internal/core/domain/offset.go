package domain

import (
	"fmt"
	"math"
	"strings"
)

// JoinStyle selects how the buffer joins offset segments at convex vertices.
type JoinStyle string

const (
	JoinRound JoinStyle = "round"
	JoinMitre JoinStyle = "mitre"
	JoinBevel JoinStyle = "bevel"
)

// ParseJoinStyle accepts "round", "mitre" (or "miter") and "bevel", case-insensitively.
// An empty string yields JoinRound.
func ParseJoinStyle(s string) (JoinStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "round":
		return JoinRound, nil
	case "mitre", "miter":
		return JoinMitre, nil
	case "bevel":
		return JoinBevel, nil
	default:
		return "", fmt.Errorf("%w: unknown join style %q", ErrInvalidRequest, s)
	}
}

const (
	DefaultCurveSegments = 10
	DefaultMitreLimit    = 5.0
	MaxCurveSegments     = 64
)

// OffsetOptions are the policy knobs of the planar offset. The cap style is always flat.
type OffsetOptions struct {
	JoinStyle     JoinStyle `json:"join_style,omitempty"`
	CurveSegments int       `json:"curve_segments,omitempty"`
	MitreLimit    float64   `json:"mitre_limit,omitempty"`
}

// DefaultOffsetOptions returns round joins with 10 segments per quarter circle.
func DefaultOffsetOptions() OffsetOptions {
	return OffsetOptions{
		JoinStyle:     JoinRound,
		CurveSegments: DefaultCurveSegments,
		MitreLimit:    DefaultMitreLimit,
	}
}

// WithDefaults fills zero-valued fields from base.
func (o OffsetOptions) WithDefaults(base OffsetOptions) OffsetOptions {
	if o.JoinStyle == "" {
		o.JoinStyle = base.JoinStyle
	}
	if o.CurveSegments == 0 {
		o.CurveSegments = base.CurveSegments
	}
	if o.MitreLimit == 0 {
		o.MitreLimit = base.MitreLimit
	}
	return o
}

// Normalize replaces JoinStyle with its canonical spelling, so "miter" and "MITRE"
// both become JoinMitre.
func (o OffsetOptions) Normalize() (OffsetOptions, error) {
	join, err := ParseJoinStyle(string(o.JoinStyle))
	if err != nil {
		return o, err
	}
	o.JoinStyle = join
	return o, nil
}

// Validate checks option ranges on the normalized join style.
func (o OffsetOptions) Validate() error {
	o, err := o.Normalize()
	if err != nil {
		return err
	}
	if o.CurveSegments < 1 || o.CurveSegments > MaxCurveSegments {
		return fmt.Errorf("%w: curve_segments must be 1-%d, got %d", ErrInvalidRequest, MaxCurveSegments, o.CurveSegments)
	}
	if o.JoinStyle == JoinMitre && (o.MitreLimit <= 0 || !isFinite(o.MitreLimit)) {
		return fmt.Errorf("%w: mitre_limit must be positive", ErrInvalidRequest)
	}
	return nil
}

// OffsetRequest asks for polygon to be offset by OffsetMeters in the given viewport.
type OffsetRequest struct {
	Polygon      Polygon        `json:"polygon"`
	Viewport     ViewportSpec   `json:"viewport"`
	OffsetMeters float64        `json:"offset_meters"`
	Options      *OffsetOptions `json:"options,omitempty"`
}

const MaxZoom = 30

// Validate rejects non-finite coordinates and out-of-range zoom levels.
// Polygons with fewer than three vertices are valid and produce an empty result.
func (r OffsetRequest) Validate() error {
	if !isFinite(r.OffsetMeters) {
		return fmt.Errorf("%w: offset_meters must be finite", ErrInvalidRequest)
	}
	if !isFinite(r.Viewport.Zoom) || r.Viewport.Zoom < 0 || r.Viewport.Zoom > MaxZoom {
		return fmt.Errorf("%w: viewport.zoom must be 0-%d", ErrInvalidRequest, MaxZoom)
	}
	for _, p := range []GeoPoint{r.Viewport.NorthEast, r.Viewport.SouthWest} {
		if !isFinite(p.Lat) || !isFinite(p.Lon) {
			return fmt.Errorf("%w: viewport corners must be finite", ErrInvalidRequest)
		}
	}
	for i, p := range r.Polygon {
		if !isFinite(p.Lat) || !isFinite(p.Lon) {
			return fmt.Errorf("%w: polygon[%d] is not finite", ErrInvalidRequest, i)
		}
	}
	if r.Options != nil {
		if _, err := ParseJoinStyle(string(r.Options.JoinStyle)); err != nil {
			return err
		}
	}
	return nil
}

// OffsetResult is the outcome of one offset computation.
type OffsetResult struct {
	Polygon       Polygon `json:"polygon"`
	MetersPerUnit float64 `json:"meters_per_unit,omitempty"`
	PlanarOffset  float64 `json:"planar_offset,omitempty"`
	Cached        bool    `json:"cached"`
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
