package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailableProjection means the viewport cannot currently project, e.g. the
	// host map has not been laid out yet. Callers may retry once it is ready.
	ErrUnavailableProjection = errors.New("projection unavailable")

	// ErrInvalidDirectionVector means the two scale reference vertices coincide in
	// planar space.
	ErrInvalidDirectionVector = errors.New("invalid direction vector")

	// ErrGeometryOperationFailed wraps any failure of the planar buffering engine.
	ErrGeometryOperationFailed = errors.New("geometry operation failed")

	// ErrMultiRingResult is returned when the buffer splits into several polygons.
	// It also matches ErrGeometryOperationFailed.
	ErrMultiRingResult = fmt.Errorf("%w: result has multiple rings", ErrGeometryOperationFailed)

	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyResult    = errors.New("offset produced an empty polygon")
	ErrNotFound       = errors.New("not found")
)

// ErrorCode returns the stable API code for a domain error, or "internal_error".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "bad_request"
	case errors.Is(err, ErrUnavailableProjection):
		return "unavailable_projection"
	case errors.Is(err, ErrInvalidDirectionVector):
		return "invalid_direction"
	case errors.Is(err, ErrMultiRingResult):
		return "multi_ring_result"
	case errors.Is(err, ErrGeometryOperationFailed):
		return "geometry_failed"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
