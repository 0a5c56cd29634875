package torus

import "errors"

var (
	// ErrEmptyConfiguration is returned when no points are supplied.
	ErrEmptyConfiguration = errors.New("torus: empty configuration")
	// ErrDimensionMismatch is returned when a point's coordinate count does not
	// match the size vector or the other points.
	ErrDimensionMismatch = errors.New("torus: dimension mismatch")
	// ErrOutOfBounds is returned when a coordinate lies outside [0, size).
	ErrOutOfBounds = errors.New("torus: coordinate out of bounds")
	// ErrDegenerateAxis is returned when a declared axis size is less than 1.
	ErrDegenerateAxis = errors.New("torus: degenerate axis")
	// ErrDuplicatePoint is returned when the same point appears twice.
	ErrDuplicatePoint = errors.New("torus: duplicate point")
)
