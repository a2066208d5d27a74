package store

import "errors"

var (
	// ErrObjectNotFound is returned when the requested object has no row.
	ErrObjectNotFound = errors.New("object not found")
	// ErrVersionRegression is returned when a caller tries to lower a
	// stored library version. Versions only move forward.
	ErrVersionRegression = errors.New("version regression")
	// ErrExecutingQuery wraps database-level failures so callers can
	// distinguish them from not-found conditions.
	ErrExecutingQuery = errors.New("error executing query")
)
