// Package sdfray defines the batched signed distance oracle contract used by
// the sphere tracing renderer in package render, along with the adapter that
// splits oversized point batches before they reach an oracle.
package sdfray

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Code is an opaque fixed-length shape descriptor. It selects which shape an
// oracle evaluates and is passed by reference into every query. A Code must
// not be mutated while a render that uses it is in flight. Oracles that
// describe a single fixed shape ignore it.
type Code []float32

// Field is a batched signed distance oracle. Distances returns the signed
// distance to the nearest surface for every query point (negative inside,
// positive outside) and Normals the unit surface normal at every query point.
// Both must behave as pure functions of (p, code) and must return exactly
// one result per query point.
type Field interface {
	Distances(p []r3.Vec, code Code) ([]float64, error)
	Normals(p []r3.Vec, code Code) ([]r3.Vec, error)
}

// ErrBatchMismatch reports an oracle that returned a result count different
// from its query point count. It is a contract violation: callers abort the
// render rather than truncate or pad results.
var ErrBatchMismatch = errors.New("oracle result count mismatches query point count")
