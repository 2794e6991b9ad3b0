package sdfray

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const pi = math.Pi

// DtoR converts degrees to radians
func DtoR(degrees float64) float64 {
	return (pi / 180) * degrees
}

// RtoD converts radians to degrees
func RtoD(radians float64) float64 {
	return (180 / pi) * radians
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// Normals

// EstimateNormals returns the unit surface normals of f at each point (the
// points don't need to be on the surface). Computed by sampling f six times
// inside a box of side 2*eps centered on each point, assembled into a single
// batched distance query. It serves Field implementations that have no
// analytic gradient.
func EstimateNormals(f Field, code Code, p []r3.Vec, eps float64) ([]r3.Vec, error) {
	if len(p) == 0 {
		return nil, nil
	}
	probes := make([]r3.Vec, 0, 6*len(p))
	for _, q := range p {
		probes = append(probes,
			r3.Add(q, r3.Vec{X: eps}), r3.Add(q, r3.Vec{X: -eps}),
			r3.Add(q, r3.Vec{Y: eps}), r3.Add(q, r3.Vec{Y: -eps}),
			r3.Add(q, r3.Vec{Z: eps}), r3.Add(q, r3.Vec{Z: -eps}),
		)
	}
	d, err := f.Distances(probes, code)
	if err != nil {
		return nil, err
	}
	if len(d) != len(probes) {
		return nil, fmt.Errorf("%w: got %d distances for %d probe points", ErrBatchMismatch, len(d), len(probes))
	}
	normals := make([]r3.Vec, len(p))
	for i := range p {
		k := 6 * i
		normals[i] = r3.Unit(r3.Vec{
			X: d[k] - d[k+1],
			Y: d[k+2] - d[k+3],
			Z: d[k+4] - d[k+5],
		})
	}
	return normals, nil
}

// Floating Point Comparisons
// See: http://floating-point-gui.de/errors/NearlyEqualsTest.java

const minNormal = 2.2250738585072014e-308 // 2**-1022

// EqualFloat64 compares two float64 values for equality.
func EqualFloat64(a, b, epsilon float64) bool {
	if a == b {
		return true
	}
	absA := math.Abs(a)
	absB := math.Abs(b)
	diff := math.Abs(a - b)
	if a == 0 || b == 0 || diff < minNormal {
		// a or b is zero or both are extremely close to it
		// relative error is less meaningful here
		return diff < (epsilon * minNormal)
	}
	// use relative error
	return diff/math.Min((absA+absB), math.MaxFloat64) < epsilon
}
