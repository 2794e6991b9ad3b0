// Package sdfxfield adapts sdfx solids as distance oracles so constructive
// solid geometry models render through the same pipeline as learned shapes.
package sdfxfield

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/spatial/r3"
)

// normalEps is the central difference step for normal estimation.
const normalEps = 1e-4

var _ sdfray.Field = field{}

type field struct {
	s sdf.SDF3
	// Oracle queries at p evaluate the solid at center + p/scale with the
	// result scaled back, mapping the solid into render space.
	center r3.Vec
	scale  float64
}

// Wrap adapts a solid as a distance oracle without repositioning it. The
// latent code is ignored.
func Wrap(s sdf.SDF3) sdfray.Field {
	if s == nil {
		panic("nil SDF3 argument")
	}
	return field{s: s, scale: 1}
}

// Fit recenters and rescales the solid so its bounding box fits inside an
// origin-centered sphere of the given radius, the region sphere tracing
// actually explores.
func Fit(s sdf.SDF3, radius float64) (sdfray.Field, error) {
	if s == nil {
		panic("nil SDF3 argument")
	}
	if radius <= 0 {
		return nil, errors.New("fit radius must be positive")
	}
	bb := s.BoundingBox()
	min := r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z}
	max := r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z}
	center := r3.Scale(0.5, r3.Add(min, max))
	halfDiag := r3.Norm(r3.Sub(max, center))
	if !(halfDiag > 0) {
		return nil, errors.New("solid bounding box is degenerate")
	}
	return field{s: s, center: center, scale: radius / halfDiag}, nil
}

// Distances evaluates the solid at every point, one query at a time.
func (f field) Distances(p []r3.Vec, _ sdfray.Code) ([]float64, error) {
	d := make([]float64, len(p))
	for i, q := range p {
		w := r3.Add(f.center, r3.Scale(1/f.scale, q))
		d[i] = f.s.Evaluate(v3.Vec{X: w.X, Y: w.Y, Z: w.Z}) * f.scale
	}
	return d, nil
}

// Normals estimates unit surface normals by central differences of the
// solid distance.
func (f field) Normals(p []r3.Vec, code sdfray.Code) ([]r3.Vec, error) {
	return sdfray.EstimateNormals(f, code, p, normalEps)
}
