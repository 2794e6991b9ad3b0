// Package field implements analytic signed distance oracles. The shapes are
// fixed at construction and ignore the shape descriptor passed to queries.
package field

import (
	"errors"
	"math"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// normalEps is the central difference step for estimated normals.
const normalEps = 1e-4

var (
	_ sdfray.Field = (*sphere)(nil)
	_ sdfray.Field = (*box)(nil)
	_ sdfray.Field = (*torus)(nil)
	_ sdfray.Field = (funcField)(nil)
)

// Sphere returns the field of a sphere of the given radius centered
// at the origin.
func Sphere(radius float64) (sdfray.Field, error) {
	if radius <= 0 {
		return nil, errors.New("sphere radius <= 0")
	}
	return &sphere{radius: radius}, nil
}

type sphere struct {
	radius float64
}

// Distances returns the exact distance to the sphere surface.
func (s *sphere) Distances(p []r3.Vec, _ sdfray.Code) ([]float64, error) {
	d := make([]float64, len(p))
	for i, q := range p {
		d[i] = r3.Norm(q) - s.radius
	}
	return d, nil
}

// Normals returns exact radial normals.
func (s *sphere) Normals(p []r3.Vec, _ sdfray.Code) ([]r3.Vec, error) {
	n := make([]r3.Vec, len(p))
	for i, q := range p {
		n[i] = r3.Unit(q)
	}
	return n, nil
}

// Box returns the field of a 3d box centered at the origin (rounded corners
// with round > 0).
func Box(size r3.Vec, round float64) (sdfray.Field, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, errors.New("box size <= 0")
	}
	if round < 0 {
		return nil, errors.New("box round < 0")
	}
	size = r3.Scale(0.5, size)
	return &box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
	}, nil
}

type box struct {
	size  r3.Vec
	round float64
}

func (s *box) Distances(p []r3.Vec, _ sdfray.Code) ([]float64, error) {
	d := make([]float64, len(p))
	for i, q := range p {
		d[i] = sdfBox3d(q, s.size) - s.round
	}
	return d, nil
}

func (s *box) Normals(p []r3.Vec, code sdfray.Code) ([]r3.Vec, error) {
	return sdfray.EstimateNormals(s, code, p, normalEps)
}

// Torus returns the field of a torus centered at the origin with its ring
// lying in the xz plane. ring is the radius from the origin to the tube
// center and tube the radius of the tube itself.
func Torus(ring, tube float64) (sdfray.Field, error) {
	if tube <= 0 {
		return nil, errors.New("torus tube radius <= 0")
	}
	if ring < tube {
		return nil, errors.New("torus ring radius < tube radius")
	}
	return &torus{ring: ring, tube: tube}, nil
}

type torus struct {
	ring, tube float64
}

func (s *torus) Distances(p []r3.Vec, _ sdfray.Code) ([]float64, error) {
	d := make([]float64, len(p))
	for i, q := range p {
		d[i] = math.Hypot(math.Hypot(q.X, q.Z)-s.ring, q.Y) - s.tube
	}
	return d, nil
}

func (s *torus) Normals(p []r3.Vec, code sdfray.Code) ([]r3.Vec, error) {
	return sdfray.EstimateNormals(s, code, p, normalEps)
}

// Func adapts a pointwise distance function into a Field. Normals are
// estimated by central differences.
func Func(f func(r3.Vec) float64) sdfray.Field {
	if f == nil {
		panic("nil distance function argument")
	}
	return funcField(f)
}

type funcField func(r3.Vec) float64

func (f funcField) Distances(p []r3.Vec, _ sdfray.Code) ([]float64, error) {
	d := make([]float64, len(p))
	for i, q := range p {
		d[i] = f(q)
	}
	return d, nil
}

func (f funcField) Normals(p []r3.Vec, code sdfray.Code) ([]r3.Vec, error) {
	return sdfray.EstimateNormals(f, code, p, normalEps)
}

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}
