package render_test

import (
	"math"
	"testing"

	"github.com/soypat/sdfray/internal/d3"
	"github.com/soypat/sdfray/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphereEnter(t *testing.T) {
	for _, tc := range []struct {
		name   string
		ray    render.Ray
		radius float64
		near   float64
		ok     bool
	}{
		{
			name:   "head on",
			ray:    render.Ray{Origin: r3.Vec{Z: -2}, Dir: r3.Vec{Z: 1}},
			radius: 1, near: 1, ok: true,
		},
		{
			name:   "pointing away",
			ray:    render.Ray{Origin: r3.Vec{Z: -2}, Dir: r3.Vec{Z: -1}},
			radius: 1, near: -3, ok: true,
		},
		{
			name:   "inside",
			ray:    render.Ray{Origin: r3.Vec{}, Dir: r3.Vec{Z: 1}},
			radius: 1, near: -1, ok: true,
		},
		{
			name:   "clean miss",
			ray:    render.Ray{Origin: r3.Vec{Y: 2, Z: -2}, Dir: r3.Vec{Z: 1}},
			radius: 1, ok: false,
		},
		{
			name:   "zero radius",
			ray:    render.Ray{Origin: r3.Vec{Y: 0.5, Z: -2}, Dir: r3.Vec{Z: 1}},
			radius: 0, ok: false,
		},
	} {
		near, ok := render.SphereEnter(tc.ray, tc.radius)
		if ok != tc.ok {
			t.Errorf("%s: ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && math.Abs(near-tc.near) > 1e-12 {
			t.Errorf("%s: near = %g, want %g", tc.name, near, tc.near)
		}
	}
}

func TestGroundHit(t *testing.T) {
	dir := r3.Unit(r3.Vec{X: 1, Y: -1})
	p := render.GroundHit(r3.Vec{Y: 1}, dir, 0)
	if !d3.EqualWithin(p, r3.Vec{X: 1}, 1e-12) {
		t.Fatalf("ground hit at %+v, want (1,0,0)", p)
	}
	// Solving from a marched position must land on the same plane point.
	marched := r3.Add(r3.Vec{Y: 1}, r3.Scale(0.3, dir))
	p = render.GroundHit(marched, dir, 0)
	if !d3.EqualWithin(p, r3.Vec{X: 1}, 1e-12) {
		t.Fatalf("ground hit from marched position at %+v, want (1,0,0)", p)
	}
}
