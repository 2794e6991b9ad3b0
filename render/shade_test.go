package render_test

import (
	"math"
	"testing"

	"github.com/soypat/sdfray/internal/d3"
	"github.com/soypat/sdfray/render"
	"gonum.org/v1/gonum/spatial/r3"
)

var baseRed = r3.Vec{X: 0.8, Y: 0.1, Z: 0.1}

func TestShadeHeadOn(t *testing.T) {
	// Normal and light aligned, viewer looking straight down the normal:
	// full diffuse, full specular, no rim. Red saturates at 1.
	n := r3.Vec{Y: 1}
	l := r3.Vec{Y: 1}
	v := r3.Vec{Y: -1}
	c := render.Shade(n, l, v, false, baseRed)
	want := r3.Vec{X: 1, Y: 0.4, Z: 0.4}
	if !d3.EqualWithin(c, want, 1e-12) {
		t.Fatalf("got %+v, want %+v", c, want)
	}
}

func TestShadeOccluded(t *testing.T) {
	// Occlusion kills diffuse and specular, leaving the ambient half of the
	// base color. Rim is unaffected but zero head on.
	n := r3.Vec{Y: 1}
	l := r3.Vec{Y: 1}
	v := r3.Vec{Y: -1}
	c := render.Shade(n, l, v, true, baseRed)
	want := r3.Scale(0.5, baseRed)
	if !d3.EqualWithin(c, want, 1e-12) {
		t.Fatalf("got %+v, want %+v", c, want)
	}
}

func TestShadeGrazing(t *testing.T) {
	n := r3.Vec{Y: 1}
	l := r3.Vec{Y: 1}
	v := r3.Unit(r3.Vec{X: 1, Y: -1})
	c := render.Shade(n, l, v, false, baseRed)
	// diffuse = 1, specular = (1/sqrt2)^20, rim = 0.3(1 - 1/sqrt2)^4.
	s := math.Sqrt2 / 2
	add := 0.3*math.Pow(s, 20) + 0.3*math.Pow(1-s, 4)
	want := r3.Vec{X: 0.8 + add, Y: 0.1 + add, Z: 0.1 + add}
	if !d3.EqualWithin(c, want, 1e-12) {
		t.Fatalf("got %+v, want %+v", c, want)
	}
}

func TestShadeClampsChannels(t *testing.T) {
	n := r3.Vec{Y: 1}
	l := r3.Vec{Y: 1}
	v := r3.Vec{Y: -1}
	c := render.Shade(n, l, v, false, r3.Vec{X: 2, Y: -1, Z: 0.5})
	if c.X != 1 {
		t.Errorf("red %g, want clamped to 1", c.X)
	}
	if c.Y < 0 || c.Y > 1 {
		t.Errorf("green %g escaped [0,1]", c.Y)
	}
	if c.Z != 0.8 {
		t.Errorf("blue %g, want 0.8", c.Z)
	}
}
