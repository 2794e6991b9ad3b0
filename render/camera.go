package render

import (
	"errors"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// worldUp is the fixed vertical axis scenes are oriented against.
var worldUp = r3.Vec{Y: 1}

// Orbit places an observer on a sphere centered at the origin, facing the
// origin. Yaw spins about the vertical axis and Pitch tilts about the
// horizontal axis, both in degrees.
type Orbit struct {
	Distance float64
	Yaw      float64
	Pitch    float64
}

// Position returns the world position of the observer: the origin offset by
// -Distance along z, then rotated by Pitch about x and Yaw about y.
func (o Orbit) Position() r3.Vec {
	pose := d3.Transform{}.
		Translate(r3.Vec{Z: -o.Distance}).
		Mul(d3.RotateX(sdfray.DtoR(o.Pitch))).
		Mul(d3.RotateY(sdfray.DtoR(o.Yaw)))
	return pose.Inv().Transform(r3.Vec{})
}

// Camera holds the ray generation basis. Right and Up are deliberately not
// normalized: their magnitude scales the screen plane the same way the
// focal distance scales Forward.
type Camera struct {
	Position r3.Vec
	Forward  r3.Vec
	Right    r3.Vec
	Up       r3.Vec
}

// NewCamera derives the ray generation basis for an observer orbit. It
// returns an error when the view axis is parallel to the vertical, which
// leaves the screen orientation undefined.
func NewCamera(o Orbit) (Camera, error) {
	pos := o.Position()
	forward := r3.Scale(-1, r3.Unit(pos))
	right := r3.Cross(forward, worldUp)
	// the comparison is inverted so NaN positions (zero-distance orbits)
	// also land on the error path.
	if !(r3.Norm2(right) > 1e-12) {
		return Camera{}, errors.New("degenerate camera: view axis parallel to vertical")
	}
	return Camera{
		Position: pos,
		Forward:  forward,
		Right:    right,
		Up:       r3.Cross(forward, right),
	}, nil
}

// Rays builds the canonical pixel-order ray grid: one ray per cell of a
// side×side screen spanning [-1,1]×[-1,1], row-major with the horizontal
// coordinate varying fastest. All rays originate at the camera position.
func (c Camera) Rays(side int, focal float64) []Ray {
	if side < 1 {
		panic("ray grid side must be at least 1")
	}
	lin := linspace(-1, 1, side)
	rays := make([]Ray, 0, side*side)
	for _, v := range lin {
		for _, u := range lin {
			dir := r3.Add(r3.Scale(u, c.Right), r3.Add(r3.Scale(v, c.Up), r3.Scale(focal, c.Forward)))
			rays = append(rays, Ray{Origin: c.Position, Dir: r3.Unit(dir)})
		}
	}
	return rays
}

// linspace divides [a,b] into n points including both endpoints.
func linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	step := (b - a) / float64(n-1)
	s := make([]float64, n)
	for i := range s {
		s[i] = a + float64(i)*step
	}
	return s
}
