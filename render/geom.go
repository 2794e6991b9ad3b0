package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half line cast from Origin along the unit direction Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// SphereEnter returns the distance along r at which it first crosses the
// origin-centered sphere of the given radius. ok is false when the ray never
// reaches the sphere; such rays miss the scene without any marching.
func SphereEnter(r Ray, radius float64) (near float64, ok bool) {
	b := 2 * r3.Dot(r.Origin, r.Dir)
	c := r3.Dot(r.Origin, r.Origin) - radius*radius
	near = (-b - math.Sqrt(b*b-4*c)) / 2
	if math.IsNaN(near) || math.IsInf(near, 0) {
		return 0, false
	}
	return near, true
}

// GroundHit returns where the line through pos along dir meets the
// horizontal plane at the given height. pos is the current position of a
// marched ray, not its origin. dir.Y must be nonzero.
func GroundHit(pos, dir r3.Vec, height float64) r3.Vec {
	return r3.Sub(pos, r3.Scale((pos.Y-height)/dir.Y, dir))
}
