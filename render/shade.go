package render

import (
	"math"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shade computes the stylized surface color of one hit: half lambert
// diffuse, a narrow specular lobe and a rim term that brightens silhouette
// edges. normal and lightDir must be unit vectors and viewDir is the unit
// ray direction. The result is an RGB triple clamped to [0,1].
//
//	color = base·(diffuse·0.5 + 0.5) + specular·0.3 + rim
func Shade(normal, lightDir, viewDir r3.Vec, occluded bool, base r3.Vec) r3.Vec {
	lit := 1.0
	if occluded {
		lit = 0
	}
	diffuse := sdfray.Clamp(r3.Dot(lightDir, normal), 0, 1) * lit
	reflect := r3.Unit(r3.Sub(lightDir, r3.Scale(2*r3.Dot(lightDir, normal), normal)))
	specular := math.Pow(sdfray.Clamp(r3.Dot(reflect, viewDir), 0, 1), 20) * lit
	rim := 0.3 * math.Pow(1-sdfray.Clamp(-r3.Dot(normal, viewDir), 0, 1), 4)
	c := r3.Add(r3.Scale(diffuse*0.5+0.5, base), d3.Elem(specular*0.3+rim))
	return d3.Clamp(c, r3.Vec{}, d3.Elem(1))
}
