package render

import (
	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/spatial/r3"
)

// ShadowParams bound an occlusion pass. The budget is shorter and coarser
// than a primary pass since shadows only need a hit or escape answer.
type ShadowParams struct {
	MarchParams
	// Offset nudges every starting point toward the light before marching
	// so the ray does not immediately re-detect the surface it left.
	Offset float64
	// Bound is the height above which a shadow ray has escaped to the light.
	Bound float64
}

// DefaultShadowParams returns the shadow ray budget.
func DefaultShadowParams() ShadowParams {
	return ShadowParams{
		MarchParams: MarchParams{MaxSteps: 200, Threshold: 0.001, StepClamp: 0.1},
		Offset:      0.1,
		Bound:       1,
	}
}

// Shadows marches a ray from every point toward the light and reports which
// points are occluded. A ray that hits geometry or exhausts its budget is
// occluded, a ray that climbs past par.Bound escaped and is lit. progress
// may be nil.
func Shadows(f sdfray.Field, code sdfray.Code, points []r3.Vec, light r3.Vec, par ShadowParams, progress func(step, active int)) ([]bool, error) {
	if len(points) == 0 {
		return nil, nil
	}
	pos := make([]r3.Vec, len(points))
	dir := make([]r3.Vec, len(points))
	active := make([]int, len(points))
	out := make([]Outcome, len(points))
	for i, p := range points {
		d := r3.Unit(r3.Sub(light, p))
		dir[i] = d
		pos[i] = r3.Add(p, r3.Scale(par.Offset, d))
		active[i] = i
	}
	t := Tracer{
		Field:    f,
		Code:     code,
		Params:   par.MarchParams,
		Missed:   func(p r3.Vec) bool { return p.Y > par.Bound },
		Progress: progress,
	}
	if err := t.Trace(pos, dir, active, out); err != nil {
		return nil, err
	}
	occluded := make([]bool, len(points))
	for i, o := range out {
		occluded[i] = o == Hit
	}
	return occluded, nil
}
