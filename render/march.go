package render

import (
	"fmt"

	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/spatial/r3"
)

// Outcome classifies a ray over the course of a marching pass.
type Outcome uint8

const (
	// Marching rays are still advancing through the field.
	Marching Outcome = iota
	// Hit rays converged onto the surface.
	Hit
	// Missed rays escaped the scene bound.
	Missed
)

// MarchParams bound one sphere tracing pass.
type MarchParams struct {
	// MaxSteps is the iteration budget. Rays still marching after MaxSteps
	// oracle queries are classified Hit.
	MaxSteps int
	// Threshold is the hit distance: a ray whose clamped step lands in
	// (0, Threshold) has converged onto the surface.
	Threshold float64
	// StepClamp limits the magnitude of every step so rays neither tunnel
	// through thin features nor diverge on ill-behaved fields.
	StepClamp float64
}

// DefaultMarchParams returns the primary ray budget.
func DefaultMarchParams() MarchParams {
	return MarchParams{MaxSteps: 1000, Threshold: 0.0005, StepClamp: 0.02}
}

// Tracer marches batches of rays through a signed distance field until each
// ray hits the surface, escapes the scene or the step budget runs out.
type Tracer struct {
	Field  sdfray.Field
	Code   sdfray.Code
	Params MarchParams
	// Missed reports whether a marched position escaped the scene.
	Missed func(p r3.Vec) bool
	// Progress, when non-nil, is called after every step with the number of
	// rays still marching.
	Progress func(step, active int)
}

// Trace advances the rays indexed by active. pos holds per-ray positions and
// is advanced in place, dir holds the matching unit directions. out receives
// the classification of every index in active. Trace owns and consumes
// active.
//
// Each step issues one batched distance query over the active rays, clamps
// to ±StepClamp, advances and classifies. Classified rays leave the active
// set by swapping in the last entry. The pass ends when fewer than two rays
// remain or the budget runs out; every ray still active at that point is
// classified Hit, so for shadow passes leftovers count as occluded.
func (t *Tracer) Trace(pos, dir []r3.Vec, active []int, out []Outcome) error {
	if t.Field == nil {
		panic("nil Field argument")
	}
	if t.Missed == nil {
		panic("nil Missed argument")
	}
	batch := make([]r3.Vec, 0, len(active))
	for step := 0; step < t.Params.MaxSteps; step++ {
		if len(active) < 2 {
			break
		}
		batch = batch[:0]
		for _, id := range active {
			batch = append(batch, pos[id])
		}
		d, err := t.Field.Distances(batch, t.Code)
		if err != nil {
			return fmt.Errorf("march step %d: %w", step, err)
		}
		if len(d) != len(active) {
			return fmt.Errorf("march step %d: %w: got %d distances for %d rays", step, sdfray.ErrBatchMismatch, len(d), len(active))
		}
		// Swap-and-truncate compaction. The distance slice is swapped in
		// lockstep with the index arena so d[k] always belongs to active[k].
		n := len(active)
		for k := 0; k < n; {
			id := active[k]
			adv := sdfray.Clamp(d[k], -t.Params.StepClamp, t.Params.StepClamp)
			pos[id] = r3.Add(pos[id], r3.Scale(adv, dir[id]))
			switch {
			case adv > 0 && adv < t.Params.Threshold:
				out[id] = Hit
			case t.Missed(pos[id]):
				out[id] = Missed
			default:
				k++
				continue
			}
			n--
			active[k] = active[n]
			d[k] = d[n]
		}
		active = active[:n]
		if t.Progress != nil {
			t.Progress(step+1, len(active))
		}
	}
	for _, id := range active {
		out[id] = Hit
	}
	return nil
}
