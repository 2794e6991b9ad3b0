package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config parameterizes one render. The zero value is not usable, start from
// DefaultConfig.
type Config struct {
	// Resolution is the output image side length in pixels.
	Resolution int
	// SSAA is the supersample factor. Marching happens on a grid of
	// (Resolution·SSAA)² rays which downsamples to Resolution².
	SSAA int
	// FocalDistance scales the forward component of ray directions. Larger
	// values narrow the field of view.
	FocalDistance float64
	// Radius of the origin-centered bounding sphere. Rays that cannot reach
	// it are never marched and marching rays beyond it have missed.
	Radius float64
	// Camera and Light place the observer and the single light source.
	Camera Orbit
	Light  Orbit
	// BaseColor is the shape albedo fed to the shading model.
	BaseColor r3.Vec
	// GroundGray is the brightness painted on shadowed ground pixels.
	GroundGray float64
	// GroundReach bounds the horizontal distance from the origin within
	// which ground points are shadow tested.
	GroundReach float64
	// March and Shadow bound the primary and occlusion passes.
	March  MarchParams
	Shadow ShadowParams
	// MaxBatch caps oracle query batch sizes.
	MaxBatch int
	// Workers above 1 evaluates oracle sub-batches concurrently. The Field
	// must then be safe for concurrent use.
	Workers int
	// Progress, when non-nil, receives per-step progress of the marching
	// passes ("march", "shadow", "ground shadow").
	Progress func(pass string, step, maxSteps int)
}

// DefaultConfig returns the reference setup: an 800×800 image rendered with
// 2× supersampling from a unit radius scene.
func DefaultConfig() Config {
	return Config{
		Resolution:    800,
		SSAA:          2,
		FocalDistance: 1.75,
		Radius:        1,
		Camera:        Orbit{Distance: 2.2, Yaw: 147, Pitch: 20},
		Light:         Orbit{Distance: 6, Yaw: 164, Pitch: 50},
		BaseColor:     r3.Vec{X: 0.8, Y: 0.1, Z: 0.1},
		GroundGray:    0.4,
		GroundReach:   3,
		March:         DefaultMarchParams(),
		Shadow:        DefaultShadowParams(),
		MaxBatch:      100000,
		Workers:       1,
	}
}

func (cfg *Config) validate() error {
	switch {
	case cfg.Resolution < 1:
		return errors.New("resolution must be at least 1")
	case cfg.SSAA < 1:
		return errors.New("supersample factor must be at least 1")
	case cfg.FocalDistance <= 0:
		return errors.New("focal distance must be positive")
	case cfg.Radius < 0:
		return errors.New("bounding sphere radius must not be negative")
	case cfg.March.MaxSteps < 0 || cfg.Shadow.MaxSteps < 0:
		return errors.New("march step budget must not be negative")
	case cfg.March.StepClamp <= 0 || cfg.Shadow.StepClamp <= 0:
		return errors.New("step clamp must be positive")
	case cfg.March.Threshold <= 0 || cfg.Shadow.Threshold <= 0:
		return errors.New("hit threshold must be positive")
	case cfg.GroundReach < 0:
		return errors.New("ground reach must not be negative")
	case cfg.MaxBatch < 1:
		return errors.New("oracle batch size must be at least 1")
	}
	return nil
}

// Render sphere-traces the field seen from cfg.Camera and returns the
// shaded, shadowed and antialiased image. code is handed through to every
// oracle query and may be nil for fields that ignore it.
//
// Rendering is deterministic: the same field, code and config produce the
// same image.
func Render(f sdfray.Field, code sdfray.Code, cfg Config) (*image.RGBA, error) {
	if f == nil {
		panic("nil Field argument")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	cam, err := NewCamera(cfg.Camera)
	if err != nil {
		return nil, err
	}
	light := cfg.Light.Position()
	oracle := sdfray.NewBatcher(f, cfg.MaxBatch, cfg.Workers)

	// Primary pass. Rays that cannot reach the bounding sphere are misses
	// before the first oracle query, the rest start marching on the sphere.
	side := cfg.Resolution * cfg.SSAA
	rays := cam.Rays(side, cfg.FocalDistance)
	pos := make([]r3.Vec, len(rays))
	dir := make([]r3.Vec, len(rays))
	out := make([]Outcome, len(rays))
	active := make([]int, 0, len(rays))
	for i, ry := range rays {
		pos[i] = ry.Origin
		dir[i] = ry.Dir
		near, ok := SphereEnter(ry, cfg.Radius)
		if !ok {
			out[i] = Missed
			continue
		}
		pos[i] = r3.Add(pos[i], r3.Scale(near, ry.Dir))
		active = append(active, i)
	}
	tr := Tracer{
		Field:    oracle,
		Code:     code,
		Params:   cfg.March,
		Missed:   func(p r3.Vec) bool { return r3.Norm(p) > cfg.Radius },
		Progress: stageProgress(cfg.Progress, "march", cfg.March.MaxSteps),
	}
	if err := tr.Trace(pos, dir, active, out); err != nil {
		return nil, fmt.Errorf("primary pass: %w", err)
	}

	var hitIDs []int
	var hitPts []r3.Vec
	for i, o := range out {
		if o == Hit {
			hitIDs = append(hitIDs, i)
			hitPts = append(hitPts, pos[i])
		}
	}

	buf := NewPixelBuffer(side)
	// A render with no hits is all background. The ground plane height is
	// undefined then, so the ground pass is skipped as well.
	if len(hitPts) > 0 {
		normals, err := oracle.Normals(hitPts, code)
		if err != nil {
			return nil, fmt.Errorf("normal query: %w", err)
		}
		occluded, err := Shadows(oracle, code, hitPts, light, cfg.Shadow,
			stageProgress(cfg.Progress, "shadow", cfg.Shadow.MaxSteps))
		if err != nil {
			return nil, fmt.Errorf("shadow pass: %w", err)
		}
		for k, id := range hitIDs {
			l := r3.Unit(r3.Sub(light, hitPts[k]))
			buf.Set(id, Shade(normals[k], l, dir[id], occluded[k], cfg.BaseColor))
		}

		// Ground pass. Non-hit rays pointing downward cross the plane under
		// the lowest hit point; those landing near the shape are shadow
		// tested and darkened when occluded.
		ground := d3.Set(hitPts).Min().Y
		var gIDs []int
		var gPts []r3.Vec
		for i := range rays {
			if out[i] == Hit || dir[i].Y >= 0 {
				continue
			}
			p := GroundHit(pos[i], dir[i], ground)
			if math.Hypot(p.X, p.Z) < cfg.GroundReach {
				gIDs = append(gIDs, i)
				gPts = append(gPts, p)
			}
		}
		gOccluded, err := Shadows(oracle, code, gPts, light, cfg.Shadow,
			stageProgress(cfg.Progress, "ground shadow", cfg.Shadow.MaxSteps))
		if err != nil {
			return nil, fmt.Errorf("ground shadow pass: %w", err)
		}
		gray := d3.Elem(cfg.GroundGray)
		for k, id := range gIDs {
			if gOccluded[k] {
				buf.Set(id, gray)
			}
		}
	}

	img := buf.Image()
	if cfg.SSAA != 1 {
		img = Downsample(img, cfg.Resolution)
	}
	return img, nil
}

// stageProgress adapts the config progress callback to one marching pass.
func stageProgress(p func(pass string, step, maxSteps int), pass string, maxSteps int) func(step, active int) {
	if p == nil {
		return nil
	}
	return func(step, active int) {
		p(pass, step, maxSteps)
	}
}
