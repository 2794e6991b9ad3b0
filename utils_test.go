package sdfray_test

import (
	"math"
	"testing"

	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

func TestEstimateNormalsSphere(t *testing.T) {
	rec := &recordField{fn: func(q r3.Vec) float64 { return r3.Norm(q) - 1 }}
	s := 1 / math.Sqrt(3)
	p := []r3.Vec{
		{X: 2},
		{Z: -3},
		{X: 2 * s, Y: 2 * s, Z: 2 * s},
	}
	want := []r3.Vec{
		{X: 1},
		{Z: -1},
		{X: s, Y: s, Z: s},
	}
	n, err := sdfray.EstimateNormals(rec, nil, p, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if len(n) != len(p) {
		t.Fatalf("got %d normals for %d points", len(n), len(p))
	}
	for i := range n {
		if !vecNear(n[i], want[i], 1e-6) {
			t.Errorf("normal %d: got %+v, want %+v", i, n[i], want[i])
		}
	}
	if rec.calls() != 1 {
		t.Errorf("probes issued %d oracle queries, want 1 batched query", rec.calls())
	}
	if rec.batches[0] != 6*len(p) {
		t.Errorf("probe batch size %d, want %d", rec.batches[0], 6*len(p))
	}
}

func TestEstimateNormalsEmpty(t *testing.T) {
	rec := &recordField{fn: func(q r3.Vec) float64 { return 1 }}
	n, err := sdfray.EstimateNormals(rec, nil, nil, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if n != nil {
		t.Fatalf("got %d normals for empty query", len(n))
	}
	if rec.calls() != 0 {
		t.Fatalf("empty query reached the oracle %d times", rec.calls())
	}
}

func TestClamp(t *testing.T) {
	for _, tc := range []struct {
		x, a, b, want float64
	}{
		{x: 0.5, a: 0, b: 1, want: 0.5},
		{x: -3, a: -0.02, b: 0.02, want: -0.02},
		{x: 3, a: -0.02, b: 0.02, want: 0.02},
		{x: 1, a: 1, b: 1, want: 1},
	} {
		if got := sdfray.Clamp(tc.x, tc.a, tc.b); got != tc.want {
			t.Errorf("Clamp(%g, %g, %g) = %g, want %g", tc.x, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAngleConversions(t *testing.T) {
	if got := sdfray.DtoR(180); got != math.Pi {
		t.Errorf("DtoR(180) = %g, want pi", got)
	}
	if got := sdfray.RtoD(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("RtoD(pi/2) = %g, want 90", got)
	}
}
