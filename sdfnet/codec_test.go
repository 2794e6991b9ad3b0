package sdfnet_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/sdfnet"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// codecNet uses parameters that are exact in float32 so a round trip
// through the file format reproduces the same float64 values.
func codecNet(t *testing.T) *sdfnet.Net {
	t.Helper()
	w1 := mat.NewDense(2, 4, []float64{
		0.25, -1.5, 0.5, 2,
		1, 0, -0.75, 0.125,
	})
	b1 := []float64{0.5, -0.25}
	w2 := mat.NewDense(1, 2, []float64{1.5, -2})
	b2 := []float64{0.0625}
	n, err := sdfnet.NewNet(1, []*mat.Dense{w1, w2}, [][]float64{b1, b2})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestNetRoundTrip(t *testing.T) {
	n := codecNet(t)
	var buf bytes.Buffer
	if err := sdfnet.WriteNet(&buf, n); err != nil {
		t.Fatal(err)
	}
	got, err := sdfnet.ReadNet(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Latent() != n.Latent() {
		t.Fatalf("latent dimension %d, want %d", got.Latent(), n.Latent())
	}
	code := sdfray.Code{0.5}
	p := []r3.Vec{
		{X: 0.25, Y: -0.5, Z: 0.75},
		{X: -1, Y: 2, Z: 0.125},
		{},
	}
	want, err := n.Distances(p, code)
	if err != nil {
		t.Fatal(err)
	}
	d, err := got.Distances(p, code)
	if err != nil {
		t.Fatal(err)
	}
	for i := range d {
		if d[i] != want[i] {
			t.Errorf("distance %d: got %g, want %g", i, d[i], want[i])
		}
	}
}

func TestReadNetRejectsCorrupt(t *testing.T) {
	n := codecNet(t)
	var buf bytes.Buffer
	if err := sdfnet.WriteNet(&buf, n); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	badMagic := append([]byte{}, raw...)
	badMagic[0] = 'X'
	if _, err := sdfnet.ReadNet(bytes.NewReader(badMagic)); err == nil {
		t.Error("bad magic accepted")
	}

	badVersion := append([]byte{}, raw...)
	badVersion[4] = 0xff
	if _, err := sdfnet.ReadNet(bytes.NewReader(badVersion)); err == nil {
		t.Error("bad version accepted")
	}

	if _, err := sdfnet.ReadNet(bytes.NewReader(raw[:len(raw)/2])); err == nil {
		t.Error("truncated stream accepted")
	}
}

func TestReadNetRejectsNonFinite(t *testing.T) {
	n, err := sdfnet.NewNet(0,
		[]*mat.Dense{mat.NewDense(1, 3, []float64{math.NaN(), 0, 0})},
		[][]float64{{0}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := sdfnet.WriteNet(&buf, n); err != nil {
		t.Fatal(err)
	}
	if _, err := sdfnet.ReadNet(&buf); err == nil {
		t.Error("NaN weight accepted")
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	src, err := sdfnet.NewCollection(2, []float32{1, 2, 0.5, -0.25, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := sdfnet.WriteCollection(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, err := sdfnet.ReadCollection(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 || got.Dim() != 2 {
		t.Fatalf("got %d codes of dim %d, want 3 of dim 2", got.Len(), got.Dim())
	}
	code := got.At(1)
	if code[0] != 0.5 || code[1] != -0.25 {
		t.Fatalf("code 1 is %v, want [0.5 -0.25]", code)
	}
}

func TestCollectionEmpty(t *testing.T) {
	src, err := sdfnet.NewCollection(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := sdfnet.WriteCollection(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, err := sdfnet.ReadCollection(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 || got.Dim() != 4 {
		t.Fatalf("got %d codes of dim %d, want 0 of dim 4", got.Len(), got.Dim())
	}
}

func TestNewCollectionValidation(t *testing.T) {
	if _, err := sdfnet.NewCollection(0, nil); err == nil {
		t.Error("zero dim accepted")
	}
	if _, err := sdfnet.NewCollection(3, []float32{1, 2}); err == nil {
		t.Error("ragged data accepted")
	}
	if _, err := sdfnet.NewCollection(1, []float32{float32(math.NaN())}); err == nil {
		t.Error("NaN code accepted")
	}
}

func TestReadCollectionRejectsCorrupt(t *testing.T) {
	src, err := sdfnet.NewCollection(1, []float32{7})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := sdfnet.WriteCollection(&buf, src); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	badMagic := append([]byte{}, raw...)
	badMagic[0] = 'X'
	if _, err := sdfnet.ReadCollection(bytes.NewReader(badMagic)); err == nil {
		t.Error("bad magic accepted")
	}
	if _, err := sdfnet.ReadCollection(bytes.NewReader(raw[:len(raw)-2])); err == nil {
		t.Error("truncated stream accepted")
	}
}
