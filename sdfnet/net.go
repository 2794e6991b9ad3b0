// Package sdfnet evaluates learned signed distance networks: multilayer
// perceptrons conditioned on a latent shape code. Weights and code
// collections load from compact binary formats so rendering does not need a
// training framework present.
package sdfnet

import (
	"errors"
	"fmt"

	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// normalEps is the central difference step for normal estimation.
const normalEps = 1e-4

var _ sdfray.Field = (*Net)(nil)

// Net is a feed forward network mapping a latent code and a query point to
// a signed distance. Hidden layers use ReLU activations, the output layer is
// linear. A Net is safe for concurrent use once built.
type Net struct {
	latent int
	layers []layer
}

type layer struct {
	w *mat.Dense
	b []float64
}

// NewNet assembles a network from per-layer weight matrices and bias
// vectors. Layer k maps weights[k].cols inputs to weights[k].rows outputs.
// The first layer must accept latent+3 inputs, in the order latent code
// first and then the x, y, z point coordinates, and the last layer must
// produce a single output.
func NewNet(latent int, weights []*mat.Dense, biases [][]float64) (*Net, error) {
	switch {
	case latent < 0:
		return nil, errors.New("negative latent dimension")
	case len(weights) == 0:
		return nil, errors.New("network needs at least one layer")
	case len(weights) != len(biases):
		return nil, fmt.Errorf("got %d weight matrices and %d bias vectors", len(weights), len(biases))
	}
	n := &Net{latent: latent, layers: make([]layer, len(weights))}
	prev := latent + 3
	for k, w := range weights {
		if w == nil {
			return nil, fmt.Errorf("layer %d: nil weight matrix", k)
		}
		rows, cols := w.Dims()
		if cols != prev {
			return nil, fmt.Errorf("layer %d: %d input columns, want %d", k, cols, prev)
		}
		if len(biases[k]) != rows {
			return nil, fmt.Errorf("layer %d: %d bias terms for %d outputs", k, len(biases[k]), rows)
		}
		n.layers[k] = layer{w: w, b: biases[k]}
		prev = rows
	}
	if prev != 1 {
		return nil, fmt.Errorf("last layer produces %d outputs, want 1", prev)
	}
	return n, nil
}

// Latent returns the latent code dimension the network was trained with.
func (n *Net) Latent() int { return n.latent }

// Distances evaluates the network at every point with a single batched
// forward pass. code must have length Latent.
func (n *Net) Distances(p []r3.Vec, code sdfray.Code) ([]float64, error) {
	if len(code) != n.latent {
		return nil, fmt.Errorf("latent code length %d, network needs %d", len(code), n.latent)
	}
	if len(p) == 0 {
		return nil, nil
	}
	// One column per query point: the latent code stacked on the position.
	in := n.latent + 3
	cols := len(p)
	data := make([]float64, in*cols)
	for j, q := range p {
		for i, c := range code {
			data[i*cols+j] = float64(c)
		}
		data[n.latent*cols+j] = q.X
		data[(n.latent+1)*cols+j] = q.Y
		data[(n.latent+2)*cols+j] = q.Z
	}
	var x mat.Matrix = mat.NewDense(in, cols, data)
	for k := range n.layers {
		l := n.layers[k]
		var y mat.Dense
		y.Mul(l.w, x)
		hidden := k < len(n.layers)-1
		y.Apply(func(i, _ int, v float64) float64 {
			v += l.b[i]
			if hidden && v < 0 {
				v = 0
			}
			return v
		}, &y)
		x = &y
	}
	d := make([]float64, len(p))
	for j := range d {
		d[j] = x.At(0, j)
	}
	return d, nil
}

// Normals estimates unit surface normals by central differences of the
// network distance.
func (n *Net) Normals(p []r3.Vec, code sdfray.Code) ([]r3.Vec, error) {
	return sdfray.EstimateNormals(n, code, p, normalEps)
}
