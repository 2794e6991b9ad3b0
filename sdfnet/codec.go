package sdfnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfray"
	"gonum.org/v1/gonum/mat"
)

// netHeader opens a network file, all fields little-endian. Each of the
// Layers layers follows as two uint32 dimensions (rows, cols), rows·cols
// single precision weights in row-major order and rows biases.
type netHeader struct {
	Magic   [4]byte
	Version uint32
	Latent  uint32
	Layers  uint32
}

// collectionHeader opens a code collection file. Count·Dim single precision
// values follow, one code after another.
type collectionHeader struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
	Dim     uint32
}

var (
	netMagic        = [4]byte{'S', 'D', 'F', 'N'}
	collectionMagic = [4]byte{'S', 'D', 'F', 'C'}
)

const formatVersion = 1

// Decoded dimensions are capped so corrupt headers fail fast instead of
// allocating gigabytes.
const (
	maxLayerDim = 1 << 16
	maxCodes    = 1 << 24
)

// ReadNet decodes a network written by WriteNet.
func ReadNet(r io.Reader) (*Net, error) {
	var h netHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("network header read failed: %w", err)
	}
	if h.Magic != netMagic {
		return nil, fmt.Errorf("bad network magic %q", h.Magic[:])
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("unsupported network format version %d", h.Version)
	}
	if h.Layers == 0 {
		return nil, errors.New("network header indicates 0 layers")
	}
	weights := make([]*mat.Dense, h.Layers)
	biases := make([][]float64, h.Layers)
	for k := range weights {
		var dims [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
			return nil, fmt.Errorf("layer %d dimensions: %w", k, err)
		}
		rows, cols := int(dims[0]), int(dims[1])
		if rows < 1 || cols < 1 || rows > maxLayerDim || cols > maxLayerDim {
			return nil, fmt.Errorf("layer %d: unreasonable dimensions %d×%d", k, rows, cols)
		}
		w, err := readFloats(r, rows*cols)
		if err != nil {
			return nil, fmt.Errorf("layer %d weights: %w", k, err)
		}
		b, err := readFloats(r, rows)
		if err != nil {
			return nil, fmt.Errorf("layer %d biases: %w", k, err)
		}
		weights[k] = mat.NewDense(rows, cols, w)
		biases[k] = b
	}
	return NewNet(int(h.Latent), weights, biases)
}

// WriteNet encodes the network in the format ReadNet decodes. Parameters are
// stored in single precision.
func WriteNet(w io.Writer, n *Net) error {
	if n == nil {
		return errors.New("nil network")
	}
	h := netHeader{
		Magic:   netMagic,
		Version: formatVersion,
		Latent:  uint32(n.latent),
		Layers:  uint32(len(n.layers)),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, l := range n.layers {
		rows, cols := l.w.Dims()
		if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(rows), uint32(cols)}); err != nil {
			return err
		}
		buf := make([]float32, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				buf = append(buf, float32(l.w.At(i, j)))
			}
		}
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return err
		}
		bias := make([]float32, len(l.b))
		for i, v := range l.b {
			bias[i] = float32(v)
		}
		if err := binary.Write(w, binary.LittleEndian, bias); err != nil {
			return err
		}
	}
	return nil
}

// LoadNet reads a network file from disk.
func LoadNet(path string) (*Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := ReadNet(f)
	if err != nil {
		return nil, fmt.Errorf("load network %s: %w", path, err)
	}
	return n, nil
}

// Collection is an indexed set of latent codes sharing one dimension.
type Collection struct {
	dim  int
	data []float32
}

// NewCollection wraps len(data)/dim codes of the given dimension. The data
// is kept, not copied.
func NewCollection(dim int, data []float32) (*Collection, error) {
	if dim < 1 {
		return nil, errors.New("code dimension must be at least 1")
	}
	if len(data)%dim != 0 {
		return nil, fmt.Errorf("%d values do not divide into codes of dimension %d", len(data), dim)
	}
	for i, f := range data {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return nil, fmt.Errorf("inf/NaN code value at index %d", i)
		}
	}
	return &Collection{dim: dim, data: data}, nil
}

// Len returns the number of codes.
func (c *Collection) Len() int { return len(c.data) / c.dim }

// Dim returns the code dimension.
func (c *Collection) Dim() int { return c.dim }

// At returns code i. The result aliases the collection's backing array.
func (c *Collection) At(i int) sdfray.Code {
	return sdfray.Code(c.data[i*c.dim : (i+1)*c.dim])
}

// ReadCollection decodes a code collection written by WriteCollection.
func ReadCollection(r io.Reader) (*Collection, error) {
	var h collectionHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("collection header read failed: %w", err)
	}
	if h.Magic != collectionMagic {
		return nil, fmt.Errorf("bad collection magic %q", h.Magic[:])
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("unsupported collection format version %d", h.Version)
	}
	if h.Dim < 1 || h.Dim > maxLayerDim {
		return nil, fmt.Errorf("unreasonable code dimension %d", h.Dim)
	}
	if h.Count > maxCodes {
		return nil, fmt.Errorf("unreasonable code count %d", h.Count)
	}
	data, err := readFloat32s(r, int(h.Count)*int(h.Dim))
	if err != nil {
		return nil, fmt.Errorf("collection payload: %w", err)
	}
	return &Collection{dim: int(h.Dim), data: data}, nil
}

// WriteCollection encodes the collection in the format ReadCollection
// decodes.
func WriteCollection(w io.Writer, c *Collection) error {
	if c == nil {
		return errors.New("nil collection")
	}
	h := collectionHeader{
		Magic:   collectionMagic,
		Version: formatVersion,
		Count:   uint32(c.Len()),
		Dim:     uint32(c.dim),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.data)
}

// LoadCollection reads a code collection file from disk.
func LoadCollection(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ReadCollection(f)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", path, err)
	}
	return c, nil
}

// readFloat32s decodes n little-endian float32 values, rejecting non-finite
// ones.
func readFloat32s(r io.Reader, n int) ([]float32, error) {
	buf := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
		return nil, err
	}
	for i, f := range buf {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return nil, fmt.Errorf("inf/NaN value at index %d", i)
		}
	}
	return buf, nil
}

// readFloats decodes like readFloat32s and widens to float64.
func readFloats(r io.Reader, n int) ([]float64, error) {
	buf, err := readFloat32s(r, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, f := range buf {
		out[i] = float64(f)
	}
	return out, nil
}
