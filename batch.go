package sdfray

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Batcher is a Field adapter that splits queries larger than a maximum batch
// size into sequential sub-batches and reassembles results in input order.
// The maximum exists because oracle cost or memory ceilings scale with batch
// size, not for any algorithmic need. Batcher does no caching and assumes
// the wrapped Field is deterministic for a fixed Code.
type Batcher struct {
	f       Field
	size    int
	workers int
}

var _ Field = (*Batcher)(nil)

// NewBatcher wraps f with a maximum batch size. workers above 1 evaluate
// sub-batches concurrently and require a reentrant Field; workers below 1
// are treated as 1 (sequential, the default execution order).
func NewBatcher(f Field, size, workers int) *Batcher {
	if f == nil {
		panic("nil Field argument")
	}
	if size < 1 {
		panic("batch size must be at least 1")
	}
	if workers < 1 {
		workers = 1
	}
	return &Batcher{f: f, size: size, workers: workers}
}

// Distances implements Field. A sub-batch result whose length mismatches its
// query length returns an error wrapping ErrBatchMismatch.
func (b *Batcher) Distances(p []r3.Vec, code Code) ([]float64, error) {
	out := make([]float64, len(p))
	err := b.split(len(p), func(lo, hi int) error {
		d, err := b.f.Distances(p[lo:hi], code)
		if err != nil {
			return err
		}
		if len(d) != hi-lo {
			return fmt.Errorf("%w: got %d distances for %d points", ErrBatchMismatch, len(d), hi-lo)
		}
		copy(out[lo:hi], d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Normals implements Field with the same splitting and result count policing
// as Distances.
func (b *Batcher) Normals(p []r3.Vec, code Code) ([]r3.Vec, error) {
	out := make([]r3.Vec, len(p))
	err := b.split(len(p), func(lo, hi int) error {
		n, err := b.f.Normals(p[lo:hi], code)
		if err != nil {
			return err
		}
		if len(n) != hi-lo {
			return fmt.Errorf("%w: got %d normals for %d points", ErrBatchMismatch, len(n), hi-lo)
		}
		copy(out[lo:hi], n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// split covers [0,n) with consecutive [lo,hi) chunks of at most b.size
// elements. Empty queries return without consulting the wrapped Field.
// Each chunk writes only its own output segment, so results land in input
// order regardless of goroutine scheduling.
func (b *Batcher) split(n int, eval func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	chunks := (n + b.size - 1) / b.size
	if b.workers == 1 || chunks == 1 {
		for lo := 0; lo < n; lo += b.size {
			hi := lo + b.size
			if hi > n {
				hi = n
			}
			if err := eval(lo, hi); err != nil {
				return err
			}
		}
		return nil
	}
	errs := make([]error, chunks)
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup
	for i := 0; i < chunks; i++ {
		lo := i * b.size
		hi := lo + b.size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i, lo, hi int) {
			defer wg.Done()
			errs[i] = eval(lo, hi)
			<-sem
		}(i, lo, hi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
