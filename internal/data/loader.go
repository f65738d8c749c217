package data

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Loader shuffles and batches datasets with its own seeded source, so a run is reproducible
// for a given seed.
type Loader struct {
	rng *rand.Rand
}

// NewLoader creates a Loader seeded with seed.
func NewLoader(seed int64) *Loader {
	return &Loader{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle applies one random permutation to the columns of both d.Inputs and d.Targets.
func (l *Loader) Shuffle(d *Dataset) {
	perm := l.rng.Perm(d.Len())
	d.Inputs = permuteColumns(d.Inputs, perm)
	d.Targets = permuteColumns(d.Targets, perm)
}

func permuteColumns(src *mat.Dense, perm []int) *mat.Dense {
	r, c := src.Dims()
	dst := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j, p := range perm {
		mat.Col(col, p, src)
		dst.SetCol(j, col)
	}
	return dst
}

// Split cuts d into consecutive batches of batchSize samples. The last batch holds the
// remainder and may be shorter. Batches are views of d.
func (l *Loader) Split(d Dataset, batchSize int) []Dataset {
	if batchSize <= 0 {
		panic(fmt.Sprintf("Loader: batch size must be positive, got %d", batchSize))
	}
	n := d.Len()
	batches := make([]Dataset, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		batches = append(batches, d.Slice(start, end))
	}
	return batches
}
