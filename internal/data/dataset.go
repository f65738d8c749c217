// Package data provides the datasets consumed by the trainer: column-aligned input and target
// matrices, seeded shuffling and batching, and readers for common on-disk formats.
package data

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when inputs and targets do not describe the same samples.
var ErrShape = errors.New("data: shape mismatch")

// Dataset pairs inputs ([features, samples]) with targets ([labels, samples]). Column i of
// Inputs corresponds to column i of Targets.
type Dataset struct {
	Inputs  *mat.Dense
	Targets *mat.Dense
}

// New checks that inputs and targets have the same number of columns.
func New(inputs, targets *mat.Dense) (Dataset, error) {
	_, ic := inputs.Dims()
	_, tc := targets.Dims()
	if ic != tc {
		return Dataset{}, fmt.Errorf("%w: %d input columns, %d target columns", ErrShape, ic, tc)
	}
	return Dataset{Inputs: inputs, Targets: targets}, nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	_, c := d.Inputs.Dims()
	return c
}

// Features returns the input dimension.
func (d Dataset) Features() int {
	r, _ := d.Inputs.Dims()
	return r
}

// Labels returns the target dimension.
func (d Dataset) Labels() int {
	r, _ := d.Targets.Dims()
	return r
}

// Slice returns samples [i, k) as views sharing storage with d.
func (d Dataset) Slice(i, k int) Dataset {
	return Dataset{
		Inputs:  d.Inputs.Slice(0, d.Features(), i, k).(*mat.Dense),
		Targets: d.Targets.Slice(0, d.Labels(), i, k).(*mat.Dense),
	}
}

// Limit returns at most the first n samples of d.
func Limit(d Dataset, n int) Dataset {
	if n <= 0 || n >= d.Len() {
		return d
	}
	return d.Slice(0, n)
}

// OneHot encodes class labels as a [classes, len(labels)] matrix.
func OneHot(labels []int, classes int) (*mat.Dense, error) {
	if classes <= 0 || len(labels) == 0 {
		return nil, fmt.Errorf("%w: %d labels over %d classes", ErrShape, len(labels), classes)
	}
	m := mat.NewDense(classes, len(labels), nil)
	for i, label := range labels {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("data: label %d at sample %d outside [0, %d)", label, i, classes)
		}
		m.Set(label, i, 1)
	}
	return m, nil
}

// Scale holds the per-feature minimum and maximum used by min-max normalisation.
type Scale struct {
	Min []float64
	Max []float64
}

// Normalize rescales every feature (row of Inputs) to [0, 1] in place and returns the
// per-feature range it used. Constant features become 0.
func (d Dataset) Normalize() Scale {
	r, c := d.Inputs.Dims()
	s := Scale{Min: make([]float64, r), Max: make([]float64, r)}
	for i := 0; i < r; i++ {
		row := d.Inputs.RawRowView(i)[:c]
		s.Min[i], s.Max[i] = floats.Min(row), floats.Max(row)
	}
	d.apply(s)
	return s
}

// NormalizeWith rescales every feature in place with a range computed on another dataset,
// usually the training set. Values outside that range fall outside [0, 1].
func (d Dataset) NormalizeWith(s Scale) error {
	r := d.Features()
	if len(s.Min) != r || len(s.Max) != r {
		return fmt.Errorf("%w: scale has %d/%d features, dataset has %d", ErrShape, len(s.Min), len(s.Max), r)
	}
	d.apply(s)
	return nil
}

func (d Dataset) apply(s Scale) {
	r, c := d.Inputs.Dims()
	for i := 0; i < r; i++ {
		row := d.Inputs.RawRowView(i)[:c]
		lo, diff := s.Min[i], s.Max[i]-s.Min[i]
		for j := range row {
			if diff != 0 {
				row[j] = (row[j] - lo) / diff
			} else {
				row[j] = 0
			}
		}
	}
}
