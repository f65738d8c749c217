package data

import (
	"fmt"

	"github.com/sbinet/npyio/npy"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// LoadNPZ reads a uint8 image array and a uint8 label array from a NumPy .npz archive, such as
// the x_train.npy / y_train.npy members of mnist.npz. Images of shape (n, d1, d2, ...) become
// a [d1*d2*..., n] matrix scaled to [0, 1]; labels are one-hot encoded over classes.
func LoadNPZ(path, imagesName, labelsName string, classes int) (Dataset, error) {
	r, err := npz.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("while opening npz file: %w", err)
	}
	defer r.Close()

	images, err := readNPZImages(r, imagesName)
	if err != nil {
		return Dataset{}, fmt.Errorf("while reading %s: %w", imagesName, err)
	}

	var raw []uint8
	if err := r.Read(labelsName, &raw); err != nil {
		return Dataset{}, fmt.Errorf("while reading %s: %w", labelsName, err)
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	targets, err := OneHot(labels, classes)
	if err != nil {
		return Dataset{}, fmt.Errorf("while encoding %s: %w", labelsName, err)
	}

	return New(images, targets)
}

func readNPZImages(r *npz.Reader, name string) (*mat.Dense, error) {
	header := r.Header(name)
	if header == nil {
		return nil, fmt.Errorf("no member named %q", name)
	}
	count, size, err := imageLayout(header)
	if err != nil {
		return nil, err
	}

	var raw []uint8
	if err := r.Read(name, &raw); err != nil {
		return nil, err
	}
	if count*size != len(raw) {
		return nil, fmt.Errorf("shape %v does not match %d values", header.Descr.Shape, len(raw))
	}

	// C order: sample i occupies raw[i*size : (i+1)*size].
	images := mat.NewDense(size, count, nil)
	col := make([]float64, size)
	for i := 0; i < count; i++ {
		for p, b := range raw[i*size : (i+1)*size] {
			col[p] = float64(b) / 255
		}
		images.SetCol(i, col)
	}
	return images, nil
}

// imageLayout returns the number of samples and the values per sample of a C-ordered array
// of shape (n, d1, d2, ...).
func imageLayout(header *npy.Header) (count, size int, err error) {
	shape := header.Descr.Shape
	if header.Descr.Fortran {
		return 0, 0, fmt.Errorf("fortran-ordered array of shape %v is not supported", shape)
	}
	if len(shape) < 2 {
		return 0, 0, fmt.Errorf("expected at least 2 dimensions, got shape %v", shape)
	}
	size = 1
	for _, d := range shape[1:] {
		size *= d
	}
	return shape[0], size, nil
}
