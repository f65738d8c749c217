package data

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

const (
	idxImageMagic = 2051
	idxLabelMagic = 2049
)

// ReadIDXImages reads an IDX image file (MNIST layout) into a [rows*cols, images] matrix with
// pixels scaled to [0, 1].
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening IDX images: %w", err)
	}
	defer f.Close()
	return decodeIDXImages(bufio.NewReader(f))
}

func decodeIDXImages(r io.Reader) (*mat.Dense, error) {
	var header struct {
		Magic, Images, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("while reading IDX image header: %w", err)
	}
	if header.Magic != idxImageMagic {
		return nil, fmt.Errorf("invalid IDX image magic number: got %d, want %d", header.Magic, idxImageMagic)
	}
	if header.Images == 0 || header.Rows == 0 || header.Cols == 0 {
		return nil, fmt.Errorf("empty IDX image file: %d images of %dx%d", header.Images, header.Rows, header.Cols)
	}

	size := int(header.Rows * header.Cols)
	count := int(header.Images)
	images := mat.NewDense(size, count, nil)
	pixels := make([]byte, size)
	col := make([]float64, size)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("while reading image %d: %w", i, err)
		}
		for p, b := range pixels {
			col[p] = float64(b) / 255
		}
		images.SetCol(i, col)
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file (MNIST layout).
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening IDX labels: %w", err)
	}
	defer f.Close()
	return decodeIDXLabels(bufio.NewReader(f))
}

func decodeIDXLabels(r io.Reader) ([]int, error) {
	var header struct {
		Magic, Labels uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("while reading IDX label header: %w", err)
	}
	if header.Magic != idxLabelMagic {
		return nil, fmt.Errorf("invalid IDX label magic number: got %d, want %d", header.Magic, idxLabelMagic)
	}

	raw := make([]byte, header.Labels)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("while reading labels: %w", err)
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

// LoadIDX reads an image file and a label file and one-hot encodes the labels.
func LoadIDX(imagesPath, labelsPath string, classes int) (Dataset, error) {
	images, err := ReadIDXImages(imagesPath)
	if err != nil {
		return Dataset{}, err
	}
	labels, err := ReadIDXLabels(labelsPath)
	if err != nil {
		return Dataset{}, err
	}
	targets, err := OneHot(labels, classes)
	if err != nil {
		return Dataset{}, fmt.Errorf("while encoding labels: %w", err)
	}
	return New(images, targets)
}
