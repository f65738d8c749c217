package main

import (
	"fmt"

	"github.com/FlavioCFOliveira/GoMLP/internal/config"
	"github.com/FlavioCFOliveira/GoMLP/internal/data"
)

// loadSource reads the dataset described by src. With src.Normalize set, features are scaled
// with scale when it is non-nil, or with the dataset's own range otherwise. The scale applied is
// returned so a test set can reuse the training range.
func loadSource(src config.Source, scale *data.Scale) (data.Dataset, *data.Scale, error) {
	var (
		ds  data.Dataset
		err error
	)
	switch src.Format {
	case config.FormatIDX:
		ds, err = data.LoadIDX(src.Images, src.Labels, src.Classes)
	case config.FormatNPZ:
		ds, err = data.LoadNPZ(src.Path, src.Images, src.Labels, src.Classes)
	case config.FormatCSV:
		ds, err = data.LoadCSV(src.Path, src.LabelColumns, src.Header, src.Classes)
	default:
		return data.Dataset{}, nil, fmt.Errorf("unknown dataset format %q", src.Format)
	}
	if err != nil {
		return data.Dataset{}, nil, err
	}

	ds = data.Limit(ds, src.Limit)
	if !src.Normalize {
		return ds, nil, nil
	}
	if scale == nil {
		s := ds.Normalize()
		return ds, &s, nil
	}
	if err := ds.NormalizeWith(*scale); err != nil {
		return data.Dataset{}, nil, fmt.Errorf("while applying training scale: %w", err)
	}
	return ds, scale, nil
}

// trainingScale returns the feature range of the configured training set, or nil when it is
// not normalised.
func trainingScale(cfg *config.Config) (*data.Scale, error) {
	if !cfg.Train.Normalize {
		return nil, nil
	}
	_, scale, err := loadSource(cfg.Train, nil)
	if err != nil {
		return nil, fmt.Errorf("while loading training set for its scale: %w", err)
	}
	return scale, nil
}

// checkDims reports a dataset that does not fit a network of the given sizes.
func checkDims(ds data.Dataset, sizes []int) error {
	if ds.Features() != sizes[0] {
		return fmt.Errorf("%d features, network expects %d", ds.Features(), sizes[0])
	}
	if ds.Labels() != sizes[len(sizes)-1] {
		return fmt.Errorf("%d labels, network outputs %d", ds.Labels(), sizes[len(sizes)-1])
	}
	return nil
}
