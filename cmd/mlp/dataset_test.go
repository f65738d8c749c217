package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/GoMLP/internal/config"
	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSourceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y,class\n0,10,0\n5,20,1\n10,30,1\n"), 0o644))

	ds, _, err := loadSource(config.Source{
		Format:       config.FormatCSV,
		Path:         path,
		LabelColumns: []int{2},
		Header:       true,
		Classes:      2,
		Limit:        2,
		Normalize:    true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.Features())
	assert.Equal(t, 2, ds.Labels())
	assert.Equal(t, 1.0, ds.Inputs.At(0, 1))
	assert.Equal(t, 0.0, ds.Inputs.At(1, 0))

	assert.NoError(t, checkDims(ds, []int{2, 5, 2}))
	assert.Error(t, checkDims(ds, []int{3, 5, 2}))
	assert.Error(t, checkDims(ds, []int{2, 5, 3}))
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTestSetUsesTrainingScale(t *testing.T) {
	cfg := config.Default()
	cfg.Sizes = []int{1, 2}
	cfg.Activations = []string{"softmax"}
	cfg.Train = config.Source{
		Format:       config.FormatCSV,
		Path:         writeCSV(t, "train.csv", "0,0\n10,1\n"),
		LabelColumns: []int{1},
		Classes:      2,
		Normalize:    true,
	}
	cfg.Test = config.Source{
		Format:       config.FormatCSV,
		Path:         writeCSV(t, "test.csv", "5,0\n20,1\n"),
		LabelColumns: []int{1},
		Classes:      2,
		Normalize:    true,
	}
	require.NoError(t, cfg.Validate())

	// train path: the scale comes back from loading the training set.
	train, scale, err := loadSource(cfg.Train, nil)
	require.NoError(t, err)
	require.NotNil(t, scale)
	assert.Equal(t, []float64{0, 1}, []float64{train.Inputs.At(0, 0), train.Inputs.At(0, 1)})

	test, _, err := loadSource(cfg.Test, scale)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, test.Inputs.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, test.Inputs.At(0, 1), 1e-12)

	// eval path: the scale is recomputed from the training source.
	recomputed, err := trainingScale(cfg)
	require.NoError(t, err)
	assert.Equal(t, scale, recomputed)

	cfg.Train.Normalize = false
	none, err := trainingScale(cfg)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestLoadSourceScaleMismatch(t *testing.T) {
	src := config.Source{
		Format:       config.FormatCSV,
		Path:         writeCSV(t, "test.csv", "5,7,0\n"),
		LabelColumns: []int{2},
		Normalize:    true,
	}
	scale := &data.Scale{Min: []float64{0}, Max: []float64{1}}
	_, _, err := loadSource(src, scale)
	assert.Error(t, err)
}

func TestLoadSourceUnknownFormat(t *testing.T) {
	_, _, err := loadSource(config.Source{Format: "parquet"}, nil)
	assert.Error(t, err)
}

func TestXORDataset(t *testing.T) {
	ds := xorDataset()
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 1.0, ds.Targets.At(1, 1))
	assert.Equal(t, 1.0, ds.Targets.At(0, 3))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", config.Overrides{Epochs: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Epochs)

	_, err = loadConfig("", config.Overrides{})
	assert.NoError(t, err)
}
