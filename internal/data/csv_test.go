package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, "test.csv", "f1,f2,label\n1.0,2.0,0.0\n3.0,4.0,1.0\n")

	d, err := LoadCSV(path, []int{2}, true, 0)
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 3, 2, 4}), d.Inputs))
	assert.True(t, mat.Equal(mat.NewDense(1, 2, []float64{0, 1}), d.Targets))
}

func TestLoadCSVLabelOrder(t *testing.T) {
	path := writeTemp(t, "test.csv", "7,1,2,9\n")

	d, err := LoadCSV(path, []int{3, 0}, false, 0)
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{1, 2}), d.Inputs))
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{9, 7}), d.Targets))
}

func TestLoadCSVClasses(t *testing.T) {
	path := writeTemp(t, "test.csv", "2,0.5\n0,0.25\n")

	d, err := LoadCSV(path, []int{0}, false, 3)
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(1, 2, []float64{0.5, 0.25}), d.Inputs))
	assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{
		0, 1,
		0, 0,
		1, 0,
	}), d.Targets))
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		labelCols []int
		header    bool
		classes   int
	}{
		{"empty", "", []int{0}, false, 0},
		{"header only", "a,b\n", []int{0}, true, 0},
		{"ragged", "1,2\n3\n", []int{0}, false, 0},
		{"not a number", "1,x\n", []int{0}, false, 0},
		{"label out of range", "1,2\n", []int{5}, false, 0},
		{"no features", "1,2\n", []int{0, 1}, false, 0},
		{"no labels", "1,2\n", nil, false, 0},
		{"fractional class", "1.5,2\n", []int{0}, false, 3},
		{"class too large", "4,2\n", []int{0}, false, 3},
		{"two class columns", "1,2,3\n", []int{0, 1}, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "bad.csv", tt.content)
			_, err := LoadCSV(path, tt.labelCols, tt.header, tt.classes)
			assert.Error(t, err)
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), []int{0}, false, 0)
	assert.Error(t, err)
}
