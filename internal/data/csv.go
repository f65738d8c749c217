package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV loads samples from a CSV file, one sample per row.
// labelCols specifies the indices of columns to be used as targets, in that order.
// All other columns are used as features.
// hasHeader skips the first line if true.
// If classes is positive, labelCols must name a single column holding integer class labels,
// which are one-hot encoded over classes.
func LoadCSV(filename string, labelCols []int, hasHeader bool, classes int) (Dataset, error) {
	if len(labelCols) == 0 {
		return Dataset{}, fmt.Errorf("no label columns given")
	}
	if classes > 0 && len(labelCols) != 1 {
		return Dataset{}, fmt.Errorf("class labels need exactly one label column, got %d", len(labelCols))
	}

	file, err := os.Open(filename)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("csv file is empty")
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}

	if len(records) <= startRow {
		return Dataset{}, fmt.Errorf("csv file has no data rows")
	}

	numCols := len(records[0])
	isLabelCol := make(map[int]bool)
	for _, col := range labelCols {
		if col < 0 || col >= numCols {
			return Dataset{}, fmt.Errorf("label column %d out of range for %d columns", col, numCols)
		}
		isLabelCol[col] = true
	}
	numFeatures := numCols - len(isLabelCol)
	if numFeatures == 0 {
		return Dataset{}, fmt.Errorf("csv file has no feature columns")
	}

	numSamples := len(records) - startRow
	inputs := mat.NewDense(numFeatures, numSamples, nil)
	raw := mat.NewDense(len(labelCols), numSamples, nil)

	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return Dataset{}, fmt.Errorf("inconsistent number of columns at row %d", i)
		}
		sample := i - startRow

		feature := 0
		for j, valStr := range record {
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("failed to parse value at row %d, col %d: %w", i, j, err)
			}
			if !isLabelCol[j] {
				inputs.Set(feature, sample, val)
				feature++
			}
		}

		// Targets keep the order given in labelCols.
		for k, col := range labelCols {
			val, _ := strconv.ParseFloat(record[col], 64)
			raw.Set(k, sample, val)
		}
	}

	if classes <= 0 {
		return New(inputs, raw)
	}

	labels := make([]int, numSamples)
	for i := range labels {
		v := raw.At(0, i)
		if v != math.Trunc(v) {
			return Dataset{}, fmt.Errorf("non-integer class label %v at sample %d", v, i)
		}
		labels[i] = int(v)
	}
	targets, err := OneHot(labels, classes)
	if err != nil {
		return Dataset{}, fmt.Errorf("while encoding labels: %w", err)
	}
	return New(inputs, targets)
}
