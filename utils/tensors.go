package utils

import (
	"fmt"

	"gorgonia.org/tensor"
)

func VStack(tensors []*tensor.Dense) (*tensor.Dense, error) {
	var nonEmptyTensors []*tensor.Dense
	for _, t := range tensors {
		shape := t.Shape()
		if shape[0] > 0 {
			nonEmptyTensors = append(nonEmptyTensors, t)
		}
	}

	if len(nonEmptyTensors) == 0 {
		return tensor.New(tensor.Of(tensor.Float32), tensor.WithShape(0, 1)), nil
	}

	result, err := nonEmptyTensors[0].Concat(0, nonEmptyTensors[1:]...)
	if err != nil {
		return nil, fmt.Errorf("error concatenating tensors: %v", err)
	}

	return result, nil
}

func HStack(tensors []*tensor.Dense) (*tensor.Dense, error) {
	var nonEmptyTensors []*tensor.Dense
	for _, t := range tensors {
		shape := t.Shape()
		if shape[0] > 0 {
			nonEmptyTensors = append(nonEmptyTensors, t)
		}
	}

	if len(nonEmptyTensors) == 0 {
		return tensor.New(tensor.Of(tensor.Float32), tensor.WithShape(0, 1)), nil
	}

	result, err := nonEmptyTensors[0].Concat(1, nonEmptyTensors[1:]...)
	if err != nil {
		return nil, fmt.Errorf("error concatenating tensors: %v", err)
	}

	return result, nil
}

// RowMax returns, for every row of a 2D tensor, the maximum value and the
// column index of its first occurrence. Ties resolve to the lowest column
// index.
func RowMax(t *tensor.Dense) ([]float32, []int, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, nil, fmt.Errorf("expected a 2D tensor, got shape %v", shape)
	}
	numRows, numCols := shape[0], shape[1]
	if numCols == 0 {
		return nil, nil, fmt.Errorf("expected at least one column, got shape %v", shape)
	}

	data := t.Float32s()

	maxValues := make([]float32, numRows)
	maxIndices := make([]int, numRows)
	for i := 0; i < numRows; i++ {
		row := data[i*numCols : (i+1)*numCols]
		best := row[0]
		bestIdx := 0
		for j := 1; j < numCols; j++ {
			if row[j] > best {
				best = row[j]
				bestIdx = j
			}
		}
		maxValues[i] = best
		maxIndices[i] = bestIdx
	}

	return maxValues, maxIndices, nil
}

func SelectRows2D(t *tensor.Dense, indices []int) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected a 2D tensor")
	}
	numRows, numCols := shape[0], shape[1]

	selectedData := make([]float32, 0, len(indices)*numCols)

	for _, idx := range indices {
		if idx >= numRows {
			return nil, fmt.Errorf("index %d is out of bounds", idx)
		}
		row, err := t.Slice(tensor.S(idx), nil)
		if err != nil {
			return nil, err
		}

		switch rowData := row.Data().(type) {
		case []float32:
			selectedData = append(selectedData, rowData...)
		case float32:
			selectedData = append(selectedData, rowData)
		}
	}

	selectedTensor := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(len(indices), numCols),
		tensor.WithBacking(selectedData),
	)

	return selectedTensor, nil
}
