package processing

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ComputeIOUs computes the intersection over union metric for every pair of
// boxes from groupA (N, 4) and groupB (M, 4), both in xyxy format, and returns
// an (N, M) tensor.
//
// The intersection width and height are clamped at zero, so disjoint pairs
// score 0 and identical non-degenerate boxes score 1. A pair of zero-area
// boxes divides zero by zero and yields NaN; callers are expected to filter
// degenerate boxes upstream.
func ComputeIOUs(groupA, groupB *tensor.Dense) (*tensor.Dense, error) {
	if err := checkBoxShape(groupA); err != nil {
		return nil, errors.Wrap(err, "group a")
	}
	if err := checkBoxShape(groupB); err != nil {
		return nil, errors.Wrap(err, "group b")
	}

	rawA := groupA.Float32s()
	rawB := groupB.Float32s()
	n := groupA.Shape()[0]
	m := groupB.Shape()[0]

	areasA := make([]float32, n)
	for i := range n {
		areasA[i] = (rawA[i*4+2] - rawA[i*4]) * (rawA[i*4+3] - rawA[i*4+1])
	}
	areasB := make([]float32, m)
	for j := range m {
		areasB[j] = (rawB[j*4+2] - rawB[j*4]) * (rawB[j*4+3] - rawB[j*4+1])
	}

	ious := make([]float32, n*m)
	for i := range n {
		ax0, ay0, ax1, ay1 := rawA[i*4], rawA[i*4+1], rawA[i*4+2], rawA[i*4+3]
		for j := range m {
			x0 := max(ax0, rawB[j*4])
			y0 := max(ay0, rawB[j*4+1])
			x1 := min(ax1, rawB[j*4+2])
			y1 := min(ay1, rawB[j*4+3])

			interWidth := max(x1-x0, 0)
			interHeight := max(y1-y0, 0)
			interArea := interWidth * interHeight

			ious[i*m+j] = interArea / (areasA[i] + areasB[j] - interArea)
		}
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(n, m),
		tensor.WithBacking(ious),
	), nil
}
