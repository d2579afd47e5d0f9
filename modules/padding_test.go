package modules

import (
	"testing"

	"github.com/okieraised/go-anchor-targets/config"
	"github.com/okieraised/go-anchor-targets/utils"
	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

func TestPad_EvenSplit(t *testing.T) {
	img := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3)
	defer img.Close()

	client := NewPaddingClient(config.NewPaddingParams([2]int{10, 8}, 0))

	boxes := gtTensor([]float32{3, 2, 2, 2})
	paddedImg, paddedBoxes, err := client.Pad(img, boxes, nil)
	assert.NoError(t, err)
	defer paddedImg.Close()

	// Size() is (rows, cols)
	assert.Equal(t, []int{8, 10}, paddedImg.Size())

	// Width padding 4 -> left 2, height padding 4 -> top 2
	assert.Equal(t, []float32{5, 4, 2, 2}, paddedBoxes.Float32s())
}

func TestPad_OddSplitFloorsLeading(t *testing.T) {
	img := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3)
	defer img.Close()

	client := NewPaddingClient(config.NewPaddingParams([2]int{9, 7}, 0))

	boxes := gtTensor([]float32{
		3, 2, 2, 2,
		1, 1, 4, 2,
	})
	paddedImg, paddedBoxes, err := client.Pad(img, boxes, nil)
	assert.NoError(t, err)
	defer paddedImg.Close()

	assert.Equal(t, []int{7, 9}, paddedImg.Size())

	// Width padding 3 -> left 1 / right 2, height padding 3 -> top 1 / bottom 2
	assert.Equal(t, []float32{
		4, 3, 2, 2,
		2, 2, 4, 2,
	}, paddedBoxes.Float32s())
}

func TestPad_NeverCrops(t *testing.T) {
	img := gocv.NewMatWithSize(6, 8, gocv.MatTypeCV8UC3)
	defer img.Close()

	client := NewPaddingClient(config.NewPaddingParams([2]int{4, 4}, 0))

	boxes := gtTensor([]float32{3, 2, 2, 2})
	paddedImg, paddedBoxes, err := client.Pad(img, boxes, nil)
	assert.NoError(t, err)
	defer paddedImg.Close()

	assert.Equal(t, []int{6, 8}, paddedImg.Size())
	assert.Equal(t, []float32{3, 2, 2, 2}, paddedBoxes.Float32s())
}

func TestPad_RejectsWrongBoxShape(t *testing.T) {
	img := gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3)
	defer img.Close()

	client := NewPaddingClient(config.NewPaddingParams([2]int{10, 8}, 0))

	notBoxes := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(2, 3),
		tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}),
	)

	_, _, err := client.Pad(img, notBoxes, nil)
	assert.Error(t, err)
}

func TestPad_OneAxisOnly(t *testing.T) {
	img := gocv.NewMatWithSize(8, 4, gocv.MatTypeCV8UC3)
	defer img.Close()

	client := NewPaddingClient(config.NewPaddingParams([2]int{8, 8}, 0))

	boxes := gtTensor([]float32{2, 4, 2, 2})
	paddedImg, paddedBoxes, err := client.Pad(img, boxes, utils.RefPointer(128))
	assert.NoError(t, err)
	defer paddedImg.Close()

	assert.Equal(t, []int{8, 8}, paddedImg.Size())

	// Only cx moves, cy is already in the target coordinate system
	assert.Equal(t, []float32{4, 4, 2, 2}, paddedBoxes.Float32s())
}
