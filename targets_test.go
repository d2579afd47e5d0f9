package go_anchor_targets

import (
	"testing"

	"github.com/okieraised/go-anchor-targets/config"
	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

func TestNewTargetsPipeline(t *testing.T) {
	pipeline, err := NewTargetsPipeline(config.DefaultPaddingParams, config.DefaultAnchorTargetParams)
	assert.NoError(t, err)
	assert.Equal(t, []int{12996, 4}, []int(pipeline.AnchorBoxes().Shape()))
}

func TestNewTargetsPipeline_InvalidEncoderConfig(t *testing.T) {
	_, err := NewTargetsPipeline(config.DefaultPaddingParams, config.NewAnchorTargetParams(
		[2]int{600, 600}, []float32{128 * 128}, []float32{1.0}, 0,
	))
	assert.Error(t, err)
}

func TestEncodeImage(t *testing.T) {
	paddingParams := config.NewPaddingParams([2]int{64, 64}, 0)
	encoderParams := config.NewAnchorTargetParams(
		[2]int{64, 64},
		[]float32{100, 400},
		[]float32{1.0},
		16,
	)

	pipeline, err := NewTargetsPipeline(paddingParams, encoderParams)
	assert.NoError(t, err)

	img := gocv.NewMatWithSize(48, 48, gocv.MatTypeCV8UC3)
	defer img.Close()

	// Annotations in topleft_xywh, defined on the unpadded 48x48 image
	gtBoxes := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(2, 4),
		tensor.WithBacking([]float32{
			10, 10, 20, 12,
			30, 24, 10, 16,
		}),
	)

	result, err := pipeline.EncodeImage(img, gtBoxes, []int{0, 3})
	assert.NoError(t, err)
	defer result.PaddedImage.Close()

	assert.Equal(t, []int{64, 64}, result.PaddedImage.Size())

	// 2 sizes x 4x4 grid cells
	assert.Equal(t, []int{32, 4}, []int(result.TargetDeltas.Shape()))
	assert.Equal(t, []int{32}, []int(result.TargetLabels.Shape()))

	for _, label := range result.TargetLabels.Ints() {
		assert.Contains(t, []int{-1, 0, 1, 4}, label)
	}
}

func TestEncodeImageBytes(t *testing.T) {
	paddingParams := config.NewPaddingParams([2]int{64, 64}, 0)
	encoderParams := config.NewAnchorTargetParams(
		[2]int{64, 64},
		[]float32{100},
		[]float32{1.0},
		16,
	)

	pipeline, err := NewTargetsPipeline(paddingParams, encoderParams)
	assert.NoError(t, err)

	img := gocv.NewMatWithSize(48, 48, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	assert.NoError(t, err)
	defer buf.Close()

	gtBoxes := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(1, 4),
		tensor.WithBacking([]float32{10, 10, 20, 12}),
	)

	result, err := pipeline.EncodeImageBytes(buf.GetBytes(), gtBoxes, []int{0})
	assert.NoError(t, err)
	defer result.PaddedImage.Close()

	assert.Equal(t, []int{64, 64}, result.PaddedImage.Size())
	assert.Equal(t, []int{16, 4}, []int(result.TargetDeltas.Shape()))
	assert.Equal(t, []int{16}, []int(result.TargetLabels.Shape()))
}

func TestEncodeImageBytes_InvalidImage(t *testing.T) {
	pipeline, err := NewTargetsPipeline(
		config.NewPaddingParams([2]int{32, 32}, 0),
		config.NewAnchorTargetParams([2]int{32, 32}, []float32{100}, []float32{1.0}, 16),
	)
	assert.NoError(t, err)

	gtBoxes := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(1, 4),
		tensor.WithBacking([]float32{4, 4, 8, 8}),
	)

	_, err = pipeline.EncodeImageBytes([]byte("not an image"), gtBoxes, []int{0})
	assert.Error(t, err)
}

func TestEncodeImage_RequiresGroundTruth(t *testing.T) {
	pipeline, err := NewTargetsPipeline(
		config.NewPaddingParams([2]int{32, 32}, 0),
		config.NewAnchorTargetParams([2]int{32, 32}, []float32{100}, []float32{1.0}, 16),
	)
	assert.NoError(t, err)

	img := gocv.NewMatWithSize(32, 32, gocv.MatTypeCV8UC3)
	defer img.Close()

	gtBoxes := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(1, 4),
		tensor.WithBacking([]float32{4, 4, 8, 8}),
	)

	// Label count disagreeing with the box count must surface as an error
	_, err = pipeline.EncodeImage(img, gtBoxes, []int{})
	assert.Error(t, err)
}
