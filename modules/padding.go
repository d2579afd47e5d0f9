package modules

import (
	"image/color"

	"github.com/okieraised/go-anchor-targets/config"
	"github.com/okieraised/go-anchor-targets/utils"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// PaddingClient pads images up to a fixed canvas size for batching and shifts
// their ground truth boxes accordingly. Images already at or above the target
// size on an axis are left alone on that axis; nothing is ever cropped.
type PaddingClient struct {
	targetSize [2]int
	fillValue  int
}

func NewPaddingClient(cfg *config.PaddingParams) *PaddingClient {
	return &PaddingClient{
		targetSize: cfg.TargetSize,
		fillValue:  cfg.FillValue,
	}
}

// Pad grows img to the configured (width, height) target and returns the
// padded image together with the bounding boxes adjusted to its coordinate
// system. bboxes is an (M, 4) center_xywh tensor defined on the input image;
// fill overrides the configured fill value when non-nil.
//
// Per axis, the missing amount splits into floor(diff/2) on the leading edge
// (left for x, top for y) and the remainder on the trailing edge. Box centers
// move by the leading amounts: cx by the left padding, cy by the top padding.
// Widths and heights are unchanged.
func (c *PaddingClient) Pad(img gocv.Mat, bboxes *tensor.Dense, fill *int) (gocv.Mat, *tensor.Dense, error) {
	if fill == nil {
		fill = utils.RefPointer(c.fillValue)
	}

	imgShape := img.Size()
	widthDiff := c.targetSize[0] - imgShape[1]
	heightDiff := c.targetSize[1] - imgShape[0]
	if widthDiff < 0 {
		widthDiff = 0
	}
	if heightDiff < 0 {
		heightDiff = 0
	}

	left := widthDiff / 2
	right := widthDiff - left
	top := heightDiff / 2
	bottom := heightDiff - top

	paddedImg := gocv.NewMat()
	if widthDiff == 0 && heightDiff == 0 {
		img.CopyTo(&paddedImg)
	} else {
		fillGray := uint8(utils.DerefPointer(fill))
		gocv.CopyMakeBorder(
			img,
			&paddedImg,
			top,
			bottom,
			left,
			right,
			gocv.BorderConstant,
			color.RGBA{R: fillGray, G: fillGray, B: fillGray},
		)
	}

	paddedBoxes, err := shiftBoxCenters(bboxes, float32(left), float32(top))
	if err != nil {
		cErr := paddedImg.Close()
		if cErr != nil {
			return gocv.Mat{}, nil, errors.Wrap(cErr, "closing padded image")
		}
		return gocv.Mat{}, nil, errors.Wrap(err, "shifting ground truth boxes")
	}

	return paddedImg, paddedBoxes, nil
}

func shiftBoxCenters(bboxes *tensor.Dense, shiftX, shiftY float32) (*tensor.Dense, error) {
	shape := bboxes.Shape()
	if len(shape) != 2 || shape[1] != 4 {
		return nil, errors.Errorf("expected an (M, 4) box tensor, got shape %v", shape)
	}

	raw := bboxes.Float32s()
	shifted := make([]float32, len(raw))
	for i := 0; i < len(raw); i += 4 {
		shifted[i] = raw[i] + shiftX
		shifted[i+1] = raw[i+1] + shiftY
		shifted[i+2] = raw[i+2]
		shifted[i+3] = raw[i+3]
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(shape[0], 4),
		tensor.WithBacking(shifted),
	), nil
}
