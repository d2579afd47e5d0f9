package go_anchor_targets

import (
	"github.com/okieraised/go-anchor-targets/config"
	"github.com/okieraised/go-anchor-targets/modules"
	"github.com/okieraised/go-anchor-targets/processing"
	"github.com/okieraised/go-anchor-targets/utils"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

type EncodeResult struct {
	PaddedImage  gocv.Mat      `json:"-"`
	TargetDeltas *tensor.Dense `json:"target_deltas"`
	TargetLabels *tensor.Dense `json:"target_labels"`
}

// TargetsPipeline prepares one training sample end to end: it pads the image
// to the canvas size the anchor set was generated for, moves the annotation
// boxes into the padded coordinate system and canonical center_xywh format,
// and encodes them into per-anchor regression and classification targets.
type TargetsPipeline struct {
	padding *modules.PaddingClient
	encoder *modules.AnchorTargetEncoder
}

// NewTargetsPipeline initializes a new anchor target pipeline. The anchor set
// is generated against the padded image size, so the encoder's image size and
// the padding target size must agree.
func NewTargetsPipeline(paddingParams *config.PaddingParams, encoderParams *config.AnchorTargetParams) (*TargetsPipeline, error) {
	client := &TargetsPipeline{}

	client.padding = modules.NewPaddingClient(paddingParams)

	encoder, err := modules.NewAnchorTargetEncoder(encoderParams)
	if err != nil {
		return client, err
	}
	client.encoder = encoder

	return client, nil
}

// AnchorBoxes exposes the precomputed anchor set so that the loss computation
// can align predictions with the targets. Read-only.
func (c *TargetsPipeline) AnchorBoxes() *tensor.Dense {
	return c.encoder.AnchorBoxes()
}

// EncodeImage consumes an image with coco-style annotations, boxes as an
// (M, 4) tensor in topleft_xywh format with their 0-indexed class labels, and
// produces the padded image together with the per-anchor training targets.
func (c *TargetsPipeline) EncodeImage(img gocv.Mat, gtBoxesTopLeftXYWH *tensor.Dense, gtLabels []int) (*EncodeResult, error) {
	resp := &EncodeResult{}

	gtBoxesCenterXYWH, err := processing.ConvertTopLeftXYWHToCenterXYWH(gtBoxesTopLeftXYWH)
	if err != nil {
		return resp, err
	}

	paddedImg, paddedBoxes, err := c.padding.Pad(img, gtBoxesCenterXYWH, nil)
	if err != nil {
		return resp, err
	}
	resp.PaddedImage = paddedImg

	targetDeltas, targetLabels, err := c.encoder.Encode(paddedBoxes, gtLabels)
	if err != nil {
		return resp, err
	}
	resp.TargetDeltas = targetDeltas
	resp.TargetLabels = targetLabels

	return resp, nil
}

// EncodeImageBytes decodes a raw encoded image and delegates to EncodeImage.
func (c *TargetsPipeline) EncodeImageBytes(bImage []byte, gtBoxesTopLeftXYWH *tensor.Dense, gtLabels []int) (*EncodeResult, error) {
	img, err := utils.ImageToOpenCV(bImage)
	if err != nil {
		return &EncodeResult{}, err
	}
	return c.EncodeImage(*img, gtBoxesTopLeftXYWH, gtLabels)
}
