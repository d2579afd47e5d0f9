package modules

import (
	"github.com/chewxy/math32"
	"github.com/okieraised/go-anchor-targets/config"
	"github.com/okieraised/go-anchor-targets/processing"
	"github.com/okieraised/go-anchor-targets/utils"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Classification target values that are not foreground classes. Foreground
// ground truth labels are shifted up by one on encoding so that 0 stays free
// for the background.
const (
	LabelBackground = 0
	LabelIgnore     = -1
)

// IoU thresholds deciding the classification target of an anchor. Anchors
// overlapping their best ground truth box below the foreground threshold are
// background; the band between the two thresholds is excluded from the loss.
const (
	foregroundIOUThreshold float32 = 0.5
	ignoreIOUThreshold     float32 = 0.4
)

// AnchorTargetEncoder turns per-image ground truth into per-anchor training
// targets.
//
// On construction it enumerates every anchor box once: all combinations of
// the configured anchor areas and aspect ratios, centered on every cell of
// the feature map that a network with the configured stride produces for the
// configured image size. The anchor set is never mutated afterwards, so a
// single encoder can serve concurrent Encode calls, one per image of a batch.
type AnchorTargetEncoder struct {
	ModelParams *config.AnchorTargetParams

	anchorBoxesCenterXYWH *tensor.Dense
	anchorBoxesXYXY       *tensor.Dense
}

func NewAnchorTargetEncoder(cfg *config.AnchorTargetParams) (*AnchorTargetEncoder, error) {
	client := &AnchorTargetEncoder{}
	client.ModelParams = cfg

	anchorBoxes, err := processing.GenerateAnchorBoxes(cfg.ImageSize, cfg.AnchorAreas, cfg.AspectRatios, cfg.Stride)
	if err != nil {
		return nil, err
	}
	client.anchorBoxesCenterXYWH = anchorBoxes

	anchorBoxesXYXY, err := processing.ConvertCenterXYWHToXYXY(anchorBoxes)
	if err != nil {
		return nil, err
	}
	client.anchorBoxesXYXY = anchorBoxesXYXY

	return client, nil
}

// AnchorBoxes returns the precomputed anchor set as an (N, 4) tensor in
// center_xywh format. Callers must treat it as read-only.
func (c *AnchorTargetEncoder) AnchorBoxes() *tensor.Dense {
	return c.anchorBoxesCenterXYWH
}

// NumAnchors returns the number of anchor boxes in the precomputed set.
func (c *AnchorTargetEncoder) NumAnchors() int {
	return c.anchorBoxesCenterXYWH.Shape()[0]
}

// Encode matches each anchor box against the ground truth boxes of one image
// and produces its regression and classification targets.
//
// gtBoxes is an (M, 4) tensor in center_xywh format, gtLabels holds the M
// 0-indexed foreground class ids. Encode returns an (N, 4) float32 tensor of
// parametrized deltas towards the best-overlapping ground truth box, and an
// (N,) int tensor of class targets: gt label + 1 for foreground anchors,
// LabelBackground or LabelIgnore otherwise.
//
// At least one ground truth box is required; images without objects have to
// be filtered out by the caller.
//
// The 0.5 foreground threshold can leave a ground truth box with no positive
// anchor at all. That matches the reference behavior of this parametrization;
// there is no second matching pass forcing a positive anchor per box.
func (c *AnchorTargetEncoder) Encode(gtBoxes *tensor.Dense, gtLabels []int) (*tensor.Dense, *tensor.Dense, error) {
	numGroundTruth := gtBoxes.Shape()[0]
	if numGroundTruth < 1 {
		return nil, nil, errors.New("at least one ground truth box is required")
	}
	if len(gtLabels) != numGroundTruth {
		return nil, nil, errors.Errorf("got %d ground truth boxes but %d labels", numGroundTruth, len(gtLabels))
	}

	gtBoxesXYXY, err := processing.ConvertCenterXYWHToXYXY(gtBoxes)
	if err != nil {
		return nil, nil, errors.Wrap(err, "converting ground truth boxes")
	}

	ious, err := processing.ComputeIOUs(c.anchorBoxesXYXY, gtBoxesXYXY)
	if err != nil {
		return nil, nil, errors.Wrap(err, "computing ious")
	}

	// Best ground truth box per anchor. Ties resolve to the lowest ground
	// truth index.
	bestIOUs, bestMatches, err := utils.RowMax(ious)
	if err != nil {
		return nil, nil, errors.Wrap(err, "matching anchors")
	}

	matchedGT, err := utils.SelectRows2D(gtBoxes, bestMatches)
	if err != nil {
		return nil, nil, errors.Wrap(err, "gathering matched ground truth")
	}

	numAnchors := c.NumAnchors()
	rawAnchors := c.anchorBoxesCenterXYWH.Float32s()
	rawMatched := matchedGT.Float32s()

	deltas := make([]float32, numAnchors*4)
	labels := make([]int, numAnchors)

	for i := range numAnchors {
		acx, acy, aw, ah := rawAnchors[i*4], rawAnchors[i*4+1], rawAnchors[i*4+2], rawAnchors[i*4+3]
		gcx, gcy, gw, gh := rawMatched[i*4], rawMatched[i*4+1], rawMatched[i*4+2], rawMatched[i*4+3]

		// Center offsets normalized by the anchor size, width and height as
		// log-space ratios. Makes the regression target scale invariant.
		deltas[i*4] = (gcx - acx) / aw
		deltas[i*4+1] = (gcy - acy) / ah
		deltas[i*4+2] = math32.Log(gw / aw)
		deltas[i*4+3] = math32.Log(gh / ah)

		switch {
		case bestIOUs[i] > ignoreIOUThreshold && bestIOUs[i] < foregroundIOUThreshold:
			labels[i] = LabelIgnore
		case bestIOUs[i] < foregroundIOUThreshold:
			labels[i] = LabelBackground
		default:
			labels[i] = gtLabels[bestMatches[i]] + 1
		}
	}

	targetDeltas := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(numAnchors, 4),
		tensor.WithBacking(deltas),
	)
	targetLabels := tensor.New(
		tensor.Of(tensor.Int),
		tensor.WithShape(numAnchors),
		tensor.WithBacking(labels),
	)

	return targetDeltas, targetLabels, nil
}
