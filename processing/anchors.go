package processing

import (
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/okieraised/go-anchor-targets/utils"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// StrideAnchorConfig describes the anchor shapes generated for one feature
// pyramid level.
type StrideAnchorConfig struct {
	AnchorAreas  []float32
	AspectRatios []float32
}

// AnchorSizes enumerates every (width, height) pair produced by combining the
// configured anchor areas with the configured aspect ratios, as a (K, 2)
// tensor with K = len(areas) * len(ratios).
//
// Given aspect_ratio = w / h and area = w * h:
//
//	w = sqrt(aspect_ratio * area)
//	h = area / w
//
// The outer loop runs over areas and the inner loop over ratios, which fixes
// the size ordering used by GenerateAnchorBoxes.
func AnchorSizes(anchorAreas, aspectRatios []float32) *tensor.Dense {
	sizes := make([]float32, 0, len(anchorAreas)*len(aspectRatios)*2)

	for _, area := range anchorAreas {
		for _, ratio := range aspectRatios {
			w := math32.Sqrt(ratio * area)
			h := area / w
			sizes = append(sizes, w, h)
		}
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(len(anchorAreas)*len(aspectRatios), 2),
		tensor.WithBacking(sizes),
	)
}

// AnchorCenters computes the center of every feature map cell's receptive
// field in input image coordinates, as a (C, 2) tensor of (x, y) pairs with
// C = heightCells * widthCells. Cells are visited row-major, all columns of
// row 0 first, which fixes the center ordering used by GenerateAnchorBoxes.
func AnchorCenters(imgSize [2]int, stride int) *tensor.Dense {
	heightCells, widthCells := FeatureMapSize(imgSize, stride)

	centers := make([]float32, 0, heightCells*widthCells*2)
	for row := range heightCells {
		for col := range widthCells {
			x := (float32(col) + 0.5) * float32(stride)
			y := (float32(row) + 0.5) * float32(stride)
			centers = append(centers, x, y)
		}
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(heightCells*widthCells, 2),
		tensor.WithBacking(centers),
	)
}

// GenerateAnchorBoxes combines the size and center enumerations into the full
// anchor set, an (N, 4) tensor in center_xywh format with
// N = len(areas) * len(ratios) * ceil(H/stride) * ceil(W/stride).
//
// The flattening order is part of the contract: the anchor for center index i
// and size index k lives at row i*K + k, where K is the number of sizes. A
// downstream loss has to rely on this ordering to align predictions with
// targets.
//
// The returned tensor is a freshly allocated value; callers treat it as
// immutable and recompute it in full whenever the configuration changes.
func GenerateAnchorBoxes(imgSize [2]int, anchorAreas, aspectRatios []float32, stride int) (*tensor.Dense, error) {
	if stride <= 0 {
		return nil, errors.Errorf("stride must be a positive number, got %d", stride)
	}
	if len(anchorAreas) == 0 {
		return nil, errors.New("anchor areas must not be empty")
	}
	if len(aspectRatios) == 0 {
		return nil, errors.New("aspect ratios must not be empty")
	}

	sizes := AnchorSizes(anchorAreas, aspectRatios)
	centers := AnchorCenters(imgSize, stride)

	numSizes := sizes.Shape()[0]
	numCenters := centers.Shape()[0]

	// Each center row repeats once per size, the size block tiles once per
	// center, and the two (N, 2) halves join into (N, 4) center_xywh rows.
	repeatedCenters, err := centers.Repeat(0, numSizes)
	if err != nil {
		return nil, errors.Wrap(err, "repeating anchor centers")
	}

	sizeBlocks := make([]*tensor.Dense, numCenters)
	for i := range numCenters {
		sizeBlocks[i] = sizes
	}
	tiledSizes, err := utils.VStack(sizeBlocks)
	if err != nil {
		return nil, errors.Wrap(err, "tiling anchor sizes")
	}

	anchors, err := utils.HStack([]*tensor.Dense{repeatedCenters.(*tensor.Dense), tiledSizes})
	if err != nil {
		return nil, errors.Wrap(err, "assembling anchor boxes")
	}

	return anchors, nil
}

// GenerateAnchorBoxesFPN generates one anchor set per feature pyramid level.
// The configuration maps each level's stride to its anchor shapes; the
// returned slice follows the map's insertion order.
func GenerateAnchorBoxesFPN(imgSize [2]int, cfg *orderedmap.OrderedMap[int, StrideAnchorConfig]) ([]*tensor.Dense, error) {
	if cfg == nil || cfg.Len() == 0 {
		return nil, errors.New("anchor configuration must contain at least one stride")
	}

	anchors := make([]*tensor.Dense, 0, cfg.Len())
	for el := cfg.Front(); el != nil; el = el.Next() {
		r, err := GenerateAnchorBoxes(imgSize, el.Value.AnchorAreas, el.Value.AspectRatios, el.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "stride %d", el.Key)
		}
		anchors = append(anchors, r)
	}
	return anchors, nil
}
