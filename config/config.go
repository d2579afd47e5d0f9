package config

type AnchorTargetParams struct {
	ImageSize    [2]int    `json:"image_size"`
	AnchorAreas  []float32 `json:"anchor_areas"`
	AspectRatios []float32 `json:"aspect_ratios"`
	Stride       int       `json:"stride"`
}

// DefaultAnchorTargetParams mirrors the common single-scale detector setup:
// anchor areas of 128^2, 256^2 and 512^2 pixels at aspect ratios 1:2, 1:1 and
// 2:1, one set of anchors every 16 pixels of the input image.
var DefaultAnchorTargetParams = &AnchorTargetParams{
	ImageSize:    [2]int{600, 600},
	AnchorAreas:  []float32{128 * 128, 256 * 256, 512 * 512},
	AspectRatios: []float32{0.5, 1.0, 2.0},
	Stride:       16,
}

func NewAnchorTargetParams(imgSize [2]int, anchorAreas, aspectRatios []float32, stride int) *AnchorTargetParams {
	return &AnchorTargetParams{
		ImageSize:    imgSize,
		AnchorAreas:  anchorAreas,
		AspectRatios: aspectRatios,
		Stride:       stride,
	}
}

type PaddingParams struct {
	TargetSize [2]int `json:"target_size"`
	FillValue  int    `json:"fill_value"`
}

var DefaultPaddingParams = &PaddingParams{
	TargetSize: [2]int{600, 600},
	FillValue:  0,
}

func NewPaddingParams(targetSize [2]int, fillValue int) *PaddingParams {
	return &PaddingParams{
		TargetSize: targetSize,
		FillValue:  fillValue,
	}
}
