package processing

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Bounding boxes move between three 4-float representations:
//
// center_xywh -- center x/y coordinates plus width and height. Canonical
// representation for training, since regression deltas are computed between
// box centers.
//
// topleft_xywh -- top left x/y coordinates plus width and height. The format
// of coco-like annotations.
//
// xyxy -- top left and bottom right corner coordinates. Used for computing
// intersection over union.
//
// Every conversion below takes an (N, 4) float32 tensor and returns a new
// tensor, leaving the input untouched.

func checkBoxShape(boxes *tensor.Dense) error {
	shape := boxes.Shape()
	if len(shape) != 2 || shape[1] != 4 {
		return errors.Errorf("expected an (N, 4) box tensor, got shape %v", shape)
	}
	return nil
}

func ConvertTopLeftXYWHToCenterXYWH(boxes *tensor.Dense) (*tensor.Dense, error) {
	if err := checkBoxShape(boxes); err != nil {
		return nil, err
	}

	raw := boxes.Float32s()
	converted := make([]float32, len(raw))
	for i := 0; i < len(raw); i += 4 {
		x0, y0, w, h := raw[i], raw[i+1], raw[i+2], raw[i+3]
		converted[i] = x0 + w*0.5
		converted[i+1] = y0 + h*0.5
		converted[i+2] = w
		converted[i+3] = h
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(boxes.Shape()[0], 4),
		tensor.WithBacking(converted),
	), nil
}

func ConvertCenterXYWHToTopLeftXYWH(boxes *tensor.Dense) (*tensor.Dense, error) {
	if err := checkBoxShape(boxes); err != nil {
		return nil, err
	}

	raw := boxes.Float32s()
	converted := make([]float32, len(raw))
	for i := 0; i < len(raw); i += 4 {
		cx, cy, w, h := raw[i], raw[i+1], raw[i+2], raw[i+3]
		converted[i] = cx - w*0.5
		converted[i+1] = cy - h*0.5
		converted[i+2] = w
		converted[i+3] = h
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(boxes.Shape()[0], 4),
		tensor.WithBacking(converted),
	), nil
}

func ConvertCenterXYWHToXYXY(boxes *tensor.Dense) (*tensor.Dense, error) {
	if err := checkBoxShape(boxes); err != nil {
		return nil, err
	}

	raw := boxes.Float32s()
	converted := make([]float32, len(raw))
	for i := 0; i < len(raw); i += 4 {
		cx, cy, w, h := raw[i], raw[i+1], raw[i+2], raw[i+3]
		converted[i] = cx - w*0.5
		converted[i+1] = cy - h*0.5
		converted[i+2] = cx + w*0.5
		converted[i+3] = cy + h*0.5
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(boxes.Shape()[0], 4),
		tensor.WithBacking(converted),
	), nil
}

func ConvertTopLeftXYWHToXYXY(boxes *tensor.Dense) (*tensor.Dense, error) {
	if err := checkBoxShape(boxes); err != nil {
		return nil, err
	}

	raw := boxes.Float32s()
	converted := make([]float32, len(raw))
	for i := 0; i < len(raw); i += 4 {
		x0, y0, w, h := raw[i], raw[i+1], raw[i+2], raw[i+3]
		converted[i] = x0
		converted[i+1] = y0
		converted[i+2] = x0 + w
		converted[i+3] = y0 + h
	}

	return tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(boxes.Shape()[0], 4),
		tensor.WithBacking(converted),
	), nil
}
