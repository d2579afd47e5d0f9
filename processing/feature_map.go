package processing

import "github.com/chewxy/math32"

// FeatureMapSize computes the spatial size of the network's output feature map
// for a given input image size and output stride. imgSize is (width, height);
// each dimension is divided by the stride and rounded up, so partial cells at
// the image border still get a grid position.
func FeatureMapSize(imgSize [2]int, stride int) (int, int) {
	heightCells := int(math32.Ceil(float32(imgSize[1]) / float32(stride)))
	widthCells := int(math32.Ceil(float32(imgSize[0]) / float32(stride)))
	return heightCells, widthCells
}
