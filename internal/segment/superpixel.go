package segment

import (
	"math"

	"gocv.io/x/gocv"
)

// Weight applied to the intensity feature relative to grid-normalized spatial
// coordinates. Larger values trade region compactness for intensity adherence.
const intensityWeight = 20.0

// superpixelSegment partitions the image into approximately
// pixels/(2*MinSize) compact regions with k-means over (row, col, intensity)
// features. When Threshold is non-zero, only superpixels whose mean intensity
// exceeds it survive; the rest become background.
func superpixelSegment(src gocv.Mat, params Params) gocv.Mat {
	rows, cols := src.Rows(), src.Cols()
	pixels := rows * cols

	minSize := params.MinSize
	if minSize < 1 {
		minSize = 1
	}
	k := pixels / (2 * minSize)
	if k < 2 {
		k = 2
	}
	if k > pixels {
		k = pixels
	}

	// Spatial coordinates are scaled by the expected region spacing so the
	// three features share one distance metric, as in SLIC.
	spacing := math.Sqrt(float64(pixels) / float64(k))

	samples := gocv.NewMatWithSize(pixels, 3, gocv.MatTypeCV32F)
	defer samples.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			idx := y*cols + x
			samples.SetFloatAt(idx, 0, float32(float64(y)/spacing))
			samples.SetFloatAt(idx, 1, float32(float64(x)/spacing))
			samples.SetFloatAt(idx, 2, src.GetFloatAt(y, x)*intensityWeight)
		}
	}

	clusters := gocv.NewMat()
	defer clusters.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.MaxIter+gocv.EPS, 10, 1.0)
	gocv.KMeans(samples, k, &clusters, criteria, 3, gocv.KMeansPPCenters, &centers)

	labels := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	sums := make([]float64, k+1)
	counts := make([]int, k+1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			id := clusters.GetIntAt(y*cols+x, 0) + 1
			labels.SetIntAt(y, x, id)
			sums[id] += float64(src.GetFloatAt(y, x))
			counts[id]++
		}
	}

	if params.Threshold <= 0 {
		return labels
	}

	// Intensity gate: keep superpixels brighter than the threshold.
	remap := make([]int32, k+1)
	next := int32(1)
	for id := 1; id <= k; id++ {
		if counts[id] > 0 && sums[id]/float64(counts[id]) > params.Threshold {
			remap[id] = next
			next++
		}
	}

	gated := remapLabels(labels, remap)
	labels.Close()
	return gated
}
