package segment

import (
	"image"

	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
)

// watershedSegment separates touching objects: foreground mask, distance
// transform, seeds at distance maxima, then an OpenCV watershed flood over the
// inverted distance surface. Regions below MinSize are discarded afterwards;
// background is exempt.
func watershedSegment(src gocv.Mat, params Params) gocv.Mat {
	rows, cols := src.Rows(), src.Cols()

	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	if params.Threshold > 0 {
		gocv.Threshold(eightBit, &binary, float32(params.Threshold*255.0), 255, gocv.ThresholdBinary)
	} else {
		gocv.Threshold(eightBit, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	}

	// Close small holes so the distance map has a single interior peak per
	// convex object.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MorphologyEx(binary, &mask, gocv.MorphClose, kernel)

	dist := gocv.NewMat()
	defer dist.Close()
	distLabels := gocv.NewMat()
	defer distLabels.Close()
	gocv.DistanceTransform(mask, &dist, &distLabels, gocv.DistL2, gocv.DistanceMask3, gocv.DistanceLabelCComp)

	_, maxDist, _, _ := gocv.MinMaxLoc(dist)
	if maxDist <= 0 {
		// Empty mask: a valid all-background result.
		return gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	}

	seeds := localMaxima(dist, kernel)
	defer seeds.Close()

	markers := gocv.NewMat()
	defer markers.Close()
	seedCount := gocv.ConnectedComponents(seeds, &markers)
	if seedCount <= 1 {
		return gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	}

	// Mark certain background with a dedicated id so the flood cannot leak
	// object labels outside the mask.
	backgroundID := int32(seedCount)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				markers.SetIntAt(y, x, backgroundID)
			}
		}
	}

	surface := invertedDistanceSurface(dist, maxDist)
	defer surface.Close()

	gocv.Watershed(surface, &markers)

	result := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			id := markers.GetIntAt(y, x)
			// Ridge pixels (-1) and the background id stay 0.
			if id > 0 && id < backgroundID {
				result.SetIntAt(y, x, id)
			}
		}
	}

	compacted := dropSmallAndCompact(result, params.MinSize)
	result.Close()
	return compacted
}

// localMaxima marks pixels whose distance value equals the dilated maximum of
// their neighborhood. Plateaus mark as a single connected seed.
func localMaxima(dist gocv.Mat, kernel gocv.Mat) gocv.Mat {
	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(dist, &dilated, kernel)

	rows, cols := dist.Rows(), dist.Cols()
	seeds := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := dist.GetFloatAt(y, x)
			if v > 0 && v == dilated.GetFloatAt(y, x) {
				seeds.SetUCharAt(y, x, 255)
			}
		}
	}
	return seeds
}

// invertedDistanceSurface renders the negated distance map as the 3-channel
// 8-bit image the OpenCV watershed expects. Peaks become basins.
func invertedDistanceSurface(dist gocv.Mat, maxDist float32) gocv.Mat {
	rows, cols := dist.Rows(), dist.Cols()

	inverted := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	defer inverted.Close()
	scale := 255.0 / maxDist
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			inverted.SetUCharAt(y, x, 255-uint8(dist.GetFloatAt(y, x)*scale))
		}
	}

	surface := gocv.NewMat()
	gocv.CvtColor(inverted, &surface, gocv.ColorGrayToBGR)
	return surface
}
