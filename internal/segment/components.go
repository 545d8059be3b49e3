package segment

import (
	"gocv.io/x/gocv"
)

// labelComponents labels connected components of a binary Mat, discards those
// below minSize, and renumbers survivors with consecutive positive integers
// starting at 1.
func labelComponents(binary gocv.Mat, minSize int) gocv.Mat {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStats(binary, &labels, &stats, &centroids)

	// Component 0 is background. Survivors get compact replacement ids.
	remap := make([]int32, count)
	next := int32(1)
	for i := 1; i < count; i++ {
		area := int(stats.GetIntAt(i, int(gocv.CCStatArea)))
		if area >= minSize {
			remap[i] = next
			next++
		}
	}

	return remapLabels(labels, remap)
}

// remapLabels builds a fresh CV32S label Mat by applying remap to every pixel.
// Entries mapped to 0 become background.
func remapLabels(labels gocv.Mat, remap []int32) gocv.Mat {
	rows, cols := labels.Rows(), labels.Cols()
	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			id := labels.GetIntAt(y, x)
			if id <= 0 || int(id) >= len(remap) {
				continue
			}
			if mapped := remap[id]; mapped > 0 {
				dst.SetIntAt(y, x, mapped)
			}
		}
	}
	return dst
}

// labelAreas counts pixels per label id in a CV32S label Mat.
func labelAreas(labels gocv.Mat) map[int32]int {
	areas := make(map[int32]int)
	rows, cols := labels.Rows(), labels.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if id := labels.GetIntAt(y, x); id > 0 {
				areas[id]++
			}
		}
	}
	return areas
}

// dropSmallAndCompact removes labels below minSize and renumbers the rest
// consecutively from 1. Background never counts toward the size filter.
func dropSmallAndCompact(labels gocv.Mat, minSize int) gocv.Mat {
	areas := labelAreas(labels)

	maxID := int32(0)
	for id := range areas {
		if id > maxID {
			maxID = id
		}
	}

	remap := make([]int32, maxID+1)
	next := int32(1)
	for id := int32(1); id <= maxID; id++ {
		if areas[id] >= minSize && areas[id] > 0 {
			remap[id] = next
			next++
		}
	}

	return remapLabels(labels, remap)
}
