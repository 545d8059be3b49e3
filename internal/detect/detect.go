// Package detect wraps OpenCV point-feature detectors (blobs, corners). Their
// results share the annotation shape the region filter emits, so viewers
// treat them identically.
package detect

import (
	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
)

// Point is one detected feature in (row, col) coordinates. Size is the
// detector's diameter estimate, zero for corner features.
type Point struct {
	Row  float64
	Col  float64
	Size float64
}

// BlobParams bounds the blob detector's area filter, in pixels.
type BlobParams struct {
	MinArea float64
	MaxArea float64
}

// Blobs detects dark-on-light and light-on-dark round structures.
func Blobs(src gocv.Mat, params BlobParams) ([]Point, error) {
	if err := imgio.ValidateMat(src, "detect blobs"); err != nil {
		return nil, err
	}

	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	blobParams := gocv.NewSimpleBlobDetectorParams()
	if params.MinArea > 0 || params.MaxArea > 0 {
		blobParams.SetFilterByArea(true)
		if params.MinArea > 0 {
			blobParams.SetMinArea(params.MinArea)
		}
		if params.MaxArea > 0 {
			blobParams.SetMaxArea(params.MaxArea)
		}
	}

	detector := gocv.NewSimpleBlobDetectorWithParams(blobParams)
	defer detector.Close()

	keypoints := detector.Detect(eightBit)
	points := make([]Point, 0, len(keypoints))
	for _, kp := range keypoints {
		points = append(points, Point{Row: kp.Y, Col: kp.X, Size: kp.Size})
	}
	return points, nil
}

// CornerParams tunes Shi-Tomasi corner detection.
type CornerParams struct {
	MaxCorners   int     // 0 selects 100
	QualityLevel float64 // relative to the best corner, 0 selects 0.01
	MinDistance  float64 // minimum spacing in pixels, 0 selects 5
}

// Corners finds strong Shi-Tomasi corners.
func Corners(src gocv.Mat, params CornerParams) ([]Point, error) {
	if err := imgio.ValidateMat(src, "detect corners"); err != nil {
		return nil, err
	}

	maxCorners := params.MaxCorners
	if maxCorners <= 0 {
		maxCorners = 100
	}
	quality := params.QualityLevel
	if quality <= 0 {
		quality = 0.01
	}
	minDistance := params.MinDistance
	if minDistance <= 0 {
		minDistance = 5
	}

	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(eightBit, &corners, maxCorners, quality, minDistance)

	points := make([]Point, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		points = append(points, Point{Row: float64(v[1]), Col: float64(v[0])})
	}
	return points, nil
}
