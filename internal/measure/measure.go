// Package measure computes per-object region properties from a label map and
// an optional same-shape intensity image: geometry from pixel scans, image
// moments and contours, intensity summaries, and GLCM texture features.
package measure

import (
	"math"
	"sort"

	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
)

type accumulator struct {
	area           int
	sumRow, sumCol float64
	minRow, minCol int
	maxRow, maxCol int
	intSum         float64
	intMin, intMax float64
}

// Measure returns one ObjectRecord per positive label in labels (a CV32S
// Mat). Label 0 is background and never receives a record. When intensity is
// non-nil it must have the same spatial shape; its per-object summaries and,
// if enabled, texture features are then populated.
func Measure(labels gocv.Mat, intensity *gocv.Mat, opts Options) (map[int]ObjectRecord, error) {
	if err := imgio.ValidateMat(labels, "measure"); err != nil {
		return nil, err
	}
	if intensity != nil {
		if err := imgio.ValidateSameShape(labels, *intensity, "measure"); err != nil {
			return nil, err
		}
	}

	accs := scanLabels(labels, intensity)

	records := make(map[int]ObjectRecord, len(accs))
	for id, acc := range accs {
		rec := ObjectRecord{
			Label:    id,
			Area:     acc.area,
			Centroid: [2]float64{acc.sumRow / float64(acc.area), acc.sumCol / float64(acc.area)},
			MinRow:   acc.minRow,
			MinCol:   acc.minCol,
			MaxRow:   acc.maxRow,
			MaxCol:   acc.maxCol,
		}

		mask := regionMask(labels, id, acc)
		measureShape(&rec, mask, acc)
		mask.Close()

		if intensity != nil {
			rec.Intensity = &IntensityFeatures{
				Mean:       acc.intSum / float64(acc.area),
				Min:        acc.intMin,
				Max:        acc.intMax,
				Integrated: acc.intSum,
			}
			if opts.ComputeTexture && acc.area >= opts.textureMinArea() {
				rec.Texture = textureFeatures(labels, *intensity, id, acc)
			}
		}

		records[id] = rec
	}

	return records, nil
}

// Labels returns the sorted positive label ids of a record set.
func Labels(records map[int]ObjectRecord) []int {
	ids := make([]int, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func scanLabels(labels gocv.Mat, intensity *gocv.Mat) map[int]*accumulator {
	accs := make(map[int]*accumulator)
	rows, cols := labels.Rows(), labels.Cols()

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			id := int(labels.GetIntAt(y, x))
			if id <= 0 {
				continue
			}

			acc, ok := accs[id]
			if !ok {
				acc = &accumulator{
					minRow: y, maxRow: y,
					minCol: x, maxCol: x,
					intMin: math.Inf(1), intMax: math.Inf(-1),
				}
				accs[id] = acc
			}

			acc.area++
			acc.sumRow += float64(y)
			acc.sumCol += float64(x)
			if y < acc.minRow {
				acc.minRow = y
			}
			if y > acc.maxRow {
				acc.maxRow = y
			}
			if x < acc.minCol {
				acc.minCol = x
			}
			if x > acc.maxCol {
				acc.maxCol = x
			}

			if intensity != nil {
				v := float64(intensity.GetFloatAt(y, x))
				acc.intSum += v
				if v < acc.intMin {
					acc.intMin = v
				}
				if v > acc.intMax {
					acc.intMax = v
				}
			}
		}
	}
	return accs
}

// regionMask extracts the object as an 8-bit mask over its bounding box.
// Central moments and contour statistics are translation invariant, so the
// crop does not change them.
func regionMask(labels gocv.Mat, id int, acc *accumulator) gocv.Mat {
	height := acc.maxRow - acc.minRow + 1
	width := acc.maxCol - acc.minCol + 1
	mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if int(labels.GetIntAt(acc.minRow+y, acc.minCol+x)) == id {
				mask.SetUCharAt(y, x, 255)
			}
		}
	}
	return mask
}

func measureShape(rec *ObjectRecord, mask gocv.Mat, acc *accumulator) {
	moments := gocv.Moments(mask, true)
	if m00 := moments["m00"]; m00 > 0 {
		a := moments["mu20"] / m00
		b := moments["mu11"] / m00
		c := moments["mu02"] / m00

		half := (a + c) / 2
		delta := math.Sqrt(((a-c)/2)*((a-c)/2) + b*b)
		lambda1 := half + delta
		lambda2 := half - delta
		if lambda2 < 0 {
			lambda2 = 0
		}

		rec.MajorAxisLength = 4 * math.Sqrt(lambda1)
		rec.MinorAxisLength = 4 * math.Sqrt(lambda2)
		if lambda1 > 0 {
			rec.Eccentricity = math.Sqrt(1 - lambda2/lambda1)
		}
		rec.Orientation = 0.5 * math.Atan2(2*b, a-c)
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	longest := -1
	longestLen := 0.0
	for i := 0; i < contours.Size(); i++ {
		if l := gocv.ArcLength(contours.At(i), true); longest < 0 || l > longestLen {
			longest = i
			longestLen = l
		}
	}

	rec.Solidity = 1.0
	if longest >= 0 {
		rec.Perimeter = longestLen

		contour := contours.At(longest)
		points := make([][2]int, contour.Size())
		for i := range points {
			p := contour.At(i)
			points[i] = [2]int{p.X, p.Y}
		}
		if hullArea := convexHullArea(points); hullArea > float64(acc.area) {
			rec.Solidity = float64(acc.area) / hullArea
		}
	}
}
