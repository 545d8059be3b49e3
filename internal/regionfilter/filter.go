// Package regionfilter discards measured objects outside a property range and
// re-derives a label map plus point annotations for display layers.
package regionfilter

import (
	"errors"
	"math"

	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
	"labelpipe/internal/measure"
)

// ErrEmptyResult reports that no object satisfied the filter. Callers must
// check for it with errors.Is before touching the returned label map; an
// empty map is never handed back with ambiguous semantics.
var ErrEmptyResult = errors.New("no objects satisfy the filter")

// Annotation is one display point per surviving object: its centroid plus a
// copy of the scalar properties downstream viewers show alongside it.
type Annotation struct {
	Label    int
	Centroid [2]float64 // row, col
	Area     int
	// MeanIntensity is nil when the records carried no intensity group.
	MeanIntensity *float64
}

// AreaRange is an inclusive [Min, Max] pixel-count window. Max <= 0 means
// unbounded above.
type AreaRange struct {
	Min int
	Max int
}

func (r AreaRange) contains(area int) bool {
	if area < r.Min {
		return false
	}
	return r.Max <= 0 || area <= r.Max
}

// ByArea keeps objects whose area lies in bounds. The returned label map
// preserves the original ids on surviving pixels; labels are deliberately not
// renumbered so records and annotations stay addressable by id.
func ByArea(labels gocv.Mat, records map[int]measure.ObjectRecord, bounds AreaRange) (gocv.Mat, []Annotation, error) {
	if err := imgio.ValidateMat(labels, "filter"); err != nil {
		return gocv.NewMat(), nil, err
	}

	keep := make(map[int]bool, len(records))
	annotations := make([]Annotation, 0, len(records))
	for _, id := range measure.Labels(records) {
		rec := records[id]
		if !bounds.contains(rec.Area) {
			continue
		}
		keep[id] = true

		ann := Annotation{
			Label:    id,
			Centroid: rec.Centroid,
			Area:     rec.Area,
		}
		if rec.Intensity != nil {
			mean := rec.Intensity.Mean
			ann.MeanIntensity = &mean
		}
		annotations = append(annotations, ann)
	}

	if len(annotations) == 0 {
		return gocv.NewMat(), nil, ErrEmptyResult
	}

	rows, cols := labels.Rows(), labels.Cols()
	filtered := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if id := labels.GetIntAt(y, x); keep[int(id)] {
				filtered.SetIntAt(y, x, id)
			}
		}
	}

	return filtered, annotations, nil
}

// Unbounded is the identity range: every measured object qualifies.
var Unbounded = AreaRange{Min: 0, Max: math.MaxInt}
