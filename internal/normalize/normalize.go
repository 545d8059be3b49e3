// Package normalize rescales raw pixel intensities into a canonical range
// ahead of segmentation. Every method is a pure function of its input: no
// state survives a call, and degenerate inputs (zero range, zero variance)
// yield a well-defined all-zero result instead of an error.
package normalize

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"labelpipe/internal/imgio"
)

// ErrUnknownMethod is returned when a Method value has no implementation.
// Unrecognized methods always fail fast; nothing is silently substituted.
var ErrUnknownMethod = errors.New("unknown normalization method")

// Method selects the rescaling strategy.
type Method int

const (
	// MinMax maps [observed min, observed max] linearly onto [0,1].
	MinMax Method = iota
	// PercentileClip clips to the [1st, 99th] percentile range first, then
	// maps linearly onto [0,1]. Robust against hot pixels.
	PercentileClip
	// ZScore subtracts the mean and divides by the standard deviation.
	ZScore
	// AdaptiveHistogram equalizes contrast locally (CLAHE).
	AdaptiveHistogram
)

var methodNames = map[string]Method{
	"min-max":            MinMax,
	"percentile-clip":    PercentileClip,
	"z-score":            ZScore,
	"adaptive-histogram": AdaptiveHistogram,
}

// ParseMethod resolves a configuration name to a Method.
func ParseMethod(name string) (Method, error) {
	m, ok := methodNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return m, nil
}

func (m Method) String() string {
	for name, v := range methodNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

const (
	lowerPercentile = 0.01
	upperPercentile = 0.99
)

// Apply produces a new float32 Mat with rescaled intensities. The input is
// never modified.
func Apply(src gocv.Mat, method Method) (gocv.Mat, error) {
	if err := imgio.ValidateMat(src, "normalize"); err != nil {
		return gocv.NewMat(), err
	}

	switch method {
	case MinMax:
		return minMax(src), nil
	case PercentileClip:
		return percentileClip(src), nil
	case ZScore:
		return zScore(src), nil
	case AdaptiveHistogram:
		return adaptiveHistogram(src), nil
	default:
		return gocv.NewMat(), fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
}

func minMax(src gocv.Mat) gocv.Mat {
	minVal, maxVal, _, _ := gocv.MinMaxLoc(src)
	if maxVal == minVal {
		return gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV32F)
	}

	dst := gocv.NewMat()
	scale := 1.0 / (maxVal - minVal)
	src.ConvertToWithParams(&dst, gocv.MatTypeCV32F, scale, -minVal*scale)
	return dst
}

func percentileClip(src gocv.Mat) gocv.Mat {
	values := matValues(src)
	sort.Float64s(values)

	lo := stat.Quantile(lowerPercentile, stat.Empirical, values, nil)
	hi := stat.Quantile(upperPercentile, stat.Empirical, values, nil)
	if hi == lo {
		return gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV32F)
	}

	rows, cols := src.Rows(), src.Cols()
	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	scale := 1.0 / (hi - lo)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := float64(src.GetFloatAt(y, x))
			if v < lo {
				v = lo
			}
			if v > hi {
				v = hi
			}
			dst.SetFloatAt(y, x, float32((v-lo)*scale))
		}
	}
	return dst
}

func zScore(src gocv.Mat) gocv.Mat {
	values := matValues(src)
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 {
		return gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV32F)
	}

	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, gocv.MatTypeCV32F, float32(1.0/std), float32(-mean/std))
	return dst
}

func adaptiveHistogram(src gocv.Mat) gocv.Mat {
	// CLAHE operates on 8-bit input, so round-trip through uint8.
	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()
	clahe.Apply(eightBit, &equalized)

	return imgio.ToFloat(equalized)
}

func matValues(src gocv.Mat) []float64 {
	rows, cols := src.Rows(), src.Cols()
	values := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			values = append(values, float64(src.GetFloatAt(y, x)))
		}
	}
	return values
}
