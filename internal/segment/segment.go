// Package segment converts a normalized intensity Mat into a label map: a
// CV32S Mat of identical spatial shape where 0 is background and each positive
// integer names one connected object instance.
//
// An all-background result is a valid outcome of every method, never an error.
package segment

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
)

var ErrUnknownMethod = errors.New("unknown segmentation method")

type Method int

const (
	// GlobalThreshold binarizes against a single scalar threshold (Otsu when
	// no level is supplied).
	GlobalThreshold Method = iota
	// LocalThreshold binarizes against a per-pixel local-mean surface.
	LocalThreshold
	// Watershed floods an inverted distance map from local-maximum seeds,
	// constrained to the foreground mask.
	Watershed
	// Superpixel partitions the image into approximately
	// pixels/(2*MinSize) compact regions.
	Superpixel
)

var methodNames = map[string]Method{
	"global-threshold": GlobalThreshold,
	"local-threshold":  LocalThreshold,
	"watershed":        Watershed,
	"superpixel":       Superpixel,
}

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

// Params tunes a segmentation run.
type Params struct {
	// Threshold is an intensity level in [0,1]. Zero means auto: Otsu for the
	// threshold and watershed methods, no intensity gate for superpixels. For
	// the local method it acts as an offset below the local mean.
	Threshold float64

	// MinSize is the minimum object pixel count. Smaller components are
	// discarded (background is exempt). It also sets the superpixel target
	// region size.
	MinSize int

	// BlockSize is the odd local-threshold window. Zero selects 35.
	BlockSize int
}

// Apply derives a label map from a normalized float32 intensity Mat.
func Apply(src gocv.Mat, method Method, params Params) (gocv.Mat, error) {
	if err := imgio.ValidateMat(src, "segment"); err != nil {
		return gocv.NewMat(), err
	}

	switch method {
	case GlobalThreshold:
		return globalThreshold(src, params), nil
	case LocalThreshold:
		return localThreshold(src, params), nil
	case Watershed:
		return watershedSegment(src, params), nil
	case Superpixel:
		return superpixelSegment(src, params), nil
	default:
		return gocv.NewMat(), fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
}

func globalThreshold(src gocv.Mat, params Params) gocv.Mat {
	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	binary := gocv.NewMat()
	defer binary.Close()

	if params.Threshold > 0 {
		gocv.Threshold(eightBit, &binary, float32(params.Threshold*255.0), 255, gocv.ThresholdBinary)
	} else {
		gocv.Threshold(eightBit, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	}

	return labelComponents(binary, params.MinSize)
}

func localThreshold(src gocv.Mat, params Params) gocv.Mat {
	blockSize := params.BlockSize
	if blockSize <= 0 {
		blockSize = 35
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	if blockSize < 3 {
		blockSize = 3
	}

	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(eightBit, &binary, 255, gocv.AdaptiveThresholdMean,
		gocv.ThresholdBinary, blockSize, float32(params.Threshold*255.0))

	return labelComponents(binary, params.MinSize)
}
