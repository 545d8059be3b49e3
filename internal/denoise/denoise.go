// Package denoise smooths raw intensities before normalization and
// segmentation. All methods delegate to OpenCV.
package denoise

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"labelpipe/internal/imgio"
)

var ErrUnknownMethod = errors.New("unknown denoising method")

type Method int

const (
	// None clones the input unchanged.
	None Method = iota
	// Gaussian blurs with a kernel sized from sigma.
	Gaussian
	// Median replaces each pixel with its neighborhood median.
	Median
	// Bilateral smooths while keeping edges.
	Bilateral
	// NonLocalMeans averages similar patches across the image.
	NonLocalMeans
)

var methodNames = map[string]Method{
	"none":      None,
	"gaussian":  Gaussian,
	"median":    Median,
	"bilateral": Bilateral,
	"nlmeans":   NonLocalMeans,
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

// Params holds per-method tuning knobs. Zero values select defaults.
type Params struct {
	Sigma      float64 // Gaussian
	KernelSize int     // Median; forced odd, minimum 3
	Diameter   int     // Bilateral pixel neighborhood
	SigmaColor float64 // Bilateral intensity sigma
	SigmaSpace float64 // Bilateral spatial sigma
	Strength   float64 // NonLocalMeans filter strength h
}

// Apply returns a smoothed copy of src, a float32 Mat in [0,1].
func Apply(src gocv.Mat, method Method, params Params) (gocv.Mat, error) {
	if err := imgio.ValidateMat(src, "denoise"); err != nil {
		return gocv.NewMat(), err
	}

	switch method {
	case None:
		return src.Clone(), nil
	case Gaussian:
		return gaussian(src, params.Sigma), nil
	case Median:
		return median(src, params.KernelSize), nil
	case Bilateral:
		return bilateral(src, params), nil
	case NonLocalMeans:
		return nonLocalMeans(src, params.Strength), nil
	default:
		return gocv.NewMat(), fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
}

func gaussian(src gocv.Mat, sigma float64) gocv.Mat {
	if sigma <= 0 {
		sigma = 1.0
	}
	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}

	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(kernelSize, kernelSize), sigma, sigma, gocv.BorderDefault)
	return dst
}

func median(src gocv.Mat, kernelSize int) gocv.Mat {
	if kernelSize < 3 {
		kernelSize = 3
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}

	// OpenCV restricts float input to kernels of 3 or 5, so filter in 8-bit.
	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MedianBlur(eightBit, &dst, kernelSize)

	return imgio.ToFloat(dst)
}

func bilateral(src gocv.Mat, params Params) gocv.Mat {
	diameter := params.Diameter
	if diameter <= 0 {
		diameter = 9
	}
	sigmaColor := params.SigmaColor
	if sigmaColor <= 0 {
		sigmaColor = 0.1
	}
	sigmaSpace := params.SigmaSpace
	if sigmaSpace <= 0 {
		sigmaSpace = 5.0
	}

	dst := gocv.NewMat()
	gocv.BilateralFilter(src, &dst, diameter, sigmaColor, sigmaSpace)
	return dst
}

func nonLocalMeans(src gocv.Mat, strength float64) gocv.Mat {
	if strength <= 0 {
		strength = 10.0
	}

	// The OpenCV implementation is 8-bit only.
	eightBit := imgio.ToUint8(src)
	defer eightBit.Close()

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingWithParams(eightBit, &denoised, float32(strength), 7, 21)

	return imgio.ToFloat(denoised)
}
