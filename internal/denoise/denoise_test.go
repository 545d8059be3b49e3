package denoise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func noisyImage(t *testing.T) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV32F)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := float32(0.5)
			if (y*31+x*17)%7 == 0 {
				v = 0.9
			}
			mat.SetFloatAt(y, x, v)
		}
	}
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"none", "gaussian", "median", "bilateral", "nlmeans"} {
		m, err := ParseMethod(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}

	_, err := ParseMethod("wiener")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNoneReturnsUnchangedCopy(t *testing.T) {
	src := noisyImage(t)

	dst, err := Apply(src, None, Params{})
	require.NoError(t, err)
	defer dst.Close()

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, src.GetFloatAt(y, x), dst.GetFloatAt(y, x))
		}
	}

	// The copy is independent of the source.
	dst.SetFloatAt(0, 0, 0)
	assert.NotEqual(t, src.GetFloatAt(0, 0), dst.GetFloatAt(0, 0))
}

func TestGaussianReducesVariation(t *testing.T) {
	src := noisyImage(t)

	dst, err := Apply(src, Gaussian, Params{Sigma: 1.5})
	require.NoError(t, err)
	defer dst.Close()

	require.Equal(t, src.Rows(), dst.Rows())
	require.Equal(t, src.Cols(), dst.Cols())

	assert.Less(t, spread(dst), spread(src), "smoothing must narrow the intensity range")
}

func TestMedianPreservesShape(t *testing.T) {
	src := noisyImage(t)

	dst, err := Apply(src, Median, Params{KernelSize: 3})
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
}

func TestBilateralPreservesShape(t *testing.T) {
	src := noisyImage(t)

	dst, err := Apply(src, Bilateral, Params{})
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
}

func TestNonLocalMeansPreservesShape(t *testing.T) {
	src := noisyImage(t)

	dst, err := Apply(src, NonLocalMeans, Params{Strength: 10})
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, src.Rows(), dst.Rows())
	assert.Equal(t, src.Cols(), dst.Cols())
}

func TestUnknownMethodFails(t *testing.T) {
	src := noisyImage(t)

	_, err := Apply(src, Method(17), Params{})
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func spread(mat gocv.Mat) float64 {
	minVal, maxVal, _, _ := gocv.MinMaxLoc(mat)
	return float64(maxVal - minVal)
}
