package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func floatMat(t *testing.T, values [][]float32) gocv.Mat {
	t.Helper()
	rows := len(values)
	cols := len(values[0])
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mat.SetFloatAt(y, x, values[y][x])
		}
	}
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"min-max", "percentile-clip", "z-score", "adaptive-histogram"} {
		m, err := ParseMethod(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}

	_, err := ParseMethod("logarithmic")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMinMaxRangeAndMonotonicity(t *testing.T) {
	src := floatMat(t, [][]float32{
		{10, 20, 30},
		{40, 50, 60},
		{70, 80, 90},
	})

	dst, err := Apply(src, MinMax)
	require.NoError(t, err)
	defer dst.Close()

	prev := float32(-1)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			v := dst.GetFloatAt(y, x)
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
			// Input increases in scan order, so output must too.
			assert.Greater(t, v, prev)
			prev = v
		}
	}
	assert.InDelta(t, 0, dst.GetFloatAt(0, 0), 1e-6)
	assert.InDelta(t, 1, dst.GetFloatAt(2, 2), 1e-6)
}

func TestMinMaxConstantImageIsAllZero(t *testing.T) {
	src := floatMat(t, [][]float32{{5, 5}, {5, 5}})

	dst, err := Apply(src, MinMax)
	require.NoError(t, err)
	defer dst.Close()

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Zero(t, dst.GetFloatAt(y, x))
		}
	}
}

func TestZScoreConstantImageIsAllZero(t *testing.T) {
	src := floatMat(t, [][]float32{{3, 3, 3}, {3, 3, 3}})

	dst, err := Apply(src, ZScore)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, 2, dst.Rows())
	assert.Equal(t, 3, dst.Cols())
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Zero(t, dst.GetFloatAt(y, x))
		}
	}
}

func TestZScoreCentersMean(t *testing.T) {
	src := floatMat(t, [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	})

	dst, err := Apply(src, ZScore)
	require.NoError(t, err)
	defer dst.Close()

	sum := float64(0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			sum += float64(dst.GetFloatAt(y, x))
		}
	}
	assert.InDelta(t, 0, sum/6, 1e-5)
}

func TestPercentileClipBounds(t *testing.T) {
	// A single hot pixel should not dominate the output range.
	values := make([][]float32, 10)
	for y := range values {
		values[y] = make([]float32, 10)
		for x := range values[y] {
			values[y][x] = float32(y*10+x) / 100
		}
	}
	values[9][9] = 1e6
	src := floatMat(t, values)

	dst, err := Apply(src, PercentileClip)
	require.NoError(t, err)
	defer dst.Close()

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := dst.GetFloatAt(y, x)
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
	// Most of the gradient must survive the clip instead of collapsing
	// toward zero under the outlier.
	assert.Greater(t, dst.GetFloatAt(5, 0), float32(0.3))
}

func TestApplyUnknownMethodFails(t *testing.T) {
	src := floatMat(t, [][]float32{{1, 2}, {3, 4}})

	_, err := Apply(src, Method(42))
	require.ErrorIs(t, err, ErrUnknownMethod)
}
