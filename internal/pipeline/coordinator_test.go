package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"labelpipe/internal/config"
	"labelpipe/internal/logger"
)

// blockImage is the canonical scenario: a 10x10 zero image with a 3x3 block
// of full intensity centered at (4,4).
func blockImage(t *testing.T) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV32F)
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			mat.SetFloatAt(y, x, 1.0)
		}
	}
	t.Cleanup(func() { mat.Close() })
	return mat
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Segment.MinSize = 1
	return cfg
}

func TestRunSingleBlock(t *testing.T) {
	coordinator, err := NewCoordinator(testConfig(), logger.Nop{})
	require.NoError(t, err)

	result, err := coordinator.Run(blockImage(t))
	require.NoError(t, err)
	defer result.Close()

	assert.False(t, result.Empty)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Annotations, 1)

	rec := result.Records[1]
	assert.Equal(t, 9, rec.Area)
	assert.InDelta(t, 4.0, rec.Centroid[0], 1e-9)
	assert.InDelta(t, 4.0, rec.Centroid[1], 1e-9)
	require.NotNil(t, rec.Intensity)
	assert.InDelta(t, 1.0, rec.Intensity.Mean, 1e-6)

	ann := result.Annotations[0]
	assert.Equal(t, 1, ann.Label)
	assert.InDelta(t, 4.0, ann.Centroid[0], 1e-9)
}

func TestRunAllZeroImage(t *testing.T) {
	coordinator, err := NewCoordinator(testConfig(), logger.Nop{})
	require.NoError(t, err)

	src := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV32F)
	defer src.Close()

	result, err := coordinator.Run(src)
	require.NoError(t, err)
	defer result.Close()

	// Zero segments, so the filter reports the empty sentinel outcome.
	assert.True(t, result.Empty)
	assert.Empty(t, result.Records)
	assert.Nil(t, result.Annotations)
}

func TestRunEmptyAfterFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.MinArea = 1000

	coordinator, err := NewCoordinator(cfg, logger.Nop{})
	require.NoError(t, err)

	result, err := coordinator.Run(blockImage(t))
	require.NoError(t, err)
	defer result.Close()

	assert.True(t, result.Empty)
	// The pre-filter measurements remain available to the caller.
	assert.Len(t, result.Records, 1)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Normalize.Method = "sigmoid"

	_, err := NewCoordinator(cfg, logger.Nop{})
	require.Error(t, err)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	coordinator, err := NewCoordinator(testConfig(), logger.Nop{})
	require.NoError(t, err)

	empty := gocv.NewMat()
	defer empty.Close()

	_, err = coordinator.Run(empty)
	require.Error(t, err)
}
