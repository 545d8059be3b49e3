package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelpipe/internal/normalize"
	"labelpipe/internal/segment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	m, err := cfg.NormalizeMethod()
	require.NoError(t, err)
	assert.Equal(t, normalize.MinMax, m)

	s, err := cfg.SegmentMethod()
	require.NoError(t, err)
	assert.Equal(t, segment.GlobalThreshold, s)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
denoise:
  method: gaussian
  sigma: 2.5
normalize:
  method: percentile-clip
segment:
  method: watershed
  threshold: 0.4
  minSize: 50
filter:
  minArea: 30
  maxArea: 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gaussian", cfg.Denoise.Method)
	assert.Equal(t, 2.5, cfg.DenoiseParams().Sigma)
	assert.Equal(t, "percentile-clip", cfg.Normalize.Method)
	assert.Equal(t, 0.4, cfg.SegmentParams().Threshold)
	assert.Equal(t, 50, cfg.SegmentParams().MinSize)
	assert.Equal(t, 30, cfg.Filter.MinArea)
	assert.Equal(t, 500, cfg.Filter.MaxArea)

	// Sections the file omits keep defaults.
	assert.True(t, cfg.Measure.Texture)
	assert.Equal(t, 20, cfg.Measure.TextureMinArea)
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	path := writeConfig(t, `
segment:
  method: magic-wand
`)

	_, err := Load(path)
	require.ErrorIs(t, err, segment.ErrUnknownMethod)
}

func TestLoadRejectsUnknownNormalizeMethod(t *testing.T) {
	path := writeConfig(t, `
normalize:
  method: gamma
`)

	_, err := Load(path)
	require.ErrorIs(t, err, normalize.ErrUnknownMethod)
}

func TestValidateRanges(t *testing.T) {
	cfg := Default()
	cfg.Segment.Threshold = 1.5
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Filter.MinArea = 100
	cfg.Filter.MaxArea = 50
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Filter.MaxArea = 0 // unbounded above is fine
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
