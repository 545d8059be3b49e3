// Package pipeline wires the processing stages together: denoise, normalize,
// segment, measure, filter. Each run is stateless and synchronous; the only
// state a Coordinator carries is its configuration and logger.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"labelpipe/internal/config"
	"labelpipe/internal/denoise"
	"labelpipe/internal/imgio"
	"labelpipe/internal/logger"
	"labelpipe/internal/measure"
	"labelpipe/internal/normalize"
	"labelpipe/internal/regionfilter"
	"labelpipe/internal/segment"
)

// Result carries everything a run produces. When Empty is true the filter
// matched nothing: Labels is not populated and Annotations is nil, but
// Records still holds the pre-filter measurements.
type Result struct {
	RunID       string
	Labels      gocv.Mat
	Records     map[int]measure.ObjectRecord
	Annotations []regionfilter.Annotation
	Empty       bool
}

// Close releases the label map. Empty results never allocated one.
func (r *Result) Close() {
	if !r.Empty {
		r.Labels.Close()
	}
}

type Coordinator struct {
	cfg *config.Config
	log logger.Logger
}

func NewCoordinator(cfg *config.Config, log logger.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Coordinator{cfg: cfg, log: log}, nil
}

// Run executes the full pipeline on a float32 intensity Mat. The input is
// owned by the caller and never modified.
func (c *Coordinator) Run(src gocv.Mat) (*Result, error) {
	if err := imgio.ValidateMat(src, "pipeline"); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	c.log.Info("Pipeline", "run started", map[string]interface{}{
		"run_id": runID,
		"size":   fmt.Sprintf("%dx%d", src.Cols(), src.Rows()),
	})

	denoiseMethod, err := c.cfg.DenoiseMethod()
	if err != nil {
		return nil, err
	}
	smoothed, err := denoise.Apply(src, denoiseMethod, c.cfg.DenoiseParams())
	if err != nil {
		return nil, fmt.Errorf("denoising failed: %w", err)
	}
	defer smoothed.Close()

	normalizeMethod, err := c.cfg.NormalizeMethod()
	if err != nil {
		return nil, err
	}
	normalized, err := normalize.Apply(smoothed, normalizeMethod)
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}
	defer normalized.Close()

	segmentMethod, err := c.cfg.SegmentMethod()
	if err != nil {
		return nil, err
	}
	labels, err := segment.Apply(normalized, segmentMethod, c.cfg.SegmentParams())
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	defer labels.Close()

	records, err := measure.Measure(labels, &normalized, measure.Options{
		ComputeTexture: c.cfg.Measure.Texture,
		TextureMinArea: c.cfg.Measure.TextureMinArea,
	})
	if err != nil {
		return nil, fmt.Errorf("measurement failed: %w", err)
	}

	c.log.Debug("Pipeline", "objects measured", map[string]interface{}{
		"run_id":  runID,
		"objects": len(records),
	})

	bounds := regionfilter.AreaRange{Min: c.cfg.Filter.MinArea, Max: c.cfg.Filter.MaxArea}
	filtered, annotations, err := regionfilter.ByArea(labels, records, bounds)
	if errors.Is(err, regionfilter.ErrEmptyResult) {
		filtered.Close()
		c.log.Warning("Pipeline", "no objects after filtering", map[string]interface{}{
			"run_id":   runID,
			"measured": len(records),
		})
		return &Result{RunID: runID, Records: records, Empty: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filtering failed: %w", err)
	}

	c.log.Info("Pipeline", "run completed", map[string]interface{}{
		"run_id":      runID,
		"objects":     len(annotations),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return &Result{
		RunID:       runID,
		Labels:      filtered,
		Records:     records,
		Annotations: annotations,
	}, nil
}
