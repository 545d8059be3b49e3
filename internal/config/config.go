// Package config loads pipeline configuration from YAML files and resolves
// method names into their typed counterparts. Unknown method names fail here,
// at the boundary, so the pipeline never sees an unvalidated string.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"labelpipe/internal/denoise"
	"labelpipe/internal/normalize"
	"labelpipe/internal/segment"
)

// Config is the full pipeline configuration as it appears on disk.
type Config struct {
	Denoise struct {
		// Method is one of none, gaussian, median, bilateral, nlmeans
		Method string `yaml:"method"`

		// Sigma is the gaussian kernel width
		Sigma float64 `yaml:"sigma"`

		// KernelSize is the median window, forced odd
		KernelSize int `yaml:"kernelSize"`

		// Diameter, SigmaColor and SigmaSpace tune the bilateral filter
		Diameter   int     `yaml:"diameter"`
		SigmaColor float64 `yaml:"sigmaColor"`
		SigmaSpace float64 `yaml:"sigmaSpace"`

		// Strength is the non-local-means h parameter
		Strength float64 `yaml:"strength"`
	} `yaml:"denoise"`

	Normalize struct {
		// Method is one of min-max, percentile-clip, z-score,
		// adaptive-histogram
		Method string `yaml:"method"`
	} `yaml:"normalize"`

	Segment struct {
		// Method is one of global-threshold, local-threshold, watershed,
		// superpixel
		Method string `yaml:"method"`

		// Threshold is an intensity level in [0,1]; zero means auto
		Threshold float64 `yaml:"threshold"`

		// MinSize is the minimum object pixel count
		MinSize int `yaml:"minSize"`

		// BlockSize is the local-threshold window; zero selects the default
		BlockSize int `yaml:"blockSize"`
	} `yaml:"segment"`

	Measure struct {
		// Texture enables GLCM features
		Texture bool `yaml:"texture"`

		// TextureMinArea excludes smaller regions from texture computation
		TextureMinArea int `yaml:"textureMinArea"`
	} `yaml:"measure"`

	Filter struct {
		// MinArea and MaxArea bound the inclusive area window; MaxArea zero
		// means unbounded above
		MinArea int `yaml:"minArea"`
		MaxArea int `yaml:"maxArea"`
	} `yaml:"filter"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Denoise.Method = "none"
	cfg.Denoise.Sigma = 1.0
	cfg.Normalize.Method = "min-max"
	cfg.Segment.Method = "global-threshold"
	cfg.Segment.MinSize = 20
	cfg.Measure.Texture = true
	cfg.Measure.TextureMinArea = 20
	return cfg
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate resolves every method name and checks numeric ranges.
func (c *Config) Validate() error {
	if _, err := c.DenoiseMethod(); err != nil {
		return err
	}
	if _, err := c.NormalizeMethod(); err != nil {
		return err
	}
	if _, err := c.SegmentMethod(); err != nil {
		return err
	}

	if c.Segment.Threshold < 0 || c.Segment.Threshold > 1 {
		return fmt.Errorf("segment.threshold must be in [0,1], got: %g", c.Segment.Threshold)
	}
	if c.Segment.MinSize < 0 {
		return fmt.Errorf("segment.minSize must not be negative, got: %d", c.Segment.MinSize)
	}
	if c.Filter.MinArea < 0 {
		return fmt.Errorf("filter.minArea must not be negative, got: %d", c.Filter.MinArea)
	}
	if c.Filter.MaxArea > 0 && c.Filter.MaxArea < c.Filter.MinArea {
		return fmt.Errorf("filter.maxArea %d is below filter.minArea %d", c.Filter.MaxArea, c.Filter.MinArea)
	}
	return nil
}

func (c *Config) DenoiseMethod() (denoise.Method, error) {
	return denoise.ParseMethod(c.Denoise.Method)
}

func (c *Config) NormalizeMethod() (normalize.Method, error) {
	return normalize.ParseMethod(c.Normalize.Method)
}

func (c *Config) SegmentMethod() (segment.Method, error) {
	return segment.ParseMethod(c.Segment.Method)
}

// DenoiseParams maps the denoise section onto its typed parameters.
func (c *Config) DenoiseParams() denoise.Params {
	return denoise.Params{
		Sigma:      c.Denoise.Sigma,
		KernelSize: c.Denoise.KernelSize,
		Diameter:   c.Denoise.Diameter,
		SigmaColor: c.Denoise.SigmaColor,
		SigmaSpace: c.Denoise.SigmaSpace,
		Strength:   c.Denoise.Strength,
	}
}

// SegmentParams maps the segment section onto its typed parameters.
func (c *Config) SegmentParams() segment.Params {
	return segment.Params{
		Threshold: c.Segment.Threshold,
		MinSize:   c.Segment.MinSize,
		BlockSize: c.Segment.BlockSize,
	}
}
