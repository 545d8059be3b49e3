package measure

// ObjectRecord is the per-object feature bundle derived from one positive
// label. Geometric fields are always populated; the optional groups are nil
// when their inputs were not supplied, which is distinct from a true zero.
type ObjectRecord struct {
	Label int

	// Geometry, in source pixel units. Centroid is (row, col).
	Area            int
	Perimeter       float64
	Centroid        [2]float64
	MinRow, MinCol  int
	MaxRow, MaxCol  int // inclusive
	MajorAxisLength float64
	MinorAxisLength float64
	Eccentricity    float64
	Solidity        float64
	// Orientation is the angle in radians between the major axis and the
	// column axis, in (-pi/2, pi/2].
	Orientation float64

	// Intensity is nil when no intensity image was supplied.
	Intensity *IntensityFeatures
	// Texture is nil without an intensity image, and for regions too small
	// for meaningful co-occurrence statistics.
	Texture *TextureFeatures
}

// IntensityFeatures summarizes source intensities under one label.
type IntensityFeatures struct {
	Mean       float64
	Min        float64
	Max        float64
	Integrated float64
}

// TextureFeatures are grey-level co-occurrence statistics averaged over the
// four standard offsets (0, 45, 90, 135 degrees at distance 1).
type TextureFeatures struct {
	Contrast      float64
	Dissimilarity float64
	Homogeneity   float64
	Energy        float64
	Correlation   float64
}

// Options tunes measurement.
type Options struct {
	// ComputeTexture enables GLCM features when an intensity image is given.
	ComputeTexture bool
	// TextureMinArea excludes small regions from texture computation, where
	// co-occurrence statistics are ill-defined. Zero selects the default.
	TextureMinArea int
}

const defaultTextureMinArea = 20

// DefaultOptions computes texture for regions of at least 20 pixels.
func DefaultOptions() Options {
	return Options{ComputeTexture: true, TextureMinArea: defaultTextureMinArea}
}

func (o Options) textureMinArea() int {
	if o.TextureMinArea <= 0 {
		return defaultTextureMinArea
	}
	return o.TextureMinArea
}
