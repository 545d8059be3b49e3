package measure

import (
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Grey levels used when quantizing [0,1] intensities for co-occurrence
// counting. Small objects do not support finer binning.
const glcmLevels = 8

// Pixel-pair offsets (row, col) for angles 0, 45, 90 and 135 degrees at
// distance 1, matching the usual texture-analysis convention.
var glcmOffsets = [4][2]int{{0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// textureFeatures computes GLCM statistics for one object over its bounding
// box. Both pixels of a pair must carry the object's label; the matrix is
// accumulated symmetrically and normalized per offset, and features are
// averaged across the four offsets.
func textureFeatures(labels, intensity gocv.Mat, id int, acc *accumulator) *TextureFeatures {
	total := TextureFeatures{}
	used := 0

	for _, offset := range glcmOffsets {
		matrix, pairs := cooccurrence(labels, intensity, id, acc, offset)
		if pairs == 0 {
			continue
		}
		f := glcmReduce(matrix)
		total.Contrast += f.Contrast
		total.Dissimilarity += f.Dissimilarity
		total.Homogeneity += f.Homogeneity
		total.Energy += f.Energy
		total.Correlation += f.Correlation
		used++
	}

	if used == 0 {
		return nil
	}

	inv := 1.0 / float64(used)
	return &TextureFeatures{
		Contrast:      total.Contrast * inv,
		Dissimilarity: total.Dissimilarity * inv,
		Homogeneity:   total.Homogeneity * inv,
		Energy:        total.Energy * inv,
		Correlation:   total.Correlation * inv,
	}
}

func cooccurrence(labels, intensity gocv.Mat, id int, acc *accumulator, offset [2]int) ([glcmLevels][glcmLevels]float64, int) {
	var matrix [glcmLevels][glcmLevels]float64
	pairs := 0

	for y := acc.minRow; y <= acc.maxRow; y++ {
		for x := acc.minCol; x <= acc.maxCol; x++ {
			if int(labels.GetIntAt(y, x)) != id {
				continue
			}
			ny, nx := y+offset[0], x+offset[1]
			if ny < 0 || ny >= labels.Rows() || nx < 0 || nx >= labels.Cols() {
				continue
			}
			if int(labels.GetIntAt(ny, nx)) != id {
				continue
			}

			i := quantize(intensity.GetFloatAt(y, x))
			j := quantize(intensity.GetFloatAt(ny, nx))
			matrix[i][j]++
			matrix[j][i]++
			pairs++
		}
	}

	if pairs > 0 {
		norm := 1.0 / float64(2*pairs)
		for i := range matrix {
			for j := range matrix[i] {
				matrix[i][j] *= norm
			}
		}
	}
	return matrix, pairs
}

func quantize(v float32) int {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return glcmLevels - 1
	}
	return int(v * glcmLevels)
}

func glcmReduce(matrix [glcmLevels][glcmLevels]float64) TextureFeatures {
	f := TextureFeatures{}

	// Marginal distribution; the matrix is symmetric so one side suffices.
	levels := make([]float64, glcmLevels)
	weights := make([]float64, glcmLevels)
	for i := range matrix {
		levels[i] = float64(i)
		for j := range matrix[i] {
			weights[i] += matrix[i][j]
		}
	}
	mean := stat.Mean(levels, weights)
	// Population variance; the weights already sum to 1.
	variance := 0.0
	for i := range levels {
		variance += weights[i] * (levels[i] - mean) * (levels[i] - mean)
	}

	asm := 0.0
	correlationSum := 0.0
	for i := range matrix {
		for j := range matrix[i] {
			p := matrix[i][j]
			d := float64(i - j)
			f.Contrast += p * d * d
			f.Dissimilarity += p * math.Abs(d)
			f.Homogeneity += p / (1 + d*d)
			asm += p * p
			correlationSum += p * (float64(i) - mean) * (float64(j) - mean)
		}
	}
	f.Energy = math.Sqrt(asm)

	if variance > 0 {
		f.Correlation = correlationSum / variance
	} else {
		// Constant region: perfectly correlated by convention.
		f.Correlation = 1
	}
	return f
}
