package imgio

import (
	"fmt"

	"gocv.io/x/gocv"
)

type ValidationError struct {
	Context string
	Field   string
	Value   interface{}
	Reason  string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s value %v - %s", ve.Context, ve.Field, ve.Value, ve.Reason)
}

// ValidateMat rejects Mats that no pipeline stage can work on.
func ValidateMat(mat gocv.Mat, context string) error {
	if mat.Empty() {
		return &ValidationError{
			Context: context,
			Field:   "image",
			Value:   "empty",
			Reason:  "matrix contains no data",
		}
	}

	rows := mat.Rows()
	cols := mat.Cols()

	if rows <= 0 || cols <= 0 {
		return &ValidationError{
			Context: context,
			Field:   "dimensions",
			Value:   fmt.Sprintf("%dx%d", cols, rows),
			Reason:  "width and height must be positive",
		}
	}

	return nil
}

// ValidateSameShape is used wherever a label map or mask must align with its
// source intensity image.
func ValidateSameShape(a, b gocv.Mat, context string) error {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return &ValidationError{
			Context: context,
			Field:   "dimensions",
			Value:   fmt.Sprintf("%dx%d vs %dx%d", a.Cols(), a.Rows(), b.Cols(), b.Rows()),
			Reason:  "arrays must have identical spatial shape",
		}
	}
	return nil
}
