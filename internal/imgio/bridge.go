package imgio

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// GrayMatFromImage converts a decoded image into a single-channel float32 Mat
// with intensities in [0,1]. Color inputs collapse to luminance.
func GrayMatFromImage(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	rows := bounds.Dy()
	cols := bounds.Dx()
	if rows == 0 || cols == 0 {
		return gocv.NewMat(), fmt.Errorf("image has zero dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			// RGBA returns 16-bit premultiplied channels.
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			mat.SetFloatAt(y, x, float32(lum/65535.0))
		}
	}
	return mat, nil
}

// MatToGrayImage renders a float32 Mat in [0,1] back into an 8-bit grayscale
// image for saving or display by external collaborators.
func MatToGrayImage(mat gocv.Mat) (*image.Gray, error) {
	if err := ValidateMat(mat, "MatToGrayImage"); err != nil {
		return nil, err
	}

	rows := mat.Rows()
	cols := mat.Cols()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := mat.GetFloatAt(y, x)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*255.0 + 0.5)})
		}
	}
	return img, nil
}

// ToUint8 rescales a float32 Mat in [0,1] to an 8-bit Mat. Several OpenCV
// routines (Otsu, adaptive threshold, CLAHE, non-local means) only accept
// 8-bit input.
func ToUint8(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, gocv.MatTypeCV8U, 255.0, 0)
	return dst
}

// ToFloat rescales an 8-bit Mat back into a float32 Mat in [0,1].
func ToFloat(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, gocv.MatTypeCV32F, 1.0/255.0, 0)
	return dst
}
