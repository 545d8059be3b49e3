package imgio

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

// ImageData bundles a decoded image with its float32 working Mat, following
// the loader/processor handoff used throughout the pipeline.
type ImageData struct {
	Mat    gocv.Mat
	Width  int
	Height int
	Format string
}

func (d *ImageData) Close() {
	d.Mat.Close()
}

// Load reads a PNG, JPEG or TIFF file into grayscale float32 form.
func Load(path string) (*ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := LoadFromReader(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if data.Format == "" {
		data.Format = determineFormat(filepath.Ext(path), "")
	}
	return data, nil
}

// LoadFromReader decodes image bytes from an arbitrary reader.
func LoadFromReader(reader io.Reader) (*ImageData, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	mat, err := GrayMatFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}

	bounds := img.Bounds()
	return &ImageData{
		Mat:    mat,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

func determineFormat(extension, decoded string) string {
	if decoded != "" {
		return decoded
	}
	switch strings.ToLower(extension) {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	default:
		return "unknown"
	}
}
