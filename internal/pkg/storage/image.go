package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

const jpegQuality = 80

// ImageProcessor handles image processing like resizing.
type ImageProcessor struct{}

// NewImageProcessor creates a new ImageProcessor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// GenerateThumbnail creates a thumbnail from the source image.
// maxWidth and maxHeight define the bounding box for the thumbnail.
// It returns the thumbnail content as a JPEG.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	return p.FitJPEG(content, maxWidth, maxHeight)
}

// FitJPEG scales the image down to fit the box, keeping the aspect ratio,
// and re-encodes it as JPEG. Smaller images keep their size.
func (p *ImageProcessor) FitJPEG(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}

// IsImage reports whether the content decodes as a supported image.
func (p *ImageProcessor) IsImage(content io.Reader) bool {
	_, _, err := image.DecodeConfig(content)
	return err == nil
}
