package storage

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the webp decoder
)

// ImageProcessor decodes uploaded pictures and derives smaller renditions.
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates an ImageProcessor encoding JPEG at the given quality (1-100).
func NewImageProcessor(quality int) *ImageProcessor {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	return &ImageProcessor{quality: quality}
}

// Decode reads a JPEG, PNG, GIF or WebP picture, applying the EXIF orientation.
func (p *ImageProcessor) Decode(content io.Reader) (image.Image, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Fit scales img down into a maxWidth x maxHeight box and encodes it as JPEG.
// Pictures already inside the box are re-encoded without upscaling.
func (p *ImageProcessor) Fit(img image.Image, maxWidth, maxHeight int) (*bytes.Buffer, error) {
	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}

// Thumbnail crops img to a centered square of the given size, as avatars are displayed.
func (p *ImageProcessor) Thumbnail(img image.Image, size int) (*bytes.Buffer, error) {
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
