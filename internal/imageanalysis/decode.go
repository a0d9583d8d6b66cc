// Package imageanalysis measures images and the faces in them for
// manipulation artifacts.
package imageanalysis

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jonesrussell/veracity/internal/domain"
)

// DefaultMaxPixels caps width*height when no limit is configured.
const DefaultMaxPixels int64 = 40_000_000

// ErrTooManyPixels is wrapped in the DecodeError returned for images whose
// header declares more pixels than the limit.
var ErrTooManyPixels = errors.New("image dimensions exceed pixel limit")

// Decode decodes data in any registered format. The header is checked
// against maxPixels (DefaultMaxPixels when <= 0) before any pixel data is
// allocated. Empty, malformed or oversized input returns a
// *domain.DecodeError.
func Decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &domain.DecodeError{Err: domain.ErrEmptyInput}
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &domain.DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", &domain.DecodeError{Err: fmt.Errorf("zero-sized image %dx%d", cfg.Width, cfg.Height)}
	}
	if int64(cfg.Width) > maxPixels/int64(cfg.Height) {
		return nil, "", &domain.DecodeError{
			Err: fmt.Errorf("%w: %dx%d, limit %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels),
		}
	}

	return decodeFull(data)
}

// decodeFull runs the registered decoder, turning decoder panics on
// corrupt streams into a DecodeError.
func decodeFull(data []byte) (img image.Image, format string, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, format = nil, ""
			err = &domain.DecodeError{Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	img, format, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &domain.DecodeError{Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", &domain.DecodeError{Err: fmt.Errorf("zero-sized image %dx%d", b.Dx(), b.Dy())}
	}
	return img, format, nil
}

// EncodePNG encodes img for the model sidecar.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
