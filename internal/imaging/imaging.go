// Package imaging downscales oversized item photos
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// JPEGQuality is the compression quality for re-encoded JPEG output
const JPEGQuality = 85

// MaxPixels caps the declared width*height of an image that will be decoded.
// Decoders allocate the whole bitmap from the header before reading pixel data.
const MaxPixels = 40_000_000

// ErrTooManyPixels is returned for images whose declared size exceeds MaxPixels
var ErrTooManyPixels = errors.New("image dimensions too large")

// Resizable lists the sniffed MIME types that can be decoded and downscaled
var Resizable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result contains the processed image data
type Result struct {
	Data    []byte
	MIME    string
	Resized bool
}

// Process reads image data and downscales it so neither side exceeds maxDim.
// The output keeps the input format so the stored file extension stays accurate.
// Formats other than JPEG and PNG, and images already within bounds, are returned unchanged.
func Process(r io.Reader, maxDim int) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	// Sniff actual MIME type from bytes (not trusting client headers)
	detected := http.DetectContentType(data)
	if maxDim <= 0 || !Resizable[detected] {
		return &Result{Data: data, MIME: detected}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return &Result{Data: data, MIME: detected}, nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	scaled := downscale(img, maxDim)

	var buf bytes.Buffer
	switch detected {
	case "image/png":
		err = png.Encode(&buf, scaled)
	default:
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", detected, err)
	}

	return &Result{Data: buf.Bytes(), MIME: detected, Resized: true}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses Catmull-Rom interpolation and preserves the aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
