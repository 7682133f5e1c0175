package sdruntime

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Image conversion errors
var (
	ErrImageInvalidSize     = errors.New("sdruntime: invalid image dimensions")
	ErrImageInvalidChannels = errors.New("sdruntime: unsupported channel count")
)

// ImageFromPixels wraps interleaved 8-bit pixels, as returned by
// stable-diffusion.cpp, into an RGBA image. channels must be 3 (RGB) or 4 (RGBA).
func ImageFromPixels(pixels []byte, width, height, channels int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d", ErrImageInvalidSize, width, height)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d", ErrImageInvalidChannels, channels)
	}

	expectedLen := width * height * channels
	if len(pixels) != expectedLen {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%dx%d, got %d",
			ErrImageInvalidSize, expectedLen, width, height, channels, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if channels == 4 {
		copy(img.Pix, pixels)
		return img, nil
	}

	for src, dst := 0, 0; src < len(pixels); src, dst = src+3, dst+4 {
		img.Pix[dst] = pixels[src]
		img.Pix[dst+1] = pixels[src+1]
		img.Pix[dst+2] = pixels[src+2]
		img.Pix[dst+3] = 0xFF
	}
	return img, nil
}

// Conform returns img unchanged when it already measures width x height,
// otherwise a CatmullRom-scaled copy of that size.
func Conform(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
