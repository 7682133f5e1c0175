package sdruntime

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestImageFromPixels_RGB(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 10, 20, 30,
	}
	img, err := ImageFromPixels(pixels, 2, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[image.Point]color.RGBA{
		{0, 0}: {255, 0, 0, 255},
		{1, 0}: {0, 255, 0, 255},
		{0, 1}: {0, 0, 255, 255},
		{1, 1}: {10, 20, 30, 255},
	}
	for pt, c := range want {
		if got := img.RGBAAt(pt.X, pt.Y); got != c {
			t.Errorf("pixel %v = %v, want %v", pt, got, c)
		}
	}
}

func TestImageFromPixels_RGBA(t *testing.T) {
	pixels := bytes.Repeat([]byte{1, 2, 3, 4}, 4)
	img, err := ImageFromPixels(pixels, 2, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestImageFromPixels_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		pixels   []byte
		w, h, ch int
		want     error
	}{
		{"zero width", nil, 0, 2, 3, ErrImageInvalidSize},
		{"short buffer", make([]byte, 5), 2, 2, 3, ErrImageInvalidSize},
		{"grayscale", make([]byte, 4), 2, 2, 1, ErrImageInvalidChannels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImageFromPixels(tt.pixels, tt.w, tt.h, tt.ch)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestConform(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))

	if got := Conform(src, 4, 4); got != image.Image(src) {
		t.Error("expected same image when size already matches")
	}

	got := Conform(src, 8, 16)
	if b := got.Bounds(); b.Dx() != 8 || b.Dy() != 16 {
		t.Errorf("Conform bounds = %v, want 8x16", b)
	}
}
