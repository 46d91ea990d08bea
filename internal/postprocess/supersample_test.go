package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func TestDownsampleSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	if got := Downsample(img, 2).Bounds(); got != image.Rect(0, 0, 32, 16) {
		t.Errorf("Bounds = %v", got)
	}
	if Downsample(img, 1) != img {
		t.Error("factor 1 should return the input")
	}
}

func TestDownsampleNoHalo(t *testing.T) {
	// Left half opaque red, right half transparent black.
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	out := Downsample(img, 4)
	for x := 0; x < out.Bounds().Dx(); x++ {
		c := out.NRGBAAt(x, 2)
		if c.A > 16 && c.R < 240 {
			t.Errorf("x=%d: %v darkened at the edge", x, c)
		}
	}
	if c := out.NRGBAAt(0, 0); c.A != 255 || c.R != 255 {
		t.Errorf("interior = %v", c)
	}
}
