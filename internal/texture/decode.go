// Package texture expands palette textures into RGBA images and writes them
// out in common image formats.
package texture

import (
	"image"

	"hl-mdl-renderer/internal/binreader"
	"hl-mdl-renderer/internal/mdl"
)

// Decode expands t's palette-index pixels into an NRGBA image. The palette
// follows the index bytes directly. For masked textures every pixel whose
// color equals palette entry 255 becomes fully transparent black; all other
// pixels are opaque.
func Decode(data []byte, t mdl.Texture) (*image.NRGBA, error) {
	w, h := int(t.Width), int(t.Height)
	start := int(t.Index)
	n := w * h
	if w < 0 || h < 0 || start < 0 || start+n+mdl.PaletteSize > len(data) {
		return nil, &binreader.OutOfBoundsError{
			Field:  "texture " + t.Name,
			Offset: start,
			Size:   n + mdl.PaletteSize,
			Len:    len(data),
		}
	}
	indices := data[start : start+n]
	pal := data[start+n : start+n+mdl.PaletteSize]

	masked := t.Masked()
	key := [3]byte{pal[255*3], pal[255*3+1], pal[255*3+2]}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range indices {
		p := int(c) * 3
		rgb := [3]byte{pal[p], pal[p+1], pal[p+2]}
		if masked && rgb == key {
			continue // Pix is already zeroed
		}
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = rgb[0], rgb[1], rgb[2], 255
	}
	return img, nil
}
