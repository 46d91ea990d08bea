package raster

import (
	"math"

	"hl-mdl-renderer/internal/mathutil"
)

// Light is the studio lighting model: a constant ambient term plus one
// directional shade light with wrapped falloff, so faces turned slightly away
// from the light still receive part of it. Levels are on the 0-255 scale the
// format's tools use.
type Light struct {
	// Dir is the direction the light travels, in view space (Y up, camera
	// looking down -Z).
	Dir     mathutil.Vec3
	Ambient float64
	Shade   float64
	// Lambert widens the lit hemisphere. 1 is plain cosine falloff.
	Lambert float64
	Gamma   float64
}

// DefaultLight lights the model from above, slightly to the right and in
// front of the camera.
func DefaultLight() Light {
	return Light{
		Dir:     mathutil.Vec3{-0.35, -0.8, -0.5}.Normalize(),
		Ambient: 96,
		Shade:   160,
		Lambert: 1.5,
		Gamma:   2.2,
	}
}

// Intensity returns the light level in [0,1] for a unit face normal. Faces
// are lit on both sides, so normals pointing away from the camera are
// flipped first.
func (l *Light) Intensity(normal mathutil.Vec3) float64 {
	if normal[2] < 0 {
		normal = normal.Scale(-1)
	}
	cos := min(normal.Dot(l.Dir), 1)
	wrap := max(l.Lambert, 1)
	cos = (cos + wrap - 1) / wrap

	illum := l.Ambient + l.Shade
	if cos > 0 {
		illum -= l.Shade * cos
	}
	return math.Min(math.Max(illum, 0), 255) / 255
}

// Shade scales an sRGB texel by k in linear space and encodes it back. The
// results are in [0,255] before rounding.
func (l *Light) Shade(r, g, b uint8, k float64) (float64, float64, float64) {
	inv := 1 / l.Gamma
	enc := func(c uint8) float64 {
		return math.Pow(math.Min(srgbToLinear[c]*k, 1), inv) * 255
	}
	return enc(r), enc(g), enc(b)
}

var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = math.Pow(float64(i)/255, 2.2)
	}
}
