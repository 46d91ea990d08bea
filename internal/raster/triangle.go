package raster

import (
	"image"
	"image/color"
	"math"

	"hl-mdl-renderer/internal/mathutil"
)

// Vertex is a projected vertex: pixel coordinates, view depth and texture
// coordinates with v = 0 at the top row.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Blend selects how a triangle's texels combine with the frame buffer.
type Blend int

const (
	// Opaque writes depth-tested texels and discards nearly transparent ones.
	Opaque Blend = iota
	// Additive adds lit texels onto the buffer without touching depth.
	Additive
)

// Material describes how one triangle is colored.
type Material struct {
	Texture    *image.NRGBA
	Fallback   color.NRGBA // used when Texture is nil
	Blend      Blend
	Filter     Filter
	FullBright bool // ignore lighting
}

// alphaCutoff is the texel alpha below which opaque triangles discard.
const alphaCutoff = 8

// setup is the per-triangle state shared by both blend modes.
type setup struct {
	v                      [3]Vertex
	minX, maxX, minY, maxY int
	invDet                 float64
	dy12, dx21, dy20, dx02 float64
	shade                  float64
}

func newSetup(fb *FrameBuffer, v [3]Vertex, mat *Material, light *Light) (setup, bool) {
	s := setup{v: v}

	e1 := mathutil.Vec3{v[1].X - v[0].X, v[1].Y - v[0].Y, v[1].Z - v[0].Z}
	e2 := mathutil.Vec3{v[2].X - v[0].X, v[2].Y - v[0].Y, v[2].Z - v[0].Z}
	n := e1.Cross(e2)
	if n.Len() < 1e-8 {
		return s, false
	}
	s.shade = 1
	if !mat.FullBright {
		s.shade = light.Intensity(n.Normalize())
	}

	s.minX = max(int(math.Min(math.Min(v[0].X, v[1].X), v[2].X)), 0)
	s.maxX = min(int(math.Max(math.Max(v[0].X, v[1].X), v[2].X))+1, fb.Width-1)
	s.minY = max(int(math.Min(math.Min(v[0].Y, v[1].Y), v[2].Y)), 0)
	s.maxY = min(int(math.Max(math.Max(v[0].Y, v[1].Y), v[2].Y))+1, fb.Height-1)
	if s.minX >= s.maxX || s.minY >= s.maxY {
		return s, false
	}

	det := (v[1].Y-v[2].Y)*(v[0].X-v[2].X) + (v[2].X-v[1].X)*(v[0].Y-v[2].Y)
	if det > -1e-8 && det < 1e-8 {
		return s, false
	}
	s.invDet = 1.0 / det
	s.dy12 = v[1].Y - v[2].Y
	s.dx21 = v[2].X - v[1].X
	s.dy20 = v[2].Y - v[0].Y
	s.dx02 = v[0].X - v[2].X
	return s, true
}

// weights returns the barycentric weights of pixel (sx, sy) and whether the
// pixel is inside the triangle.
func (s *setup) weights(sx, sy int) (float64, float64, float64, bool) {
	dsx := float64(sx) - s.v[2].X
	dsy := float64(sy) - s.v[2].Y
	w0 := (s.dy12*dsx + s.dx21*dsy) * s.invDet
	w1 := (s.dy20*dsx + s.dx02*dsy) * s.invDet
	w2 := 1.0 - w0 - w1
	inside := w0 >= -0.001 && w1 >= -0.001 && w2 >= -0.001
	return w0, w1, w2, inside
}

func (s *setup) texel(mat *Material, w0, w1, w2 float64) (r, g, b, a uint8) {
	if mat.Texture == nil {
		c := mat.Fallback
		return c.R, c.G, c.B, c.A
	}
	u := w0*s.v[0].U + w1*s.v[1].U + w2*s.v[2].U
	v := w0*s.v[0].V + w1*s.v[1].V + w2*s.v[2].V
	return SampleTexture(mat.Texture, u, v, mat.Filter)
}

// DrawTriangle rasterizes one flat-shaded triangle. Lighting is per face and
// the inner loop does not allocate.
func (fb *FrameBuffer) DrawTriangle(v [3]Vertex, mat *Material, light *Light) {
	s, ok := newSetup(fb, v, mat, light)
	if !ok {
		return
	}
	for sy := s.minY; sy <= s.maxY; sy++ {
		rowOff := sy * fb.Width
		for sx := s.minX; sx <= s.maxX; sx++ {
			w0, w1, w2, inside := s.weights(sx, sy)
			if !inside {
				continue
			}
			idx := rowOff + sx
			z := w0*v[0].Z + w1*v[1].Z + w2*v[2].Z
			if mat.Blend == Opaque && z <= fb.ZBuf[idx] {
				continue
			}

			cr, cg, cb, ca := s.texel(mat, w0, w1, w2)
			if ca < alphaCutoff {
				continue
			}
			fr, fg, ffb := light.Shade(cr, cg, cb, s.shade)

			px := idx * 4
			if mat.Blend == Additive {
				fb.Color[px] = clamp255(float64(fb.Color[px]) + fr)
				fb.Color[px+1] = clamp255(float64(fb.Color[px+1]) + fg)
				fb.Color[px+2] = clamp255(float64(fb.Color[px+2]) + ffb)
				// Dark additive texels stay transparent.
				if a := clamp255(fr*0.299 + fg*0.587 + ffb*0.114); a > fb.Color[px+3] {
					fb.Color[px+3] = a
				}
				continue
			}

			fb.ZBuf[idx] = z
			fb.Color[px] = clamp255(fr)
			fb.Color[px+1] = clamp255(fg)
			fb.Color[px+2] = clamp255(ffb)
			fb.Color[px+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
