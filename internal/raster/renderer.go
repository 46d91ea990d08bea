// Package raster is an offline software renderer for posed models. It is
// used for preview images and has no GPU dependency.
package raster

import (
	"image"
	"image/color"
	"math"

	"hl-mdl-renderer/internal/geometry"
	"hl-mdl-renderer/internal/mathutil"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/skeleton"
	"hl-mdl-renderer/internal/texture"
)

// Mesh is a posed, non-indexed triangle list ready to draw.
type Mesh struct {
	Positions [][3]float32
	UVs       [][2]float32 // v = 0 at the bottom, as produced by geometry.Build
	Texture   int          // index for the Resolver, -1 for none
	Flags     int32        // mdl.Texture* flags
}

// Options controls Render.
type Options struct {
	Size        int // output edge in pixels
	Supersample int // render at Size*Supersample; the caller downsamples
	Yaw, Pitch  float64
	Filter      Filter
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	return o
}

var defaultColor = color.NRGBA{160, 160, 170, 255}

// PoseMeshes skins every mesh of the sub-models selected by body with pose
// and resolves textures through the skin family.
func PoseMeshes(m *mdl.Model, pose *skeleton.Pose, body, family int) []Mesh {
	var out []Mesh
	for bp, sm := range m.BodySelection(body) {
		if sm >= len(m.Meshes[bp]) {
			continue
		}
		for i := range m.Meshes[bp][sm] {
			g := geometry.FromModel(m, bp, sm, i, family)
			if g.Len() == 0 {
				continue
			}
			mesh := Mesh{
				Positions: geometry.Skin(g, m.VertexBones[bp][sm], pose.World),
				UVs:       g.UVs,
				Texture:   g.Texture,
			}
			if g.Texture >= 0 {
				mesh.Flags = m.Textures[g.Texture].Flags
			}
			out = append(out, mesh)
		}
	}
	return out
}

// Render draws meshes with an orthographic camera fitted to their bounds.
// The returned image is Size*Supersample pixels square.
func Render(meshes []Mesh, textures texture.Resolver, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	renderSize := opts.Size * opts.Supersample
	fb := NewFrameBuffer(renderSize, renderSize)

	R := mathutil.ViewMatrix(opts.Yaw, opts.Pitch)
	center, span, ok := bounds(meshes, R)
	if !ok {
		return fb.Image()
	}

	margin := 16 * opts.Supersample
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2
	light := DefaultLight()

	// Opaque meshes first so additive ones blend over finished depth.
	for _, pass := range []Blend{Opaque, Additive} {
		for _, mesh := range meshes {
			mat := material(mesh, textures, opts.Filter)
			if mat.Blend != pass {
				continue
			}
			for i := 0; i+2 < len(mesh.Positions); i += 3 {
				var tri [3]Vertex
				for k := 0; k < 3; k++ {
					p := mesh.Positions[i+k]
					t := R.MulVec3(mathutil.V3(p))
					uv := mesh.UVs[i+k]
					tri[k] = Vertex{
						X: (t[0]-center[0])*scale + half,
						Y: -(t[1]-center[1])*scale + half,
						Z: t[2],
						U: float64(uv[0]),
						V: 1 - float64(uv[1]),
					}
				}
				fb.DrawTriangle(tri, &mat, &light)
			}
		}
	}
	return fb.Image()
}

// bounds returns the view-space center and the larger of the x/y extents.
func bounds(meshes []Mesh, R mathutil.Mat3) (mathutil.Vec3, float64, bool) {
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	n := 0
	for _, m := range meshes {
		for _, p := range m.Positions {
			t := R.MulVec3(mathutil.V3(p))
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], t[k])
				hi[k] = math.Max(hi[k], t[k])
			}
			n++
		}
	}
	if n == 0 {
		return mathutil.Vec3{}, 0, false
	}
	span := math.Max(math.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	return lo.Add(hi).Scale(0.5), span, true
}

func material(mesh Mesh, textures texture.Resolver, f Filter) Material {
	mat := Material{Fallback: defaultColor, Filter: f}
	if textures != nil && mesh.Texture >= 0 {
		mat.Texture = textures.Resolve(mesh.Texture)
	}
	if mat.Texture != nil {
		mat.Fallback = averageColor(mat.Texture)
	}
	if mesh.Flags&mdl.TextureAdditive != 0 {
		mat.Blend = Additive
	}
	mat.FullBright = mesh.Flags&mdl.TextureFullBright != 0
	return mat
}

func averageColor(tex *image.NRGBA) color.NRGBA {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return defaultColor
	}

	var sumR, sumG, sumB float64
	for y := 0; y < h; y++ {
		off := y * tex.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return color.NRGBA{uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255}
}
