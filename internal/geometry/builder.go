// Package geometry expands triangle command streams into flat triangle lists
// and skins them with bone transforms.
package geometry

import (
	"hl-mdl-renderer/internal/binreader"
	"hl-mdl-renderer/internal/mathutil"
	"hl-mdl-renderer/internal/mdl"
)

// vertexRecord is the number of int16 values per stream vertex:
// vertex index, light, s, t.
const vertexRecord = 4

// Mesh is a non-indexed triangle list: every three consecutive vertices form
// one triangle.
type Mesh struct {
	Positions [][3]float32
	UVs       [][2]float32
	Source    []int // index into the sub-model's vertex array

	// Texture indexes Model.Textures, or -1 when the skin reference does not
	// resolve.
	Texture int
}

// Len returns the number of output vertices.
func (m *Mesh) Len() int { return len(m.Positions) }

// Indices returns the trivial index buffer 0..Len()-1.
func (m *Mesh) Indices() []uint32 {
	idx := make([]uint32, m.Len())
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// CountVertices returns how many triangle-list vertices stream expands to.
// Each run of n vertices yields n-2 triangles.
func CountVertices(stream binreader.Int16s) int {
	total := 0
	for i := 0; i < stream.Len(); {
		n := int(stream.At(i))
		if n == 0 {
			break
		}
		if n < 0 {
			n = -n
		}
		total += (n-3)*3 + 3
		i += 1 + n*vertexRecord
	}
	return total
}

// Build expands stream into a triangle list. Texture coordinates are divided
// by the texture size and v is flipped. The stream must have passed Parse
// validation.
func Build(stream binreader.Int16s, verts [][3]float32, width, height int) *Mesh {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	n := CountVertices(stream)
	b := &builder{mesh: &Mesh{
		Positions: make([][3]float32, 0, n),
		UVs:       make([][2]float32, 0, n),
		Source:    make([]int, 0, n),
		Texture:   -1,
	}}

	for i := 0; i < stream.Len(); {
		count := int(stream.At(i))
		i++
		if count == 0 {
			break
		}
		fan := count < 0
		if fan {
			count = -count
		}

		start := b.len()
		for j := 0; j < count; j++ {
			vi := int(stream.At(i))
			s, t := float32(stream.At(i+2)), float32(stream.At(i+3))
			i += vertexRecord

			if j > 2 {
				last := b.len() - 1
				switch {
				case fan:
					b.repeat(start, last)
				case j%2 == 0:
					b.repeat(last-2, last)
				default:
					b.repeat(last, last-1)
				}
			}
			b.push(verts[vi], [2]float32{s / float32(width), 1 - t/float32(height)}, vi)
		}
	}
	return b.mesh
}

type builder struct{ mesh *Mesh }

func (b *builder) len() int { return len(b.mesh.Positions) }

func (b *builder) push(pos [3]float32, uv [2]float32, src int) {
	b.mesh.Positions = append(b.mesh.Positions, pos)
	b.mesh.UVs = append(b.mesh.UVs, uv)
	b.mesh.Source = append(b.mesh.Source, src)
}

// repeat appends copies of two already emitted vertices.
func (b *builder) repeat(i, j int) {
	m := b.mesh
	b.push(m.Positions[i], m.UVs[i], m.Source[i])
	b.push(m.Positions[j], m.UVs[j], m.Source[j])
}

// FromModel builds one mesh of a parsed model, resolving its texture through
// the given skin family.
func FromModel(m *mdl.Model, bodyPart, subModel, mesh, family int) *Mesh {
	me := m.Meshes[bodyPart][subModel][mesh]
	var w, h int
	tex := m.TextureIndex(int(me.SkinRef), family)
	if tex >= 0 && tex < len(m.Textures) {
		w, h = int(m.Textures[tex].Width), int(m.Textures[tex].Height)
	} else {
		tex = -1
	}
	out := Build(m.Stream(bodyPart, subModel, mesh), m.Vertices[bodyPart][subModel], w, h)
	out.Texture = tex
	return out
}

// Skin transforms every vertex of mesh by the world matrix of the bone that
// owns its source vertex, dividing by w when the matrix is projective.
func Skin(mesh *Mesh, vertexBones []byte, worlds []mathutil.Mat4) [][3]float32 {
	out := make([][3]float32, mesh.Len())
	for i, p := range mesh.Positions {
		m := worlds[vertexBones[mesh.Source[i]]]
		out[i] = m.MulPointW(mathutil.V3(p)).F32()
	}
	return out
}
