// Package mdltest writes small studio model buffers for tests. The layout is
// byte-exact; only the content is synthetic.
package mdltest

import (
	"encoding/binary"
	"math"

	"hl-mdl-renderer/internal/anim"
	"hl-mdl-renderer/internal/binreader"
)

type Bone struct {
	Name   string
	Parent int32
	Value  [6]float32
	Scale  [6]float32
}

type Controller struct {
	Bone       int32
	Type       int32
	Start, End float32
}

type Attachment struct {
	Name   string
	Bone   int32
	Origin [3]float32
}

type Hitbox struct {
	Bone  int32
	Group int32
}

// Key addresses one animated axis of a bone.
type Key struct {
	Bone int
	Axis int
}

type Sequence struct {
	Label      string
	FPS        float32
	Flags      int32
	NumFrames  int32
	MotionType int32
	MotionBone int32
	SeqGroup   int32
	Events     []Event
	Curves     map[Key]anim.Curve
}

type Event struct {
	Frame   int32
	Event   int32
	Options string
}

// Mesh holds a raw triangle command stream including its zero terminator.
type Mesh struct {
	SkinRef int32
	Stream  []int16
}

type SubModel struct {
	Name        string
	Vertices    [][3]float32
	VertexBones []byte
	Meshes      []Mesh
}

type BodyPart struct {
	Name      string
	Base      int32
	SubModels []SubModel
}

type Texture struct {
	Name    string
	Flags   int32
	Width   int32
	Height  int32
	Indices []byte
	Palette [768]byte
}

// Model describes the content of a buffer. Zero ID and Version mean the
// supported values.
type Model struct {
	ID       int32
	Version  int32
	Name     string
	Bones    []Bone
	Controls []Controller
	Attach   []Attachment
	Hitboxes []Hitbox
	Seqs     []Sequence
	Groups   []string
	Parts    []BodyPart
	Textures []Texture
	Skins    [][]int16 // [family][skinRef]

	// ShareAnim points every stored sequence at the offset block of the
	// first one instead of writing a block per sequence.
	ShareAnim bool
}

type writer struct{ b []byte }

func (w *writer) pos() int { return len(w.b) }
func (w *writer) u8(v byte) { w.b = append(w.b, v) }
func (w *writer) i16(v int16) { w.b = binary.LittleEndian.AppendUint16(w.b, uint16(v)) }
func (w *writer) i32(v int32) { w.b = binary.LittleEndian.AppendUint32(w.b, uint32(v)) }
func (w *writer) f32(v float32) { w.b = binary.LittleEndian.AppendUint32(w.b, math.Float32bits(v)) }
func (w *writer) zero(n int) { w.b = append(w.b, make([]byte, n)...) }
func (w *writer) put32(at int, v int32) { binary.LittleEndian.PutUint32(w.b[at:], uint32(v)) }
func (w *writer) put16(at int, v uint16) { binary.LittleEndian.PutUint16(w.b[at:], v) }

func (w *writer) vec3(v [3]float32) {
	for _, f := range v {
		w.f32(f)
	}
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.b = append(w.b, b...)
}

// Header field positions.
const (
	HeaderSize     = 244
	AnimRecordSize = 12

	offID           = 0
	offVersion      = 4
	offName         = 8
	offLength       = 72
	offCounts       = 140
	seqEventIndex   = 52
	seqAnimIndex    = 124
	subModelMeshIdx = 76
)

// Bytes encodes the model.
func (m Model) Bytes() []byte {
	w := &writer{}
	w.zero(HeaderSize)

	id, version := m.ID, m.Version
	if id == 0 {
		id = 1414743113
	}
	if version == 0 {
		version = 10
	}
	w.put32(offID, id)
	w.put32(offVersion, version)
	copy(w.b[offName:offName+64], m.Name)

	counts := make([]int32, 26)
	counts[0], counts[1] = int32(len(m.Bones)), int32(w.pos())
	for _, b := range m.Bones {
		w.str(b.Name, 32)
		w.i32(b.Parent)
		w.i32(0)
		for i := 0; i < 6; i++ {
			w.i32(-1)
		}
		for _, v := range b.Value {
			w.f32(v)
		}
		for _, v := range b.Scale {
			w.f32(v)
		}
	}

	counts[2], counts[3] = int32(len(m.Controls)), int32(w.pos())
	for _, c := range m.Controls {
		w.i32(c.Bone)
		w.i32(c.Type)
		w.f32(c.Start)
		w.f32(c.End)
		w.i32(0)
		w.i32(0)
	}

	counts[18], counts[19] = int32(len(m.Attach)), int32(w.pos())
	for _, a := range m.Attach {
		w.str(a.Name, 32)
		w.i32(0)
		w.i32(a.Bone)
		w.vec3(a.Origin)
		w.zero(36)
	}

	counts[4], counts[5] = int32(len(m.Hitboxes)), int32(w.pos())
	for _, h := range m.Hitboxes {
		w.i32(h.Bone)
		w.i32(h.Group)
		w.vec3([3]float32{-1, -1, -1})
		w.vec3([3]float32{1, 1, 1})
	}

	counts[6], counts[7] = int32(len(m.Seqs)), int32(w.pos())
	seqPos := make([]int, len(m.Seqs))
	for i, s := range m.Seqs {
		seqPos[i] = w.pos()
		w.str(s.Label, 32)
		w.f32(s.FPS)
		w.i32(s.Flags)
		w.zero(8)
		w.i32(int32(len(s.Events)))
		w.i32(0) // event index, patched
		w.i32(s.NumFrames)
		w.zero(8)
		w.i32(s.MotionType)
		w.i32(s.MotionBone)
		w.zero(12 + 8 + 24)
		w.i32(1)
		w.i32(0) // anim index, patched
		w.zero(24 + 4)
		w.i32(s.SeqGroup)
		w.zero(16)
	}

	groups := m.Groups
	if len(groups) == 0 {
		groups = []string{"default"}
	}
	counts[8], counts[9] = int32(len(groups)), int32(w.pos())
	for _, g := range groups {
		w.str(g, 32)
		w.str(g, 64)
		w.zero(8)
	}

	shared := -1
	for i, s := range m.Seqs {
		w.put32(seqPos[i]+seqEventIndex, int32(w.pos()))
		for _, e := range s.Events {
			w.i32(e.Frame)
			w.i32(e.Event)
			w.i32(0)
			w.str(e.Options, 64)
		}
		if s.SeqGroup != 0 {
			continue
		}
		if m.ShareAnim && shared >= 0 {
			w.put32(seqPos[i]+seqAnimIndex, int32(shared))
			continue
		}
		base := w.pos()
		shared = base
		w.put32(seqPos[i]+seqAnimIndex, int32(base))
		w.zero(len(m.Bones) * AnimRecordSize)
		for b := range m.Bones {
			for axis := 0; axis < 6; axis++ {
				c, ok := s.Curves[Key{b, axis}]
				if !ok {
					continue
				}
				w.put16(base+b*AnimRecordSize+axis*2, uint16(w.pos()-(base+b*AnimRecordSize)))
				for _, r := range c {
					w.u8(r.Valid)
					w.u8(r.Total)
					for _, v := range r.Samples {
						w.i16(v)
					}
				}
			}
		}
	}

	counts[10], counts[11] = int32(len(m.Textures)), int32(w.pos())
	texPos := make([]int, len(m.Textures))
	for i, t := range m.Textures {
		w.str(t.Name, 64)
		w.i32(t.Flags)
		w.i32(t.Width)
		w.i32(t.Height)
		texPos[i] = w.pos()
		w.i32(0)
	}
	if len(m.Textures) == 0 {
		counts[11] = int32(w.pos())
	}

	counts[15] = int32(w.pos())
	if len(m.Skins) > 0 {
		counts[13] = int32(len(m.Skins[0]))
		counts[14] = int32(len(m.Skins))
	}
	for _, fam := range m.Skins {
		for _, v := range fam {
			w.i16(v)
		}
	}

	counts[12] = int32(w.pos())
	for i, t := range m.Textures {
		w.put32(texPos[i], int32(w.pos()))
		w.b = append(w.b, t.Indices...)
		w.b = append(w.b, t.Palette[:]...)
	}

	// Body parts, sub-models and raw arrays. Triangle streams go last so an
	// unterminated stream runs into the end of the buffer.
	counts[16], counts[17] = int32(len(m.Parts)), int32(w.pos())
	partPos := make([]int, len(m.Parts))
	for i, p := range m.Parts {
		w.str(p.Name, 64)
		w.i32(int32(len(p.SubModels)))
		w.i32(p.Base)
		partPos[i] = w.pos()
		w.i32(0)
	}

	type meshRef struct {
		pos    int
		stream []int16
	}
	var streams []meshRef
	for i, p := range m.Parts {
		w.put32(partPos[i], int32(w.pos()))
		subPos := make([]int, len(p.SubModels))
		for j, sm := range p.SubModels {
			subPos[j] = w.pos()
			w.str(sm.Name, 64)
			w.i32(0)
			w.f32(1)
			w.i32(int32(len(sm.Meshes)))
			w.i32(0) // mesh index
			w.i32(int32(len(sm.Vertices)))
			w.i32(0) // vert info index
			w.i32(0) // vert index
			w.zero(20)
		}
		for j, sm := range p.SubModels {
			w.put32(subPos[j]+subModelMeshIdx, int32(w.pos()))
			for _, mesh := range sm.Meshes {
				w.i32(0)
				streams = append(streams, meshRef{pos: w.pos(), stream: mesh.Stream})
				w.i32(0) // tri index
				w.i32(mesh.SkinRef)
				w.zero(8)
			}
			w.put32(subPos[j]+subModelMeshIdx+8, int32(w.pos()))
			w.b = append(w.b, sm.VertexBones...)
			w.put32(subPos[j]+subModelMeshIdx+12, int32(w.pos()))
			for _, v := range sm.Vertices {
				w.vec3(v)
			}
		}
	}
	for _, s := range streams {
		w.put32(s.pos, int32(w.pos()))
		for _, v := range s.stream {
			w.i16(v)
		}
	}

	w.put32(offLength, int32(w.pos()))
	for i, c := range counts {
		w.put32(offCounts+i*4, c)
	}
	return w.b
}

// Int16s encodes v as a little-endian triangle stream view.
func Int16s(v []int16) binreader.Int16s {
	b := make([]byte, 0, len(v)*2)
	for _, x := range v {
		b = binary.LittleEndian.AppendUint16(b, uint16(x))
	}
	return binreader.Int16s(b)
}
