package mdl_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"hl-mdl-renderer/internal/anim"
	"hl-mdl-renderer/internal/binreader"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/mdl/mdltest"
)

func parseSimple(t *testing.T) *mdl.Model {
	t.Helper()
	m, err := mdl.Parse(mdltest.Simple().Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestParseHeader(t *testing.T) {
	data := mdltest.Simple().Bytes()
	m, err := mdl.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := m.Header
	if h.ID != mdl.Ident || h.Version != mdl.Version {
		t.Errorf("id/version = %d/%d", h.ID, h.Version)
	}
	if h.Name != "test\\simple.mdl" {
		t.Errorf("Name = %q", h.Name)
	}
	if int(h.Length) != len(data) {
		t.Errorf("Length = %d, want %d", h.Length, len(data))
	}
	if h.BoneIndex != mdltest.HeaderSize {
		t.Errorf("BoneIndex = %d, want %d", h.BoneIndex, mdltest.HeaderSize)
	}
	if h.NumSkinRef != 2 || h.NumSkinFamilies != 2 {
		t.Errorf("skins = %d x %d", h.NumSkinFamilies, h.NumSkinRef)
	}
}

func TestParseSections(t *testing.T) {
	m := parseSimple(t)

	if len(m.Bones) != 2 || m.Bones[1].Name != "arm" || m.Bones[1].Parent != 0 {
		t.Fatalf("Bones = %+v", m.Bones)
	}
	if m.Bones[0].Value != [6]float32{1, 2, 3, 0, 0, 0} || m.Bones[0].Scale[3] != 0.01 {
		t.Errorf("root bone = %+v", m.Bones[0])
	}
	if m.Bones[0].BoneController[0] != -1 {
		t.Errorf("BoneController = %v", m.Bones[0].BoneController)
	}
	if len(m.BoneControllers) != 1 || m.BoneControllers[0].End != 90 {
		t.Errorf("BoneControllers = %+v", m.BoneControllers)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Name != "muzzle" || m.Attachments[0].Origin[0] != 4 {
		t.Errorf("Attachments = %+v", m.Attachments)
	}
	if len(m.Hitboxes) != 2 || m.Hitboxes[1].Group != 2 || m.Hitboxes[1].BBMax != [3]float32{1, 1, 1} {
		t.Errorf("Hitboxes = %+v", m.Hitboxes)
	}

	if len(m.Sequences) != 3 {
		t.Fatalf("Sequences = %d", len(m.Sequences))
	}
	idle := m.Sequences[0]
	if idle.Label != "idle" || idle.FPS != 10 || idle.NumFrames != 3 || !idle.Looping() || idle.NumBlends != 1 {
		t.Errorf("idle = %+v", idle)
	}
	if walk := m.Sequences[1]; walk.MotionType != mdl.MotionX|mdl.MotionZ || walk.Looping() {
		t.Errorf("walk = %+v", walk)
	}
	if !m.Sequences[2].External() || m.Sequences[0].External() {
		t.Error("External flags wrong")
	}
	if len(m.SequenceGroups) != 2 || m.SequenceGroups[1].Name != "simple01.mdl" {
		t.Errorf("SequenceGroups = %+v", m.SequenceGroups)
	}
	if len(m.Events[0]) != 1 || m.Events[0][0].Event != 5001 || m.Events[0][0].Options != "12" {
		t.Errorf("Events = %+v", m.Events)
	}

	if len(m.BodyParts) != 2 || m.BodyParts[1].Name != "head" || m.BodyParts[1].Base != 2 {
		t.Fatalf("BodyParts = %+v", m.BodyParts)
	}
	if len(m.SubModels[0]) != 1 || len(m.SubModels[1]) != 2 || m.SubModels[1][1].Name != "blank" {
		t.Errorf("SubModels = %+v", m.SubModels)
	}
	if len(m.Meshes[0][0]) != 2 || m.Meshes[0][0][1].SkinRef != 1 {
		t.Errorf("Meshes = %+v", m.Meshes)
	}
	if got := m.Vertices[0][0]; len(got) != 4 || got[3] != [3]float32{1, 1, 0} {
		t.Errorf("Vertices = %v", got)
	}
	if got := m.VertexBones[0][0]; string(got) != string([]byte{0, 0, 1, 1}) {
		t.Errorf("VertexBones = %v", got)
	}
	if len(m.Vertices[1][1]) != 0 || len(m.Meshes[1][1]) != 0 {
		t.Error("blank sub-model has geometry")
	}

	if len(m.Textures) != 2 || m.Textures[1].Name != "mask.bmp" || !m.Textures[1].Masked() || m.Textures[0].Masked() {
		t.Errorf("Textures = %+v", m.Textures)
	}
	if m.Textures[0].Index != m.Header.TextureDataIndex {
		t.Errorf("texture 0 data at %d, header says %d", m.Textures[0].Index, m.Header.TextureDataIndex)
	}
}

func TestParseTriangleStreams(t *testing.T) {
	m := parseSimple(t)
	s := m.Stream(0, 0, 0)
	if s.Len() != 18 {
		t.Fatalf("stream length = %d, want 18 (header, 4 vertices, terminator)", s.Len())
	}
	if s.At(0) != 4 || s.At(17) != 0 {
		t.Errorf("stream = %d ... %d", s.At(0), s.At(17))
	}
	if fan := m.Stream(0, 0, 1); fan.At(0) != -5 {
		t.Errorf("fan header = %d", fan.At(0))
	}
}

func TestParseAnimations(t *testing.T) {
	m := parseSimple(t)
	if m.AnimOffsets[2] != nil {
		t.Error("external sequence has offsets")
	}
	if len(m.AnimOffsets[0]) != 2 {
		t.Fatalf("AnimOffsets[0] = %v", m.AnimOffsets[0])
	}
	if m.AnimOffsets[0][0][5] == 0 || m.AnimOffsets[0][0][3] != 0 || m.AnimOffsets[0][1][0] == 0 {
		t.Errorf("offsets = %v", m.AnimOffsets[0])
	}
	if v, ok := m.Curves.Sample(0, 0, 5, 2); !ok || v != 100 {
		t.Errorf("idle root rz frame 2 = %d, %v", v, ok)
	}
	if v, ok := m.Curves.Sample(0, 1, 0, 2); !ok || v != 4 {
		t.Errorf("idle arm x frame 2 = %d, %v", v, ok)
	}
	if v, ok := m.Curves.Sample(1, 0, 0, 1); !ok || v != 9 {
		t.Errorf("walk root x frame 1 = %d, %v", v, ok)
	}
}

func TestModelHelpers(t *testing.T) {
	m := parseSimple(t)

	if got := m.TextureIndex(0, 0); got != 0 {
		t.Errorf("TextureIndex(0,0) = %d", got)
	}
	if got := m.TextureIndex(0, 1); got != 1 {
		t.Errorf("TextureIndex(0,1) = %d", got)
	}
	if got := m.TextureIndex(1, 7); got != 1 {
		t.Errorf("TextureIndex with bad family = %d, want family 0", got)
	}
	if got := m.TextureIndex(5, 0); got != -1 {
		t.Errorf("TextureIndex(5,0) = %d, want -1", got)
	}
	tex, ok := m.MeshTexture(m.Meshes[0][0][1], 0)
	if !ok || tex.Name != "mask.bmp" {
		t.Errorf("MeshTexture = %q, %v", tex.Name, ok)
	}

	tests := []struct {
		body int
		want []int
	}{
		{0, []int{0, 0}},
		{2, []int{0, 1}},
		{3, []int{0, 1}},
		{4, []int{0, 0}},
	}
	for _, tt := range tests {
		got := m.BodySelection(tt.body)
		if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("BodySelection(%d) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	good := mdltest.Simple()

	t.Run("unsupported version", func(t *testing.T) {
		src := good
		src.Version = 6
		_, err := mdl.Parse(src.Bytes())
		var uv *mdl.UnsupportedVersionError
		if !errors.As(err, &uv) || uv.Version != 6 {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("bad identifier", func(t *testing.T) {
		src := good
		src.ID = 0x51534449 // "IDSQ"
		_, err := mdl.Parse(src.Bytes())
		var uv *mdl.UnsupportedVersionError
		if !errors.As(err, &uv) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("missing textures", func(t *testing.T) {
		src := good
		src.Textures = nil
		src.Skins = nil
		if _, err := mdl.Parse(src.Bytes()); !errors.Is(err, mdl.ErrMissingTextures) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("truncated buffer", func(t *testing.T) {
		data := good.Bytes()
		_, err := mdl.Parse(data[:len(data)-4])
		var oob *binreader.OutOfBoundsError
		if !errors.As(err, &oob) || oob.Field != "header.length" {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("short header", func(t *testing.T) {
		_, err := mdl.Parse(make([]byte, 100))
		var oob *binreader.OutOfBoundsError
		if !errors.As(err, &oob) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("section offset past end", func(t *testing.T) {
		data := good.Bytes()
		binary.LittleEndian.PutUint32(data[208:], uint32(len(data)+100)) // bodyPartIndex
		_, err := mdl.Parse(data)
		var oob *binreader.OutOfBoundsError
		if !errors.As(err, &oob) || oob.Field != "header.bodyParts" {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("negative count", func(t *testing.T) {
		data := good.Bytes()
		binary.LittleEndian.PutUint32(data[140:], 0xFFFFFFFF) // numBones
		_, err := mdl.Parse(data)
		var oob *binreader.OutOfBoundsError
		if !errors.As(err, &oob) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("parent after child", func(t *testing.T) {
		src := good
		src.Bones = append([]mdltest.Bone(nil), good.Bones...)
		src.Bones[0].Parent = 1
		if _, err := mdl.Parse(src.Bytes()); !errors.Is(err, mdl.ErrInvalidSkeleton) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("attachment bone out of range", func(t *testing.T) {
		src := good
		src.Attach = []mdltest.Attachment{{Name: "bad", Bone: 2}}
		if _, err := mdl.Parse(src.Bytes()); !errors.Is(err, mdl.ErrInvalidSkeleton) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("short run", func(t *testing.T) {
		src := withStream(good, []int16{2, 0, 0, 0, 0, 1, 0, 0, 0, 0})
		if _, err := mdl.Parse(src.Bytes()); !errors.Is(err, mdl.ErrMalformedMesh) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("vertex out of range", func(t *testing.T) {
		src := withStream(good, []int16{3, 0, 0, 0, 0, 1, 0, 0, 0, 9, 0, 0, 0, 0})
		if _, err := mdl.Parse(src.Bytes()); !errors.Is(err, mdl.ErrMalformedMesh) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unterminated stream", func(t *testing.T) {
		src := withStream(good, []int16{3, 0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0})
		_, err := mdl.Parse(src.Bytes())
		var oob *binreader.OutOfBoundsError
		if !errors.As(err, &oob) || oob.Field != "triangles" {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("animation records larger than buffer", func(t *testing.T) {
		src := good
		src.Bones = make([]mdltest.Bone, 96)
		for i := range src.Bones {
			src.Bones[i] = mdltest.Bone{Name: "b", Parent: -1}
		}
		src.Seqs = make([]mdltest.Sequence, 96)
		for i := range src.Seqs {
			src.Seqs[i] = mdltest.Sequence{Label: "s", FPS: 30, NumFrames: 1}
		}
		src.ShareAnim = true
		data := src.Bytes()
		if 96*96*anim.RecordSize <= len(data) {
			t.Fatalf("fixture too large: %d bytes", len(data))
		}
		if _, err := mdl.Parse(data); !errors.Is(err, mdl.ErrAnimationSize) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("shared animation block", func(t *testing.T) {
		src := good
		src.Seqs = append([]mdltest.Sequence(nil), good.Seqs[:2]...)
		src.ShareAnim = true
		m, err := mdl.Parse(src.Bytes())
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		// Both sequences read the idle block, so the walk sequence decodes
		// the idle curves over its own frame count.
		if v, ok := m.Curves.Sample(1, 0, 5, 1); !ok || v != 50 {
			t.Errorf("Sample(1,0,5,1) = %d, %v", v, ok)
		}
	})

	t.Run("malformed curve", func(t *testing.T) {
		src := good
		src.Seqs = []mdltest.Sequence{{
			Label: "broken", NumFrames: 4,
			Curves: map[mdltest.Key]anim.Curve{{Bone: 1, Axis: 4}: {{Valid: 1, Total: 0, Samples: []int16{1}}}},
		}}
		_, err := mdl.Parse(src.Bytes())
		var mc *anim.MalformedCurveError
		if !errors.As(err, &mc) || mc.Bone != 1 || mc.Axis != 4 || mc.Sequence != 0 {
			t.Fatalf("err = %v", err)
		}
	})
}

// withStream replaces the last mesh of the last body part's first sub-model,
// whose stream is the final bytes of the buffer.
func withStream(src mdltest.Model, stream []int16) mdltest.Model {
	parts := append([]mdltest.BodyPart(nil), src.Parts...)
	head := parts[1]
	subs := append([]mdltest.SubModel(nil), head.SubModels...)
	subs[0].Meshes = []mdltest.Mesh{{Stream: stream}}
	head.SubModels = subs
	parts[1] = head
	src.Parts = parts
	return src
}
