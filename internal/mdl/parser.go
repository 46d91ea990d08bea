package mdl

import (
	"github.com/pkg/errors"

	"hl-mdl-renderer/internal/anim"
	"hl-mdl-renderer/internal/binreader"
)

// Parse decodes a studio model from data. The buffer is retained by the
// returned Model and must not be modified afterwards. Parsing stops at the
// first malformed section.
func Parse(data []byte) (*Model, error) {
	h, err := binreader.Read(data, 0, headerSchema)
	if err != nil {
		return nil, errors.Wrap(err, "mdl: header")
	}
	if h.ID != Ident || h.Version != Version {
		return nil, &UnsupportedVersionError{ID: h.ID, Version: h.Version}
	}
	if h.TextureIndex == 0 || h.NumTextures == 0 {
		return nil, ErrMissingTextures
	}
	if int(h.Length) < headerSchema.Size() || int(h.Length) > len(data) {
		return nil, &binreader.OutOfBoundsError{Field: "header.length", Offset: 0, Size: int(h.Length), Len: len(data)}
	}
	data = data[:h.Length]
	if err := validateSections(h, len(data)); err != nil {
		return nil, err
	}

	p := &parser{data: data, m: &Model{Header: h, data: data}}
	steps := []func() error{
		p.skeleton,
		p.bodyParts,
		p.textures,
		p.sequences,
		p.animations,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return p.m, nil
}

type parser struct {
	data []byte
	m    *Model
}

// section is one (count, offset) pair of the header.
type section struct {
	name   string
	count  int32
	offset int32
}

func validateSections(h Header, n int) error {
	sections := []section{
		{"bones", h.NumBones, h.BoneIndex},
		{"boneControllers", h.NumBoneControllers, h.BoneControllerIndex},
		{"hitboxes", h.NumHitboxes, h.HitboxIndex},
		{"sequences", h.NumSeq, h.SeqIndex},
		{"sequenceGroups", h.NumSeqGroups, h.SeqGroupIndex},
		{"textures", h.NumTextures, h.TextureIndex},
		{"textureData", 0, h.TextureDataIndex},
		{"skinRefs", h.NumSkinRef, h.SkinIndex},
		{"skinFamilies", h.NumSkinFamilies, h.SkinIndex},
		{"bodyParts", h.NumBodyParts, h.BodyPartIndex},
		{"attachments", h.NumAttachments, h.AttachmentIndex},
	}
	for _, s := range sections {
		if s.count < 0 {
			return &binreader.OutOfBoundsError{Field: "header." + s.name + " count", Offset: int(s.offset), Size: int(s.count), Len: n}
		}
		if s.offset < 0 || int(s.offset) > n {
			return &binreader.OutOfBoundsError{Field: "header." + s.name, Offset: int(s.offset), Len: n}
		}
	}
	return nil
}

func (p *parser) skeleton() error {
	h := p.m.Header
	var err error
	if p.m.Bones, err = binreader.ReadN(p.data, int(h.BoneIndex), int(h.NumBones), boneSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	for i, b := range p.m.Bones {
		if b.Parent != -1 && (b.Parent < 0 || int(b.Parent) >= i) {
			return errors.Wrapf(ErrInvalidSkeleton, "bone %d %q has parent %d", i, b.Name, b.Parent)
		}
	}
	if p.m.BoneControllers, err = binreader.ReadN(p.data, int(h.BoneControllerIndex), int(h.NumBoneControllers), boneControllerSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	if p.m.Attachments, err = binreader.ReadN(p.data, int(h.AttachmentIndex), int(h.NumAttachments), attachmentSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	if p.m.Hitboxes, err = binreader.ReadN(p.data, int(h.HitboxIndex), int(h.NumHitboxes), hitboxSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}

	for i, c := range p.m.BoneControllers {
		if !p.validBone(c.Bone) {
			return errors.Wrapf(ErrInvalidSkeleton, "bone controller %d references bone %d", i, c.Bone)
		}
	}
	for i, a := range p.m.Attachments {
		if !p.validBone(a.Bone) {
			return errors.Wrapf(ErrInvalidSkeleton, "attachment %d %q references bone %d", i, a.Name, a.Bone)
		}
	}
	for i, hb := range p.m.Hitboxes {
		if !p.validBone(hb.Bone) {
			return errors.Wrapf(ErrInvalidSkeleton, "hitbox %d references bone %d", i, hb.Bone)
		}
	}
	return nil
}

func (p *parser) validBone(i int32) bool {
	return i >= 0 && int(i) < len(p.m.Bones)
}

func (p *parser) bodyParts() error {
	h := p.m.Header
	var err error
	if p.m.BodyParts, err = binreader.ReadN(p.data, int(h.BodyPartIndex), int(h.NumBodyParts), bodyPartSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}

	n := len(p.m.BodyParts)
	p.m.SubModels = make([][]SubModel, n)
	p.m.Meshes = make([][][]Mesh, n)
	p.m.Vertices = make([][][][3]float32, n)
	p.m.VertexBones = make([][][]byte, n)
	p.m.Triangles = make([][][]binreader.Int16s, n)

	for bi, bp := range p.m.BodyParts {
		subs, err := binreader.ReadN(p.data, int(bp.ModelIndex), int(bp.NumModels), subModelSchema)
		if err != nil {
			return errors.Wrapf(err, "mdl: body part %d", bi)
		}
		p.m.SubModels[bi] = subs
		p.m.Meshes[bi] = make([][]Mesh, len(subs))
		p.m.Vertices[bi] = make([][][3]float32, len(subs))
		p.m.VertexBones[bi] = make([][]byte, len(subs))
		p.m.Triangles[bi] = make([][]binreader.Int16s, len(subs))

		for si, sm := range subs {
			if err := p.subModel(bi, si, sm); err != nil {
				return errors.Wrapf(err, "mdl: body part %d sub-model %d", bi, si)
			}
		}
	}
	return nil
}

func (p *parser) subModel(bi, si int, sm SubModel) error {
	meshes, err := binreader.ReadN(p.data, int(sm.MeshIndex), int(sm.NumMesh), meshSchema)
	if err != nil {
		return err
	}
	verts, err := binreader.ReadN(p.data, int(sm.VertIndex), int(sm.NumVerts), vertexSchema)
	if err != nil {
		return err
	}

	start, count := int(sm.VertInfoIndex), int(sm.NumVerts)
	if start < 0 || start > len(p.data) || count > len(p.data)-start {
		return &binreader.OutOfBoundsError{Field: "subModel.vertInfoIndex", Offset: start, Size: count, Len: len(p.data)}
	}
	vertBones := p.data[start : start+count]
	for vi, b := range vertBones {
		if int(b) >= len(p.m.Bones) {
			return errors.Wrapf(ErrInvalidSkeleton, "vertex %d references bone %d", vi, b)
		}
	}

	streams := make([]binreader.Int16s, len(meshes))
	for mi, mesh := range meshes {
		s, err := p.triangleStream(int(mesh.TriIndex), count)
		if err != nil {
			return errors.Wrapf(err, "mesh %d", mi)
		}
		streams[mi] = s
	}

	p.m.Meshes[bi][si] = meshes
	p.m.Vertices[bi][si] = verts
	p.m.VertexBones[bi][si] = vertBones
	p.m.Triangles[bi][si] = streams
	return nil
}

// triangleStream walks the command stream at off once, checking every run
// against the buffer and the sub-model's vertex count. The returned view ends
// just after the zero terminator.
func (p *parser) triangleStream(off, numVerts int) (binreader.Int16s, error) {
	if off < 0 || off > len(p.data) {
		return nil, &binreader.OutOfBoundsError{Field: "mesh.triIndex", Offset: off, Len: len(p.data)}
	}
	s := binreader.Int16s(p.data[off:])
	oob := func(i, size int) error {
		return &binreader.OutOfBoundsError{Field: "triangles", Offset: off + i*2, Size: size * 2, Len: len(p.data)}
	}

	i := 0
	for {
		if i >= s.Len() {
			return nil, oob(i, 1)
		}
		n := int(s.At(i))
		i++
		if n == 0 {
			return s[:i*2], nil
		}
		if n < 0 {
			n = -n
		}
		if n < 3 {
			return nil, errors.Wrapf(ErrMalformedMesh, "run of %d vertices at offset %d", n, off+(i-1)*2)
		}
		if i+n*4 > s.Len() {
			return nil, oob(i, n*4)
		}
		for j := 0; j < n; j++ {
			if vi := int(s.At(i)); vi < 0 || vi >= numVerts {
				return nil, errors.Wrapf(ErrMalformedMesh, "vertex %d out of range (%d vertices)", vi, numVerts)
			}
			i += 4
		}
	}
}

func (p *parser) textures() error {
	h := p.m.Header
	var err error
	if p.m.Textures, err = binreader.ReadN(p.data, int(h.TextureIndex), int(h.NumTextures), textureSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	for i, t := range p.m.Textures {
		if t.Width < 0 || t.Height < 0 {
			return errors.Wrapf(&binreader.OutOfBoundsError{Field: "texture.width", Offset: int(t.Index), Len: len(p.data)},
				"mdl: texture %d %q is %dx%d", i, t.Name, t.Width, t.Height)
		}
		size := int(t.Width)*int(t.Height) + PaletteSize
		if t.Index < 0 || int(t.Index) > len(p.data) || size > len(p.data)-int(t.Index) {
			return errors.Wrapf(&binreader.OutOfBoundsError{Field: "texture.index", Offset: int(t.Index), Size: size, Len: len(p.data)},
				"mdl: texture %d %q", i, t.Name)
		}
	}

	families := h.NumSkinFamilies
	if families < 1 {
		families = 1
	}
	if p.m.SkinRefs, err = binreader.ReadN(p.data, int(h.SkinIndex), int(families*h.NumSkinRef), skinRefSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	return nil
}

func (p *parser) sequences() error {
	h := p.m.Header
	var err error
	if p.m.Sequences, err = binreader.ReadN(p.data, int(h.SeqIndex), int(h.NumSeq), sequenceSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	if p.m.SequenceGroups, err = binreader.ReadN(p.data, int(h.SeqGroupIndex), int(h.NumSeqGroups), sequenceGroupSchema); err != nil {
		return errors.Wrap(err, "mdl")
	}
	p.m.Events = make([][]Event, len(p.m.Sequences))
	for i, s := range p.m.Sequences {
		if s.NumFrames < 0 {
			return errors.Wrapf(&binreader.OutOfBoundsError{Field: "sequence.numFrames", Size: int(s.NumFrames), Len: len(p.data)},
				"mdl: sequence %d %q", i, s.Label)
		}
		if p.m.Events[i], err = binreader.ReadN(p.data, int(s.EventIndex), int(s.NumEvents), eventSchema); err != nil {
			return errors.Wrapf(err, "mdl: sequence %d %q", i, s.Label)
		}
	}
	return nil
}

// animations reads one offset record per bone for every sequence stored in
// this buffer and decodes the curves they point at. Only the first blend of a
// multi-blend sequence is read.
func (p *parser) animations() error {
	numBones := len(p.m.Bones)
	stored := 0
	for _, s := range p.m.Sequences {
		if !s.External() {
			stored++
		}
	}
	// Each stored sequence owns its own block of offset records.
	if stored*numBones*anim.RecordSize > len(p.data) {
		return errors.Wrapf(ErrAnimationSize, "mdl: %d sequences, %d bones", stored, numBones)
	}
	p.m.AnimOffsets = make([][]AnimOffsets, len(p.m.Sequences))
	sources := make([]anim.Source, len(p.m.Sequences))

	for i, s := range p.m.Sequences {
		sources[i] = anim.Source{Base: int(s.AnimIndex), NumFrames: int(s.NumFrames)}
		if s.External() {
			continue
		}
		offs, err := binreader.ReadN(p.data, int(s.AnimIndex), numBones, animOffsetsSchema)
		if err != nil {
			return errors.Wrapf(err, "mdl: sequence %d %q", i, s.Label)
		}
		p.m.AnimOffsets[i] = offs
		rows := make([][anim.Axes]uint16, len(offs))
		for b, o := range offs {
			rows[b] = o
		}
		sources[i].Offsets = rows
	}

	table, err := anim.Decode(p.data, sources, numBones)
	if err != nil {
		return errors.Wrap(err, "mdl")
	}
	p.m.Curves = table
	return nil
}
