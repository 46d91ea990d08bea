package mdl

import "hl-mdl-renderer/internal/binreader"

const (
	// Ident is "IDST" read as a little-endian int32.
	Ident   = 1414743113
	Version = 10

	MaxPerBoneControllers = 6
	PaletteEntries        = 256
	PaletteSize           = PaletteEntries * 3
)

// Texture flags.
const (
	TextureFlatShade  = 0x0001
	TextureChrome     = 0x0002
	TextureFullBright = 0x0004
	TextureAdditive   = 0x0020
	TextureMasked     = 0x0040
)

// Sequence flags and motion types.
const (
	SequenceLooping = 0x0001

	MotionX = 0x0001
	MotionY = 0x0002
	MotionZ = 0x0004
)

type Header struct {
	ID          int32
	Version     int32
	Name        string
	Length      int32
	EyePosition [3]float32
	Min         [3]float32
	Max         [3]float32
	BBMin       [3]float32
	BBMax       [3]float32
	Flags       int32

	NumBones            int32
	BoneIndex           int32
	NumBoneControllers  int32
	BoneControllerIndex int32
	NumHitboxes         int32
	HitboxIndex         int32
	NumSeq              int32
	SeqIndex            int32
	NumSeqGroups        int32
	SeqGroupIndex       int32
	NumTextures         int32
	TextureIndex        int32
	TextureDataIndex    int32
	NumSkinRef          int32
	NumSkinFamilies     int32
	SkinIndex           int32
	NumBodyParts        int32
	BodyPartIndex       int32
	NumAttachments      int32
	AttachmentIndex     int32
	SoundTable          int32
	SoundIndex          int32
	SoundGroups         int32
	SoundGroupIndex     int32
	NumTransitions      int32
	TransitionIndex     int32
}

type Bone struct {
	Name           string
	Parent         int32
	Flags          int32
	BoneController [MaxPerBoneControllers]int32
	Value          [MaxPerBoneControllers]float32
	Scale          [MaxPerBoneControllers]float32
}

type BoneController struct {
	Bone  int32
	Type  int32
	Start float32
	End   float32
	Rest  int32
	Index int32
}

type Attachment struct {
	Name    string
	Type    int32
	Bone    int32
	Origin  [3]float32
	Vectors [3][3]float32
}

type Hitbox struct {
	Bone  int32
	Group int32
	BBMin [3]float32
	BBMax [3]float32
}

type Sequence struct {
	Label              string
	FPS                float32
	Flags              int32
	Activity           int32
	ActWeight          int32
	NumEvents          int32
	EventIndex         int32
	NumFrames          int32
	NumPivots          int32
	PivotIndex         int32
	MotionType         int32
	MotionBone         int32
	LinearMovement     [3]float32
	AutoMovePosIndex   int32
	AutoMoveAngleIndex int32
	BBMin              [3]float32
	BBMax              [3]float32
	NumBlends          int32
	AnimIndex          int32
	BlendType          [2]int32
	BlendStart         [2]float32
	BlendEnd           [2]float32
	BlendParent        int32
	SeqGroup           int32
	EntryNode          int32
	ExitNode           int32
	NodeFlags          int32
	NextSeq            int32
}

// Looping reports whether playback wraps at the last frame.
func (s Sequence) Looping() bool { return s.Flags&SequenceLooping != 0 }

// External reports whether the animation data lives in a demand-loaded
// sequence group file instead of this buffer.
func (s Sequence) External() bool { return s.SeqGroup != 0 }

type Event struct {
	Frame   int32
	Event   int32
	Type    int32
	Options string
}

type SequenceGroup struct {
	Label   string
	Name    string
	Unused1 int32
	Unused2 int32
}

type BodyPart struct {
	Name       string
	NumModels  int32
	Base       int32
	ModelIndex int32
}

type Texture struct {
	Name   string
	Flags  int32
	Width  int32
	Height int32
	Index  int32
}

func (t Texture) Masked() bool   { return t.Flags&TextureMasked != 0 }
func (t Texture) Additive() bool { return t.Flags&TextureAdditive != 0 }

type SubModel struct {
	Name           string
	Type           int32
	BoundingRadius float32
	NumMesh        int32
	MeshIndex      int32
	NumVerts       int32
	VertInfoIndex  int32
	VertIndex      int32
	NumNorms       int32
	NormInfoIndex  int32
	NormIndex      int32
	NumGroups      int32
	GroupIndex     int32
}

type Mesh struct {
	NumTris   int32
	TriIndex  int32
	SkinRef   int32
	NumNorms  int32
	NormIndex int32
}

// AnimOffsets holds per-axis curve offsets for one bone of one sequence,
// relative to the start of the record. Axes 0-2 translate, 3-5 rotate.
// Zero means the axis is constant.
type AnimOffsets [6]uint16

func i32[T any](name string, p func(*T) *int32) binreader.Field[T] {
	return binreader.I32(name, func(d *T, v int32) { *p(d) = v })
}

func f32[T any](name string, p func(*T) *float32) binreader.Field[T] {
	return binreader.F32(name, func(d *T, v float32) { *p(d) = v })
}

func vec3[T any](name string, p func(*T) *[3]float32) binreader.Field[T] {
	return binreader.Vec3(name, func(d *T, v [3]float32) { *p(d) = v })
}

func str[T any](name string, n int, p func(*T) *string) binreader.Field[T] {
	return binreader.String(name, n, func(d *T, v string) { *p(d) = v })
}

var headerSchema = binreader.Schema[Header]{Name: "header", Fields: []binreader.Field[Header]{
	i32("id", func(h *Header) *int32 { return &h.ID }),
	i32("version", func(h *Header) *int32 { return &h.Version }),
	str("name", 64, func(h *Header) *string { return &h.Name }),
	i32("length", func(h *Header) *int32 { return &h.Length }),
	vec3("eyePosition", func(h *Header) *[3]float32 { return &h.EyePosition }),
	vec3("min", func(h *Header) *[3]float32 { return &h.Min }),
	vec3("max", func(h *Header) *[3]float32 { return &h.Max }),
	vec3("bbmin", func(h *Header) *[3]float32 { return &h.BBMin }),
	vec3("bbmax", func(h *Header) *[3]float32 { return &h.BBMax }),
	i32("flags", func(h *Header) *int32 { return &h.Flags }),
	i32("numBones", func(h *Header) *int32 { return &h.NumBones }),
	i32("boneIndex", func(h *Header) *int32 { return &h.BoneIndex }),
	i32("numBoneControllers", func(h *Header) *int32 { return &h.NumBoneControllers }),
	i32("boneControllerIndex", func(h *Header) *int32 { return &h.BoneControllerIndex }),
	i32("numHitboxes", func(h *Header) *int32 { return &h.NumHitboxes }),
	i32("hitboxIndex", func(h *Header) *int32 { return &h.HitboxIndex }),
	i32("numSeq", func(h *Header) *int32 { return &h.NumSeq }),
	i32("seqIndex", func(h *Header) *int32 { return &h.SeqIndex }),
	i32("numSeqGroups", func(h *Header) *int32 { return &h.NumSeqGroups }),
	i32("seqGroupIndex", func(h *Header) *int32 { return &h.SeqGroupIndex }),
	i32("numTextures", func(h *Header) *int32 { return &h.NumTextures }),
	i32("textureIndex", func(h *Header) *int32 { return &h.TextureIndex }),
	i32("textureDataIndex", func(h *Header) *int32 { return &h.TextureDataIndex }),
	i32("numSkinRef", func(h *Header) *int32 { return &h.NumSkinRef }),
	i32("numSkinFamilies", func(h *Header) *int32 { return &h.NumSkinFamilies }),
	i32("skinIndex", func(h *Header) *int32 { return &h.SkinIndex }),
	i32("numBodyParts", func(h *Header) *int32 { return &h.NumBodyParts }),
	i32("bodyPartIndex", func(h *Header) *int32 { return &h.BodyPartIndex }),
	i32("numAttachments", func(h *Header) *int32 { return &h.NumAttachments }),
	i32("attachmentIndex", func(h *Header) *int32 { return &h.AttachmentIndex }),
	i32("soundTable", func(h *Header) *int32 { return &h.SoundTable }),
	i32("soundIndex", func(h *Header) *int32 { return &h.SoundIndex }),
	i32("soundGroups", func(h *Header) *int32 { return &h.SoundGroups }),
	i32("soundGroupIndex", func(h *Header) *int32 { return &h.SoundGroupIndex }),
	i32("numTransitions", func(h *Header) *int32 { return &h.NumTransitions }),
	i32("transitionIndex", func(h *Header) *int32 { return &h.TransitionIndex }),
}}

var boneSchema = binreader.Schema[Bone]{Name: "bone", Fields: []binreader.Field[Bone]{
	str("name", 32, func(b *Bone) *string { return &b.Name }),
	i32("parent", func(b *Bone) *int32 { return &b.Parent }),
	i32("flags", func(b *Bone) *int32 { return &b.Flags }),
	binreader.Array("boneController", MaxPerBoneControllers, 4, binreader.Int32,
		func(b *Bone, i int, v int32) { b.BoneController[i] = v }),
	binreader.Array("value", MaxPerBoneControllers, 4, binreader.Float32,
		func(b *Bone, i int, v float32) { b.Value[i] = v }),
	binreader.Array("scale", MaxPerBoneControllers, 4, binreader.Float32,
		func(b *Bone, i int, v float32) { b.Scale[i] = v }),
}}

var boneControllerSchema = binreader.Schema[BoneController]{Name: "boneController", Fields: []binreader.Field[BoneController]{
	i32("bone", func(c *BoneController) *int32 { return &c.Bone }),
	i32("type", func(c *BoneController) *int32 { return &c.Type }),
	f32("start", func(c *BoneController) *float32 { return &c.Start }),
	f32("end", func(c *BoneController) *float32 { return &c.End }),
	i32("rest", func(c *BoneController) *int32 { return &c.Rest }),
	i32("index", func(c *BoneController) *int32 { return &c.Index }),
}}

var attachmentSchema = binreader.Schema[Attachment]{Name: "attachment", Fields: []binreader.Field[Attachment]{
	str("name", 32, func(a *Attachment) *string { return &a.Name }),
	i32("type", func(a *Attachment) *int32 { return &a.Type }),
	i32("bone", func(a *Attachment) *int32 { return &a.Bone }),
	vec3("org", func(a *Attachment) *[3]float32 { return &a.Origin }),
	binreader.Array("vectors", 3, 12, func(b []byte) [3]float32 {
		return [3]float32{binreader.Float32(b), binreader.Float32(b[4:]), binreader.Float32(b[8:])}
	}, func(a *Attachment, i int, v [3]float32) { a.Vectors[i] = v }),
}}

var hitboxSchema = binreader.Schema[Hitbox]{Name: "hitbox", Fields: []binreader.Field[Hitbox]{
	i32("bone", func(h *Hitbox) *int32 { return &h.Bone }),
	i32("group", func(h *Hitbox) *int32 { return &h.Group }),
	vec3("bbmin", func(h *Hitbox) *[3]float32 { return &h.BBMin }),
	vec3("bbmax", func(h *Hitbox) *[3]float32 { return &h.BBMax }),
}}

var sequenceSchema = binreader.Schema[Sequence]{Name: "sequence", Fields: []binreader.Field[Sequence]{
	str("label", 32, func(s *Sequence) *string { return &s.Label }),
	f32("fps", func(s *Sequence) *float32 { return &s.FPS }),
	i32("flags", func(s *Sequence) *int32 { return &s.Flags }),
	i32("activity", func(s *Sequence) *int32 { return &s.Activity }),
	i32("actWeight", func(s *Sequence) *int32 { return &s.ActWeight }),
	i32("numEvents", func(s *Sequence) *int32 { return &s.NumEvents }),
	i32("eventIndex", func(s *Sequence) *int32 { return &s.EventIndex }),
	i32("numFrames", func(s *Sequence) *int32 { return &s.NumFrames }),
	i32("numPivots", func(s *Sequence) *int32 { return &s.NumPivots }),
	i32("pivotIndex", func(s *Sequence) *int32 { return &s.PivotIndex }),
	i32("motionType", func(s *Sequence) *int32 { return &s.MotionType }),
	i32("motionBone", func(s *Sequence) *int32 { return &s.MotionBone }),
	vec3("linearMovement", func(s *Sequence) *[3]float32 { return &s.LinearMovement }),
	i32("autoMovePosIndex", func(s *Sequence) *int32 { return &s.AutoMovePosIndex }),
	i32("autoMoveAngleIndex", func(s *Sequence) *int32 { return &s.AutoMoveAngleIndex }),
	vec3("bbmin", func(s *Sequence) *[3]float32 { return &s.BBMin }),
	vec3("bbmax", func(s *Sequence) *[3]float32 { return &s.BBMax }),
	i32("numBlends", func(s *Sequence) *int32 { return &s.NumBlends }),
	i32("animIndex", func(s *Sequence) *int32 { return &s.AnimIndex }),
	binreader.Array("blendType", 2, 4, binreader.Int32, func(s *Sequence, i int, v int32) { s.BlendType[i] = v }),
	binreader.Array("blendStart", 2, 4, binreader.Float32, func(s *Sequence, i int, v float32) { s.BlendStart[i] = v }),
	binreader.Array("blendEnd", 2, 4, binreader.Float32, func(s *Sequence, i int, v float32) { s.BlendEnd[i] = v }),
	i32("blendParent", func(s *Sequence) *int32 { return &s.BlendParent }),
	i32("seqGroup", func(s *Sequence) *int32 { return &s.SeqGroup }),
	i32("entryNode", func(s *Sequence) *int32 { return &s.EntryNode }),
	i32("exitNode", func(s *Sequence) *int32 { return &s.ExitNode }),
	i32("nodeFlags", func(s *Sequence) *int32 { return &s.NodeFlags }),
	i32("nextSeq", func(s *Sequence) *int32 { return &s.NextSeq }),
}}

var eventSchema = binreader.Schema[Event]{Name: "event", Fields: []binreader.Field[Event]{
	i32("frame", func(e *Event) *int32 { return &e.Frame }),
	i32("event", func(e *Event) *int32 { return &e.Event }),
	i32("type", func(e *Event) *int32 { return &e.Type }),
	str("options", 64, func(e *Event) *string { return &e.Options }),
}}

var sequenceGroupSchema = binreader.Schema[SequenceGroup]{Name: "sequenceGroup", Fields: []binreader.Field[SequenceGroup]{
	str("label", 32, func(g *SequenceGroup) *string { return &g.Label }),
	str("name", 64, func(g *SequenceGroup) *string { return &g.Name }),
	i32("unused1", func(g *SequenceGroup) *int32 { return &g.Unused1 }),
	i32("unused2", func(g *SequenceGroup) *int32 { return &g.Unused2 }),
}}

var bodyPartSchema = binreader.Schema[BodyPart]{Name: "bodyPart", Fields: []binreader.Field[BodyPart]{
	str("name", 64, func(b *BodyPart) *string { return &b.Name }),
	i32("numModels", func(b *BodyPart) *int32 { return &b.NumModels }),
	i32("base", func(b *BodyPart) *int32 { return &b.Base }),
	i32("modelIndex", func(b *BodyPart) *int32 { return &b.ModelIndex }),
}}

var textureSchema = binreader.Schema[Texture]{Name: "texture", Fields: []binreader.Field[Texture]{
	str("name", 64, func(t *Texture) *string { return &t.Name }),
	i32("flags", func(t *Texture) *int32 { return &t.Flags }),
	i32("width", func(t *Texture) *int32 { return &t.Width }),
	i32("height", func(t *Texture) *int32 { return &t.Height }),
	i32("index", func(t *Texture) *int32 { return &t.Index }),
}}

var subModelSchema = binreader.Schema[SubModel]{Name: "subModel", Fields: []binreader.Field[SubModel]{
	str("name", 64, func(s *SubModel) *string { return &s.Name }),
	i32("type", func(s *SubModel) *int32 { return &s.Type }),
	f32("boundingRadius", func(s *SubModel) *float32 { return &s.BoundingRadius }),
	i32("numMesh", func(s *SubModel) *int32 { return &s.NumMesh }),
	i32("meshIndex", func(s *SubModel) *int32 { return &s.MeshIndex }),
	i32("numVerts", func(s *SubModel) *int32 { return &s.NumVerts }),
	i32("vertInfoIndex", func(s *SubModel) *int32 { return &s.VertInfoIndex }),
	i32("vertIndex", func(s *SubModel) *int32 { return &s.VertIndex }),
	i32("numNorms", func(s *SubModel) *int32 { return &s.NumNorms }),
	i32("normInfoIndex", func(s *SubModel) *int32 { return &s.NormInfoIndex }),
	i32("normIndex", func(s *SubModel) *int32 { return &s.NormIndex }),
	i32("numGroups", func(s *SubModel) *int32 { return &s.NumGroups }),
	i32("groupIndex", func(s *SubModel) *int32 { return &s.GroupIndex }),
}}

var meshSchema = binreader.Schema[Mesh]{Name: "mesh", Fields: []binreader.Field[Mesh]{
	i32("numTris", func(m *Mesh) *int32 { return &m.NumTris }),
	i32("triIndex", func(m *Mesh) *int32 { return &m.TriIndex }),
	i32("skinRef", func(m *Mesh) *int32 { return &m.SkinRef }),
	i32("numNorms", func(m *Mesh) *int32 { return &m.NumNorms }),
	i32("normIndex", func(m *Mesh) *int32 { return &m.NormIndex }),
}}

var animOffsetsSchema = binreader.Schema[AnimOffsets]{Name: "animation", Fields: []binreader.Field[AnimOffsets]{
	binreader.Array("offset", 6, 2, binreader.Uint16, func(a *AnimOffsets, i int, v uint16) { a[i] = v }),
}}

var vertexSchema = binreader.Schema[[3]float32]{Name: "vertex", Fields: []binreader.Field[[3]float32]{
	binreader.Vec3("position", func(v *[3]float32, p [3]float32) { *v = p }),
}}

var skinRefSchema = binreader.Schema[int16]{Name: "skinRef", Fields: []binreader.Field[int16]{
	binreader.I16("index", func(d *int16, v int16) { *d = v }),
}}
