package mdl

import (
	"hl-mdl-renderer/internal/anim"
	"hl-mdl-renderer/internal/binreader"
)

// Model is a fully decoded studio model. All nested slices are indexed
// [bodyPart][subModel][mesh] in file order. A Model is immutable once Parse
// returns and may be shared between goroutines.
type Model struct {
	Header          Header
	Bones           []Bone
	BoneControllers []BoneController
	Attachments     []Attachment
	Hitboxes        []Hitbox
	Sequences       []Sequence
	Events          [][]Event
	SequenceGroups  []SequenceGroup
	BodyParts       []BodyPart
	Textures        []Texture

	// SkinRefs holds NumSkinFamilies rows of NumSkinRef texture indices.
	SkinRefs []int16

	SubModels   [][]SubModel
	Meshes      [][][]Mesh
	Vertices    [][][][3]float32 // [bodyPart][subModel] → positions
	VertexBones [][][]byte     // [bodyPart][subModel] → bone per vertex
	Triangles   [][][]binreader.Int16s

	// AnimOffsets is indexed [sequence][bone]. External sequences have nil rows.
	AnimOffsets [][]AnimOffsets
	Curves      *anim.Table

	data []byte
}

// Data returns the buffer the model was parsed from, truncated to the
// header's declared length.
func (m *Model) Data() []byte { return m.data }

// TextureIndex resolves a mesh skin reference to an index into Textures for
// the given skin family. Out-of-range families fall back to family 0.
func (m *Model) TextureIndex(skinRef, family int) int {
	n := int(m.Header.NumSkinRef)
	if family < 0 || family >= int(m.Header.NumSkinFamilies) {
		family = 0
	}
	i := family*n + skinRef
	if skinRef < 0 || skinRef >= n || i >= len(m.SkinRefs) {
		return -1
	}
	return int(m.SkinRefs[i])
}

// MeshTexture returns the texture a mesh draws with under the given skin
// family, and false when the reference does not resolve.
func (m *Model) MeshTexture(mesh Mesh, family int) (Texture, bool) {
	i := m.TextureIndex(int(mesh.SkinRef), family)
	if i < 0 || i >= len(m.Textures) {
		return Texture{}, false
	}
	return m.Textures[i], true
}

// BodySelection returns the sub-model chosen for each body part by a packed
// body value.
func (m *Model) BodySelection(body int) []int {
	sel := make([]int, len(m.BodyParts))
	for i, bp := range m.BodyParts {
		if bp.NumModels <= 0 {
			continue
		}
		base := int(bp.Base)
		if base <= 0 {
			base = 1
		}
		sel[i] = (body / base) % int(bp.NumModels)
	}
	return sel
}

// Stream returns the triangle command stream of one mesh.
func (m *Model) Stream(bodyPart, subModel, mesh int) binreader.Int16s {
	return m.Triangles[bodyPart][subModel][mesh]
}
