// Package export writes posed models as binary glTF 2.0.
package export

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"hl-mdl-renderer/internal/geometry"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/skeleton"
	"hl-mdl-renderer/internal/texture"
)

// Options selects what Document exports.
type Options struct {
	Body   int // packed body-group value
	Family int // skin family
	// NoTextures omits images and materials.
	NoTextures bool
}

// zUpToYUp rotates the model's Z-up space into glTF's Y-up space.
var zUpToYUp = [4]float32{-float32(math.Sqrt2 / 2), 0, 0, float32(math.Sqrt2 / 2)}

// Document builds a glTF document for one posed frame. Meshes hold skinned
// model-space positions; the bone hierarchy is exported alongside as plain
// nodes carrying the pose's local transforms.
func Document(m *mdl.Model, pose *skeleton.Pose, opts Options) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	root := &gltf.Node{Name: m.Header.Name, Rotation: zUpToYUp}
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	root.Children = append(root.Children, addBones(doc, m, pose)...)

	var materials []*uint32
	if !opts.NoTextures {
		var err error
		if materials, err = addMaterials(doc, m); err != nil {
			return nil, err
		}
	}

	for bp, sm := range m.BodySelection(opts.Body) {
		if sm >= len(m.Meshes[bp]) {
			continue
		}
		for i := range m.Meshes[bp][sm] {
			g := geometry.FromModel(m, bp, sm, i, opts.Family)
			if g.Len() == 0 {
				continue
			}
			uvs := make([][2]float32, g.Len())
			for k, uv := range g.UVs {
				uvs[k] = [2]float32{uv[0], 1 - uv[1]} // glTF puts v = 0 at the top
			}
			prim := &gltf.Primitive{
				Indices: gltf.Index(modeler.WriteIndices(doc, g.Indices())),
				Attributes: map[string]uint32{
					"POSITION":   modeler.WritePosition(doc, geometry.Skin(g, m.VertexBones[bp][sm], pose.World)),
					"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
				},
			}
			if g.Texture >= 0 && g.Texture < len(materials) {
				prim.Material = materials[g.Texture]
			}

			name := fmt.Sprintf("%s/%s/%d", m.BodyParts[bp].Name, m.SubModels[bp][sm].Name, i)
			doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
			root.Children = append(root.Children, uint32(len(doc.Nodes)))
			doc.Nodes = append(doc.Nodes, &gltf.Node{
				Name: name,
				Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
			})
		}
	}
	return doc, nil
}

// addBones appends one node per bone and returns the indices of the roots.
func addBones(doc *gltf.Document, m *mdl.Model, pose *skeleton.Pose) []uint32 {
	base := uint32(len(doc.Nodes))
	nodes := make([]*gltf.Node, len(m.Bones))
	for i, b := range m.Bones {
		r := pose.Rotations[i]
		q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()
		p := pose.Positions[i]
		nodes[i] = &gltf.Node{
			Name:        b.Name,
			Translation: mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])},
			Rotation:    q.V.Vec4(q.W),
		}
	}

	var roots []uint32
	for i, b := range m.Bones {
		if b.Parent < 0 {
			roots = append(roots, base+uint32(i))
			continue
		}
		parent := nodes[b.Parent]
		parent.Children = append(parent.Children, base+uint32(i))
	}
	doc.Nodes = append(doc.Nodes, nodes...)
	return roots
}

// addMaterials embeds every model texture as PNG and returns one material
// index per texture.
func addMaterials(doc *gltf.Document, m *mdl.Model) ([]*uint32, error) {
	if len(m.Textures) == 0 {
		return nil, nil
	}
	images, err := texture.NewCache(m).All()
	if err != nil {
		return nil, errors.Wrap(err, "export: decode textures")
	}

	sampler := uint32(len(doc.Samplers))
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagNearest,
		MinFilter: gltf.MinLinear,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})

	out := make([]*uint32, len(m.Textures))
	for i, t := range m.Textures {
		var buf bytes.Buffer
		if err := texture.Encode(&buf, images[i], texture.PNG); err != nil {
			return nil, err
		}
		img, err := modeler.WriteImage(doc, t.Name, "image/png", &buf)
		if err != nil {
			return nil, errors.Wrapf(err, "export: write image %q", t.Name)
		}

		texIndex := uint32(len(doc.Textures))
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Name:    t.Name,
			Sampler: gltf.Index(sampler),
			Source:  gltf.Index(img),
		})

		mat := &gltf.Material{
			Name:        t.Name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: texIndex},
			},
		}
		switch {
		case t.Additive():
			mat.AlphaMode = gltf.AlphaBlend
		case t.Masked():
			mat.AlphaMode = gltf.AlphaMask
		}
		out[i] = gltf.Index(uint32(len(doc.Materials)))
		doc.Materials = append(doc.Materials, mat)
	}
	return out, nil
}

// WriteGLB encodes doc as a binary glTF container.
func WriteGLB(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return errors.Wrap(enc.Encode(doc), "export: encode glb")
}
