package mdltest

import "hl-mdl-renderer/internal/anim"

// Simple returns a two-bone model with three sequences, two body parts and
// two textures. Tests across packages rely on the exact values below.
//
//	bone 0 "root"  parent -1, value (1,2,3 | 0,0,0)
//	bone 1 "arm"   parent  0, value (10,0,0 | 0,0,0)
//	sequence 0 "idle"  3 frames, looping; root rotates about z, arm slides on x
//	sequence 1 "walk"  2 frames, root motion on X and Z, root x animated
//	sequence 2 "ext"   demand-loaded from group 1
func Simple() Model {
	scale := [6]float32{1, 1, 1, 0.01, 0.01, 0.01}
	return Model{
		Name: "test\\simple.mdl",
		Bones: []Bone{
			{Name: "root", Parent: -1, Value: [6]float32{1, 2, 3, 0, 0, 0}, Scale: scale},
			{Name: "arm", Parent: 0, Value: [6]float32{10, 0, 0, 0, 0, 0}, Scale: scale},
		},
		Controls: []Controller{{Bone: 0, Type: 0x20, Start: -90, End: 90}},
		Attach:   []Attachment{{Name: "muzzle", Bone: 1, Origin: [3]float32{4, 0, 0}}},
		Hitboxes: []Hitbox{{Bone: 0, Group: 1}, {Bone: 1, Group: 2}},
		Seqs: []Sequence{
			{
				Label: "idle", FPS: 10, Flags: 1, NumFrames: 3,
				Events: []Event{{Frame: 1, Event: 5001, Options: "12"}},
				Curves: map[Key]anim.Curve{
					{Bone: 0, Axis: 5}: {{Valid: 3, Total: 3, Samples: []int16{0, 50, 100}}},
					{Bone: 1, Axis: 0}: {{Valid: 2, Total: 3, Samples: []int16{0, 4}}},
				},
			},
			{
				Label: "walk", FPS: 30, NumFrames: 2, MotionType: 0x1 | 0x4, MotionBone: 0,
				Curves: map[Key]anim.Curve{
					{Bone: 0, Axis: 0}: {{Valid: 2, Total: 2, Samples: []int16{5, 9}}},
				},
			},
			{Label: "ext", FPS: 15, NumFrames: 10, SeqGroup: 1},
		},
		Groups: []string{"default", "simple01.mdl"},
		Parts: []BodyPart{
			{
				Name: "body", Base: 1,
				SubModels: []SubModel{{
					Name:        "body_ref",
					Vertices:    [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
					VertexBones: []byte{0, 0, 1, 1},
					Meshes: []Mesh{
						{SkinRef: 0, Stream: []int16{
							4,
							0, 0, 0, 0,
							1, 0, 2, 0,
							2, 0, 0, 2,
							3, 0, 2, 2,
							0,
						}},
						{SkinRef: 1, Stream: []int16{
							-5,
							0, 0, 0, 0,
							1, 0, 1, 0,
							3, 0, 2, 1,
							2, 0, 1, 2,
							0, 0, 0, 1,
							3,
							1, 0, 0, 0,
							2, 0, 0, 0,
							3, 0, 0, 0,
							0,
						}},
					},
				}},
			},
			{
				Name: "head", Base: 2,
				SubModels: []SubModel{
					{
						Name:        "head_a",
						Vertices:    [][3]float32{{0, 0, 5}, {1, 0, 5}, {0, 1, 5}},
						VertexBones: []byte{1, 1, 1},
						Meshes: []Mesh{{SkinRef: 0, Stream: []int16{
							3,
							0, 0, 0, 0,
							1, 0, 2, 0,
							2, 0, 0, 2,
							0,
						}}},
					},
					{Name: "blank"},
				},
			},
		},
		Textures: []Texture{
			{Name: "skin.bmp", Width: 2, Height: 2, Indices: []byte{0, 1, 2, 255}, Palette: palette(nil)},
			{Name: "mask.bmp", Flags: 0x40, Width: 2, Height: 2, Indices: []byte{255, 1, 3, 2},
				Palette: palette(map[int][3]byte{3: {0, 0, 255}})},
		},
		Skins: [][]int16{{0, 1}, {1, 0}},
	}
}

// palette returns a ramp palette with entry 255 set to pure blue, the usual
// transparency key, and any overrides applied.
func palette(over map[int][3]byte) [768]byte {
	var p [768]byte
	for i := 0; i < 256; i++ {
		p[i*3], p[i*3+1], p[i*3+2] = byte(i), byte(255-i), byte(i/2)
	}
	p[255*3], p[255*3+1], p[255*3+2] = 0, 0, 255
	for i, c := range over {
		p[i*3], p[i*3+1], p[i*3+2] = c[0], c[1], c[2]
	}
	return p
}
