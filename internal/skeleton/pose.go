// Package skeleton evaluates bone transforms for a sequence frame.
package skeleton

import (
	"github.com/pkg/errors"

	"hl-mdl-renderer/internal/anim"
	"hl-mdl-renderer/internal/mathutil"
	"hl-mdl-renderer/internal/mdl"
)

// Pose holds per-bone transforms, indexed like Model.Bones.
type Pose struct {
	Rotations []mathutil.Quat
	Positions []mathutil.Vec3
	Local     []mathutil.Mat4
	World     []mathutil.Mat4
}

// Options tunes Evaluate. The zero value samples exactly at frame with root
// motion removed.
type Options struct {
	Blend          float64
	KeepRootMotion bool
}

// Evaluate computes the pose of seq at frame, interpolating toward frame+1 by
// blend in [0,1].
func Evaluate(m *mdl.Model, seq, frame int, blend float64) (*Pose, error) {
	return EvaluateWith(m, seq, frame, Options{Blend: blend})
}

// EvaluateWith is Evaluate with explicit options.
func EvaluateWith(m *mdl.Model, seq, frame int, opts Options) (*Pose, error) {
	if seq < 0 || seq >= len(m.Sequences) {
		return nil, errors.Errorf("skeleton: sequence %d out of range (%d sequences)", seq, len(m.Sequences))
	}
	n := len(m.Bones)
	p := &Pose{
		Rotations: make([]mathutil.Quat, n),
		Positions: make([]mathutil.Vec3, n),
		Local:     make([]mathutil.Mat4, n),
		World:     make([]mathutil.Mat4, n),
	}
	s := m.Sequences[seq]

	for i, bone := range m.Bones {
		q := BoneQuaternion(m, seq, i, frame, opts.Blend)
		pos := BonePosition(m, seq, i, frame, opts.Blend)
		if !opts.KeepRootMotion && i == int(s.MotionBone) {
			pos = stripMotion(pos, s.MotionType)
		}
		p.Rotations[i] = q
		p.Positions[i] = pos
		p.Local[i] = mathutil.FromQuatTranslation(q, pos)

		// Parents precede children; Parse rejects anything else.
		if bone.Parent >= 0 {
			p.World[i] = mathutil.Mat4Mul(p.World[bone.Parent], p.Local[i])
		} else {
			p.World[i] = p.Local[i]
		}
	}
	return p, nil
}

func stripMotion(pos mathutil.Vec3, motion int32) mathutil.Vec3 {
	for axis, flag := range [3]int32{mdl.MotionX, mdl.MotionY, mdl.MotionZ} {
		if motion&flag != 0 {
			pos[axis] = 0
		}
	}
	return pos
}

// BoneQuaternion returns the rotation of one bone. When the samples at frame
// and frame+1 differ, the two rotations are slerped by blend.
func BoneQuaternion(m *mdl.Model, seq, bone, frame int, blend float64) mathutil.Quat {
	var a1, a2 [3]float64
	for axis := 0; axis < 3; axis++ {
		a1[axis], a2[axis] = channel(m, seq, bone, axis+3, frame)
	}
	q1 := mathutil.EulerToQuat(a1[0], a1[1], a1[2])
	if a1 == a2 {
		return q1
	}
	return mathutil.Slerp(q1, mathutil.EulerToQuat(a2[0], a2[1], a2[2]), blend)
}

// BonePosition returns the translation of one bone, linearly interpolated
// toward frame+1 by blend.
func BonePosition(m *mdl.Model, seq, bone, frame int, blend float64) mathutil.Vec3 {
	var p1, p2 mathutil.Vec3
	for axis := 0; axis < 3; axis++ {
		p1[axis], p2[axis] = channel(m, seq, bone, axis, frame)
	}
	return p1.Lerp(p2, blend)
}

// channel returns the decoded value of one degree of freedom at frame and
// frame+1. Constant channels return the bone's default twice.
func channel(m *mdl.Model, seq, bone, ch, frame int) (float64, float64) {
	b := m.Bones[bone]
	v := float64(b.Value[ch])
	var c anim.Curve
	if m.Curves != nil {
		c = m.Curves.Curve(seq, bone, ch)
	}
	if c == nil {
		return v, v
	}
	s1, s2 := c.Pair(frame)
	scale := float64(b.Scale[ch])
	return v + float64(s1)*scale, v + float64(s2)*scale
}

// AttachmentOrigin returns the world position of an attachment in pose.
func AttachmentOrigin(p *Pose, a mdl.Attachment) mathutil.Vec3 {
	return p.World[a.Bone].MulPoint(mathutil.V3(a.Origin))
}
