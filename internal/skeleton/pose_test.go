package skeleton_test

import (
	"math"
	"os"
	"testing"

	"hl-mdl-renderer/internal/mathutil"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/mdl/mdltest"
	"hl-mdl-renderer/internal/skeleton"
)

const (
	seqIdle = 0
	seqWalk = 1
	seqExt  = 2
)

func simpleModel(t *testing.T) *mdl.Model {
	t.Helper()
	m, err := mdl.Parse(mdltest.Simple().Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func nearly(a, b, eps float64) bool { return math.Abs(a-b) < eps }

func quatNear(a, b mathutil.Quat, eps float64) bool {
	for i := range a {
		if !nearly(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func vecNear(a, b mathutil.Vec3, eps float64) bool {
	return nearly(a[0], b[0], eps) && nearly(a[1], b[1], eps) && nearly(a[2], b[2], eps)
}

func TestBoneQuaternion(t *testing.T) {
	m := simpleModel(t)

	tests := []struct {
		name  string
		frame int
		blend float64
		rz    float64
	}{
		{"frame 0", 0, 0, 0},
		{"frame 1", 1, 0, 0.5},
		{"halfway to frame 2", 1, 0.5, 0.75},
		{"last frame holds", 2, 0.9, 1.0},
		{"past the end", 10, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := skeleton.BoneQuaternion(m, seqIdle, 0, tt.frame, tt.blend)
			want := mathutil.EulerToQuat(0, 0, tt.rz)
			if !quatNear(got, want, 1e-6) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestBonePosition(t *testing.T) {
	m := simpleModel(t)

	tests := []struct {
		frame int
		blend float64
		x     float64
	}{
		{0, 0, 10},
		{0, 0.5, 12},
		{1, 0, 14},
		{2, 0, 14},
	}
	for _, tt := range tests {
		got := skeleton.BonePosition(m, seqIdle, 1, tt.frame, tt.blend)
		if !vecNear(got, mathutil.Vec3{tt.x, 0, 0}, 1e-6) {
			t.Errorf("BonePosition(frame %d, blend %v) = %v, want x=%v", tt.frame, tt.blend, got, tt.x)
		}
	}
}

func TestEvaluate(t *testing.T) {
	m := simpleModel(t)

	p, err := skeleton.Evaluate(m, seqIdle, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(p.World) != 2 {
		t.Fatalf("World = %d matrices", len(p.World))
	}
	if p.World[0] != p.Local[0] {
		t.Error("root world differs from local")
	}
	if p.Positions[0] != (mathutil.Vec3{1, 2, 3}) {
		t.Errorf("root position = %v", p.Positions[0])
	}

	want := mathutil.Vec3{1 + 14*math.Cos(0.5), 2 + 14*math.Sin(0.5), 3}
	if got := p.World[1].Translation(); !vecNear(got, want, 1e-5) {
		t.Errorf("arm world translation = %v, want %v", got, want)
	}
	if got := skeleton.AttachmentOrigin(p, m.Attachments[0]); !vecNear(got, mathutil.Vec3{1 + 18*math.Cos(0.5), 2 + 18*math.Sin(0.5), 3}, 1e-5) {
		t.Errorf("attachment origin = %v", got)
	}
}

func TestEvaluateRootMotion(t *testing.T) {
	m := simpleModel(t)

	p, err := skeleton.Evaluate(m, seqWalk, 1, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := p.Positions[0]; got != (mathutil.Vec3{0, 2, 0}) {
		t.Errorf("root position with motion removed = %v, want (0, 2, 0)", got)
	}

	p, err = skeleton.EvaluateWith(m, seqWalk, 1, skeleton.Options{KeepRootMotion: true})
	if err != nil {
		t.Fatalf("EvaluateWith: %v", err)
	}
	if got := p.Positions[0]; !vecNear(got, mathutil.Vec3{10, 2, 3}, 1e-6) {
		t.Errorf("root position = %v, want (10, 2, 3)", got)
	}
	if got := p.Positions[1]; got != (mathutil.Vec3{10, 0, 0}) {
		t.Errorf("motion stripped from a non-motion bone: %v", got)
	}
}

func TestEvaluateExternalSequence(t *testing.T) {
	m := simpleModel(t)
	p, err := skeleton.Evaluate(m, seqExt, 4, 0.5)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if p.Rotations[0] != mathutil.QuatIdentity() || p.Positions[0] != (mathutil.Vec3{1, 2, 3}) {
		t.Errorf("external sequence pose = %v %v, want bind pose", p.Rotations[0], p.Positions[0])
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	m := simpleModel(t)
	for _, seq := range []int{-1, 3} {
		if _, err := skeleton.Evaluate(m, seq, 0, 0); err == nil {
			t.Errorf("Evaluate(seq %d) succeeded", seq)
		}
	}
}

func TestLeetBoneQuaternion(t *testing.T) {
	const path = "../../testdata/leet.mdl"
	if _, err := os.Stat(path); err != nil {
		t.Skipf("reference model not available: %v", err)
	}
	m, err := mdl.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := skeleton.BoneQuaternion(m, 0, 0, 0, 0)
	want := mathutil.Quat{-0.0047994717, 0.15218495, 0.018867794, 0.98816025}
	if !quatNear(got, want, 1e-6) {
		t.Errorf("bone 0 quaternion = %v, want %v", got, want)
	}
}
