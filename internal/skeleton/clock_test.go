package skeleton

import (
	"math"
	"testing"

	"hl-mdl-renderer/internal/mdl"
)

func TestFrameAt(t *testing.T) {
	loop := mdl.Sequence{FPS: 10, NumFrames: 3, Flags: mdl.SequenceLooping}
	once := mdl.Sequence{FPS: 30, NumFrames: 2}

	tests := []struct {
		name    string
		seq     mdl.Sequence
		seconds float64
		frame   int
		blend   float64
	}{
		{"start", loop, 0, 0, 0},
		{"mid loop", loop, 0.15, 1, 0.5},
		{"wraps", loop, 0.25, 0, 0.5},
		{"one-shot early", once, 0.01, 0, 0.3},
		{"one-shot holds", once, 1, 1, 0},
		{"single frame", mdl.Sequence{FPS: 10, NumFrames: 1}, 3, 0, 0},
		{"no fps", mdl.Sequence{NumFrames: 5}, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, blend := FrameAt(tt.seq, tt.seconds)
			if frame != tt.frame || math.Abs(blend-tt.blend) > 1e-9 {
				t.Errorf("FrameAt = (%d, %v), want (%d, %v)", frame, blend, tt.frame, tt.blend)
			}
		})
	}

	if d := Duration(loop); math.Abs(d-0.2) > 1e-9 {
		t.Errorf("Duration = %v, want 0.2", d)
	}
}
