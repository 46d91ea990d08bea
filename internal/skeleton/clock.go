package skeleton

import (
	"math"

	"hl-mdl-renderer/internal/mdl"
)

// FrameAt maps a playback time in seconds to a frame and a blend toward the
// next frame. Looping sequences wrap over their first numFrames-1 frames, as
// the last frame repeats the first. Other sequences hold the last frame.
func FrameAt(s mdl.Sequence, seconds float64) (frame int, blend float64) {
	n := int(s.NumFrames)
	if n <= 1 || s.FPS <= 0 || seconds <= 0 {
		return 0, 0
	}
	f := seconds * float64(s.FPS)
	span := float64(n - 1)
	if s.Looping() {
		f = math.Mod(f, span)
	} else if f >= span {
		return n - 1, 0
	}
	frame = int(f)
	return frame, f - float64(frame)
}

// Duration returns the playback length of one pass through the sequence.
func Duration(s mdl.Sequence) float64 {
	if s.FPS <= 0 || s.NumFrames <= 1 {
		return 0
	}
	return float64(s.NumFrames-1) / float64(s.FPS)
}
