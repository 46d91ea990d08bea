// Package anim decodes run-length compressed animation curves.
//
// Each animated axis of a bone is stored as a sequence of runs. A run starts
// with a two-byte header (valid, total) followed by valid int16 samples; the
// remaining total-valid frames of the run repeat the last sample.
package anim

import (
	"fmt"

	"github.com/pkg/errors"

	"hl-mdl-renderer/internal/binreader"
)

// Axes is the number of animated channels per bone: three translation axes
// followed by three rotation axes.
const Axes = 6

// Run is one compressed segment of a curve.
type Run struct {
	Valid   uint8
	Total   uint8
	Samples []int16
}

// Curve is the ordered run list of one axis. A nil Curve is constant.
type Curve []Run

// Pair returns the sample at frame and the sample at frame+1, following the
// lookup rules of the run encoding. Frames past the last decoded run hold the
// final sample. When frame+1 falls outside the decoded runs the second value
// repeats the first.
func (c Curve) Pair(frame int) (int16, int16) {
	if len(c) == 0 {
		return 0, 0
	}
	if frame < 0 {
		frame = 0
	}
	k := frame
	i := 0
	for i < len(c) && int(c[i].Total) <= k {
		k -= int(c[i].Total)
		i++
	}
	if i == len(c) {
		last := c[len(c)-1]
		v := last.Samples[len(last.Samples)-1]
		return v, v
	}

	r := c[i]
	valid := int(r.Valid)
	var a int16
	if valid > k {
		a = r.Samples[k]
		if valid > k+1 {
			return a, r.Samples[k+1]
		}
	} else {
		a = r.Samples[valid-1]
	}
	if int(r.Total) > k+1 {
		return a, a
	}
	if i+1 < len(c) {
		return a, c[i+1].Samples[0]
	}
	return a, a
}

// At returns the sample at frame.
func (c Curve) At(frame int) int16 {
	v, _ := c.Pair(frame)
	return v
}

// Frames returns the number of frames the decoded runs cover.
func (c Curve) Frames() int {
	n := 0
	for _, r := range c {
		n += int(r.Total)
	}
	return n
}

// MalformedCurveError reports a run with a zero valid or total count, which
// would otherwise stall decoding.
type MalformedCurveError struct {
	Sequence int
	Bone     int
	Axis     int
	Offset   int
}

func (e *MalformedCurveError) Error() string {
	return fmt.Sprintf("anim: malformed curve (sequence %d, bone %d, axis %d) at offset %d",
		e.Sequence, e.Bone, e.Axis, e.Offset)
}

// decodeCurve walks runs starting at off until they cover frames frames.
// Every run consumes at least one frame, so the walk is bounded by frames.
func decodeCurve(data []byte, off, frames int) (Curve, int, error) {
	if frames < 1 {
		frames = 1
	}
	c := binreader.NewCursor(data, off, "animation value")
	var runs Curve
	covered := 0
	for covered < frames {
		at := c.Offset()
		valid := c.Uint8()
		total := c.Uint8()
		if err := c.Err(); err != nil {
			return nil, at, err
		}
		if valid == 0 || total == 0 {
			return nil, at, errZeroRun
		}
		samples := make([]int16, valid)
		for i := range samples {
			samples[i] = c.Int16()
		}
		if err := c.Err(); err != nil {
			return nil, at, err
		}
		runs = append(runs, Run{Valid: valid, Total: total, Samples: samples})
		covered += int(total)
	}
	return runs, off, nil
}

var errZeroRun = errors.New("anim: zero-length run")
