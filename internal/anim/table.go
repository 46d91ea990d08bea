package anim

import (
	"github.com/pkg/errors"
)

// Source locates the animation records of one sequence. Offsets holds one
// entry per bone; record b starts at Base + b*RecordSize. A nil Offsets
// marks a sequence whose curves are not in this buffer.
type Source struct {
	Base      int
	NumFrames int
	Offsets   [][Axes]uint16
}

// RecordSize is the encoded size of one bone's offset record.
const RecordSize = Axes * 2

// Table holds the decoded curves of every sequence, bone and axis. Rows are
// allocated only for sequences with at least one animated axis; each row is
// indexed bone*Axes+axis.
type Table struct {
	numSeq   int
	numBones int
	curves   [][]Curve
}

// ErrCurveBudget is returned when the curves reachable from the offset
// records decode to more runs than the buffer could hold without sharing.
var ErrCurveBudget = errors.New("anim: curve data exceeds buffer size")

// minRunSize is the smallest encoded run: a two-byte header and one sample.
const minRunSize = 4

type curveKey struct {
	off    int
	frames int
}

// Decode builds the curve table for all sequences. The first malformed or
// out-of-range curve aborts decoding. Offsets that point at the same curve
// share one decoded copy.
func Decode(data []byte, seqs []Source, numBones int) (*Table, error) {
	t := &Table{
		numSeq:   len(seqs),
		numBones: numBones,
		curves:   make([][]Curve, len(seqs)),
	}
	seen := make(map[curveKey]Curve)
	budget := len(data) / minRunSize
	for s, src := range seqs {
		if !animated(src.Offsets) {
			continue
		}
		row := make([]Curve, numBones*Axes)
		for b := 0; b < numBones && b < len(src.Offsets); b++ {
			record := src.Base + b*RecordSize
			for axis, rel := range src.Offsets[b] {
				if rel == 0 {
					continue
				}
				key := curveKey{off: record + int(rel), frames: src.NumFrames}
				c, ok := seen[key]
				if !ok {
					var at int
					var err error
					c, at, err = decodeCurve(data, key.off, src.NumFrames)
					if err == errZeroRun {
						return nil, &MalformedCurveError{Sequence: s, Bone: b, Axis: axis, Offset: at}
					}
					if err != nil {
						return nil, errors.Wrapf(err, "sequence %d bone %d axis %d", s, b, axis)
					}
					if budget -= len(c); budget < 0 {
						return nil, errors.Wrapf(ErrCurveBudget, "sequence %d bone %d axis %d", s, b, axis)
					}
					seen[key] = c
				}
				row[b*Axes+axis] = c
			}
		}
		t.curves[s] = row
	}
	return t, nil
}

func animated(offsets [][Axes]uint16) bool {
	for _, o := range offsets {
		if o != [Axes]uint16{} {
			return true
		}
	}
	return false
}

// NumSequences returns the number of sequences the table was built for.
func (t *Table) NumSequences() int { return t.numSeq }

// Curve returns the curve of one axis, or nil when the axis is constant or
// the coordinates are out of range.
func (t *Table) Curve(seq, bone, axis int) Curve {
	if t == nil || seq < 0 || seq >= t.numSeq || bone < 0 || bone >= t.numBones || axis < 0 || axis >= Axes {
		return nil
	}
	row := t.curves[seq]
	if row == nil {
		return nil
	}
	return row[bone*Axes+axis]
}

// Sample returns the raw sample of one axis at frame. ok is false when the
// axis is constant.
func (t *Table) Sample(seq, bone, axis, frame int) (v int16, ok bool) {
	c := t.Curve(seq, bone, axis)
	if c == nil {
		return 0, false
	}
	return c.At(frame), true
}
