// Package bake precomputes skinned vertex positions for every frame of every
// sequence of a model.
package bake

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/pkg/errors"

	"hl-mdl-renderer/internal/geometry"
	"hl-mdl-renderer/internal/mathutil"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/skeleton"
)

const queueSize = 256

var (
	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
)

// sharedPool returns the process-wide pose pool. Its workers live for the
// life of the process and are reused by every Frames call.
func sharedPool() worker.DynamicWorkerPool {
	poolOnce.Do(func() {
		pool = worker.NewDynamicWorkerPool(runtime.NumCPU(), queueSize, time.Second)
	})
	return pool
}

// Options controls Frames.
type Options struct {
	// Workers bounds the number of pose evaluations one call keeps in
	// flight on the shared pool. Zero means runtime.NumCPU().
	Workers int
	// Family selects the skin family used to resolve mesh textures.
	Family int
	// Sequences restricts baking to the listed sequence indices. Nil bakes
	// every sequence.
	Sequences []int
	Pose      skeleton.Options
}

// Frame holds the skinned positions of one (sequence, frame) pose, indexed
// [bodyPart][subModel][mesh].
type Frame struct {
	Sequence int
	Index    int
	Bones    []mathutil.Mat4
	Meshes   [][][][][3]float32
}

// Result is the output of Frames. Meshes carries the bind-space triangle
// lists whose vertices Frame.Meshes transforms.
type Result struct {
	Meshes [][][]*geometry.Mesh
	// Frames is indexed [i][frame] where i follows Options.Sequences, or the
	// sequence index when Options.Sequences is nil.
	Frames [][]Frame
}

// Frames evaluates every requested (sequence, frame) pose on a worker pool
// and skins all meshes with it. The result is deterministic regardless of
// scheduling; the first error by slot order is returned.
func Frames(m *mdl.Model, opts Options) (*Result, error) {
	seqs := opts.Sequences
	if seqs == nil {
		seqs = make([]int, len(m.Sequences))
		for i := range seqs {
			seqs[i] = i
		}
	}
	for _, s := range seqs {
		if s < 0 || s >= len(m.Sequences) {
			return nil, errors.Errorf("bake: sequence %d out of range [0,%d)", s, len(m.Sequences))
		}
	}

	res := &Result{
		Meshes: buildMeshes(m, opts.Family),
		Frames: make([][]Frame, len(seqs)),
	}
	errs := make([][]error, len(seqs))
	for i, s := range seqs {
		n := max(int(m.Sequences[s].NumFrames), 1)
		res.Frames[i] = make([]Frame, n)
		errs[i] = make([]error, n)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := sharedPool()

	// In-flight tasks per call never exceed workers or the pool queue.
	slots := make(chan struct{}, min(workers, queueSize))
	var wg sync.WaitGroup
	taskID := 0
	for i, s := range seqs {
		for f := range res.Frames[i] {
			wg.Add(1)
			slots <- struct{}{}
			id := taskID
			taskID++
			p.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer func() { <-slots; wg.Done() }()
					res.Frames[i][f], errs[i][f] = bakeFrame(m, res.Meshes, s, f, opts.Pose)
					return nil, nil
				},
			})
		}
	}
	wg.Wait()

	for i := range errs {
		for f, err := range errs[i] {
			if err != nil {
				return nil, errors.Wrapf(err, "bake: sequence %d frame %d", seqs[i], f)
			}
		}
	}
	return res, nil
}

func buildMeshes(m *mdl.Model, family int) [][][]*geometry.Mesh {
	out := make([][][]*geometry.Mesh, len(m.Meshes))
	for bp := range m.Meshes {
		out[bp] = make([][]*geometry.Mesh, len(m.Meshes[bp]))
		for sm := range m.Meshes[bp] {
			out[bp][sm] = make([]*geometry.Mesh, len(m.Meshes[bp][sm]))
			for i := range m.Meshes[bp][sm] {
				out[bp][sm][i] = geometry.FromModel(m, bp, sm, i, family)
			}
		}
	}
	return out
}

func bakeFrame(m *mdl.Model, meshes [][][]*geometry.Mesh, seq, frame int, opts skeleton.Options) (Frame, error) {
	pose, err := skeleton.EvaluateWith(m, seq, frame, opts)
	if err != nil {
		return Frame{}, err
	}
	out := Frame{
		Sequence: seq,
		Index:    frame,
		Bones:    pose.World,
		Meshes:   make([][][][][3]float32, len(meshes)),
	}
	for bp := range meshes {
		out.Meshes[bp] = make([][][][3]float32, len(meshes[bp]))
		for sm := range meshes[bp] {
			out.Meshes[bp][sm] = make([][][3]float32, len(meshes[bp][sm]))
			for i, mesh := range meshes[bp][sm] {
				out.Meshes[bp][sm][i] = geometry.Skin(mesh, m.VertexBones[bp][sm], pose.World)
			}
		}
	}
	return out, nil
}
