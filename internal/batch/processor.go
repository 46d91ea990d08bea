// Package batch renders preview images for every model in a directory tree.
package batch

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/postprocess"
	"hl-mdl-renderer/internal/raster"
	"hl-mdl-renderer/internal/skeleton"
	"hl-mdl-renderer/internal/texture"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir   string
	Format      texture.Format
	RenderSize  int
	Supersample int
	Workers     int
	Yaw, Pitch  float64
	Filter      raster.Filter

	Sequence int
	Frame    int
	Body     int
	Skin     int
}

// Result holds the outcome of processing one model.
type Result struct {
	Model     string
	Name      string
	Image     string // relative to OutputDir, slash separated
	Bones     int
	Sequences int
	Textures  int
	Success   bool
	Error     string
}

// progressInterval is how often Run logs throughput.
var progressInterval = 2 * time.Second

// Run processes all jobs using a worker pool. Results are in job order.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					log.Info().
						Int64("done", p).
						Int("total", total).
						Float64("rate", float64(p)/time.Since(start).Seconds()).
						Msg("progress")
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processModel(cfg, jobs[idx])
				if !results[idx].Success {
					log.Warn().Str("model", jobs[idx].Rel).Str("err", results[idx].Error).Msg("render failed")
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	log.Debug().Int("models", total).Dur("elapsed", time.Since(start)).Msg("batch finished")
	return results
}

// imagePath maps a model's relative path to its preview's relative path.
func imagePath(rel string, f texture.Format) string {
	rel = strings.TrimSuffix(rel, zstdExt)
	return strings.TrimSuffix(rel, path.Ext(rel)) + f.Ext()
}

func processModel(cfg Config, job Job) Result {
	res := Result{Model: job.Rel}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	m, err := mdl.Open(job.Path)
	if err != nil {
		return fail(err)
	}
	res.Name = m.Header.Name
	res.Bones = len(m.Bones)
	res.Sequences = len(m.Sequences)
	res.Textures = len(m.Textures)

	seq, frame := cfg.Sequence, cfg.Frame
	if seq < 0 || seq >= len(m.Sequences) {
		seq = 0
	}
	if len(m.Sequences) > 0 {
		frame = min(max(frame, 0), max(int(m.Sequences[seq].NumFrames)-1, 0))
	}
	pose, err := skeleton.Evaluate(m, seq, frame, 0)
	if err != nil {
		return fail(err)
	}

	meshes := raster.PoseMeshes(m, pose, cfg.Body, cfg.Skin)
	if len(meshes) == 0 {
		return fail(errors.New("no triangles for the selected body"))
	}

	ss := max(cfg.Supersample, 1)
	img := raster.Render(meshes, texture.NewCache(m), raster.Options{
		Size:        cfg.RenderSize,
		Supersample: ss,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		Filter:      cfg.Filter,
	})
	img = postprocess.Downsample(img, ss)

	rel := imagePath(job.Rel, cfg.Format)
	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(rel))
	if err := ensureDir(outPath); err != nil {
		return fail(err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	if err := texture.Encode(f, img, cfg.Format); err != nil {
		return fail(err)
	}
	res.Image = rel
	res.Success = true
	return res
}
