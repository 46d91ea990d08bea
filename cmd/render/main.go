package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hl-mdl-renderer/internal/batch"
	"hl-mdl-renderer/internal/config"
	"hl-mdl-renderer/internal/raster"
	"hl-mdl-renderer/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to a JSON or YAML config file")
	testN := flag.Int("test", 0, "Render only the first N models")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	modelDir := flag.String("models", "", "Directory to scan for .mdl files (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <models>/../renders)")
	format := flag.String("format", "", "Preview format: webp, png or tga (default: webp)")
	size := flag.Int("size", 0, "Preview edge in pixels (default: 256)")
	seq := flag.Int("seq", 0, "Sequence to pose")
	frame := flag.Int("frame", 0, "Frame to pose")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
	}

	cfg.Resolve(config.Flags{
		ModelDir:  *modelDir,
		OutputDir: *outputDir,
		Format:    *format,
		Size:      *size,
		Workers:   *workers,
		Sequence:  *seq,
		Frame:     *frame,
	})

	if cfg.ModelDir == "" {
		log.Fatal().Msg("cannot find a models directory; use -models or a config file")
	}
	imgFormat, err := texture.ParseFormat(cfg.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("bad format")
	}

	jobs, err := batch.Scan(cfg.ModelDir)
	if err != nil {
		log.Fatal().Err(err).Msg("scanning models")
	}
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}
	if len(jobs) == 0 {
		fmt.Println("No models to render.")
		os.Exit(0)
	}

	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}
	fmt.Printf("Studio model preview renderer → %s%s\n", imgFormat, mode)
	fmt.Printf("Models: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	filter := raster.Bilinear
	if cfg.Nearest {
		filter = raster.Nearest
	}
	results := batch.Run(batch.Config{
		OutputDir:   cfg.OutputDir,
		Format:      imgFormat,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		Filter:      filter,
		Sequence:    cfg.Sequence,
		Frame:       cfg.Frame,
		Body:        cfg.Body,
		Skin:        cfg.Skin,
	}, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", r.Model, r.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error().Err(err).Msg("creating output directory")
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		log.Warn().Err(err).Msg("manifest write failed")
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
