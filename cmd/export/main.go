package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hl-mdl-renderer/internal/export"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/skeleton"
)

func main() {
	out := flag.String("o", "", "Output .glb path (default: model name with .glb)")
	seq := flag.Int("seq", 0, "Sequence to pose")
	frame := flag.Int("frame", 0, "Frame to pose")
	at := flag.Float64("t", -1, "Pose at this time in seconds instead of -frame")
	body := flag.Int("body", 0, "Packed body-group value")
	skin := flag.Int("skin", 0, "Skin family")
	noTex := flag.Bool("notex", false, "Do not embed textures")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: export [flags] model.mdl")
		os.Exit(2)
	}
	src := flag.Arg(0)
	dst := *out
	if dst == "" {
		base := strings.TrimSuffix(src, ".zst")
		dst = strings.TrimSuffix(base, filepath.Ext(base)) + ".glb"
	}

	m, err := mdl.Open(src)
	if err != nil {
		log.Fatal().Err(err).Msg("open model")
	}

	f, blend := *frame, 0.0
	if *at >= 0 && *seq >= 0 && *seq < len(m.Sequences) {
		f, blend = skeleton.FrameAt(m.Sequences[*seq], *at)
	}
	pose, err := skeleton.EvaluateWith(m, *seq, f, skeleton.Options{Blend: blend})
	if err != nil {
		log.Fatal().Err(err).Msg("evaluate pose")
	}

	doc, err := export.Document(m, pose, export.Options{Body: *body, Family: *skin, NoTextures: *noTex})
	if err != nil {
		log.Fatal().Err(err).Msg("build document")
	}

	w, err := os.Create(dst)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	if err := export.WriteGLB(w, doc); err != nil {
		w.Close()
		log.Fatal().Err(err).Msg("write glb")
	}
	if err := w.Close(); err != nil {
		log.Fatal().Err(err).Msg("close output")
	}
	fmt.Printf("Wrote %s: %d nodes, %d meshes, %d materials\n", dst, len(doc.Nodes), len(doc.Meshes), len(doc.Materials))
}
