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

	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/texture"
)

func dumpTexture(c *texture.Cache, i int, t mdl.Texture, dir string, f texture.Format, maxSide int) (string, error) {
	img, err := c.Get(i)
	if err != nil {
		return "", err
	}
	img = texture.Thumbnail(img, maxSide)

	name := strings.TrimSuffix(t.Name, filepath.Ext(t.Name)) + f.Ext()
	dst := filepath.Join(dir, filepath.Base(name))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()
	return dst, texture.Encode(out, img, f)
}

func main() {
	outDir := flag.String("out", ".", "Output directory")
	format := flag.String("format", "png", "Image format: png, tga or webp")
	maxSide := flag.Int("max", 0, "Scale textures down so neither side exceeds this (0: keep)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: texdump [flags] model.mdl")
		os.Exit(2)
	}
	f, err := texture.ParseFormat(*format)
	if err != nil {
		log.Fatal().Err(err).Msg("bad format")
	}
	m, err := mdl.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("open model")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output directory")
	}

	cache := texture.NewCache(m)
	failed := 0
	for i, t := range m.Textures {
		dst, err := dumpTexture(cache, i, t, *outDir, f, *maxSide)
		if err != nil {
			log.Error().Err(err).Str("texture", t.Name).Msg("dump failed")
			failed++
			continue
		}
		flags := ""
		if t.Masked() {
			flags += " masked"
		}
		if t.Additive() {
			flags += " additive"
		}
		fmt.Printf("OK  %s %dx%d%s -> %s\n", t.Name, t.Width, t.Height, flags, dst)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
