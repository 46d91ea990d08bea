package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hl-mdl-renderer/internal/bake"
	"hl-mdl-renderer/internal/geometry"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/skeleton"
)

var spewConfig = func() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	c.MaxDepth = 3
	return c
}()

func main() {
	dump := flag.Bool("dump", false, "Dump header and record tables")
	seq := flag.Int("seq", 0, "Sequence for bone output")
	frame := flag.Int("frame", 0, "Frame for bone output")
	blend := flag.Float64("blend", 0, "Blend toward the next frame, 0..1")
	doBake := flag.Bool("bake", false, "Bake every frame of every sequence and report timing")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [flags] model.mdl")
		os.Exit(2)
	}
	path := flag.Arg(0)

	m, err := mdl.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("open model")
	}

	h := m.Header
	fmt.Printf("%s: %q version %d, %d bytes\n", path, h.Name, h.Version, h.Length)
	fmt.Printf("Bones: %d, Controllers: %d, Hitboxes: %d, Attachments: %d\n",
		len(m.Bones), len(m.BoneControllers), len(m.Hitboxes), len(m.Attachments))
	fmt.Printf("Sequences: %d, Groups: %d, Textures: %d, Skin families: %d\n",
		len(m.Sequences), len(m.SequenceGroups), len(m.Textures), h.NumSkinFamilies)

	if *dump {
		spewConfig.Dump(h, m.Bones, m.Sequences, m.Textures, m.BodyParts)
	}

	for bp, part := range m.BodyParts {
		fmt.Printf("Body part %d %q (%d models)\n", bp, part.Name, part.NumModels)
		for sm, sub := range m.SubModels[bp] {
			fmt.Printf("  Model %d %q: %d verts\n", sm, sub.Name, sub.NumVerts)
			for i := range m.Meshes[bp][sm] {
				tex := "-"
				if t, ok := m.MeshTexture(m.Meshes[bp][sm][i], 0); ok {
					tex = t.Name
				}
				fmt.Printf("    Mesh %d: %d triangle-list verts, texture %s\n",
					i, geometry.CountVertices(m.Stream(bp, sm, i)), tex)
			}
		}
	}

	for i, s := range m.Sequences {
		ext := ""
		if s.External() {
			ext = " (external)"
		}
		fmt.Printf("Seq %3d %-24q %3d frames @ %4.1f fps, %d events%s\n",
			i, s.Label, s.NumFrames, s.FPS, len(m.Events[i]), ext)
	}

	pose, err := skeleton.Evaluate(m, *seq, *frame, *blend)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluate pose")
	}
	fmt.Printf("Pose seq %d frame %d blend %.2f:\n", *seq, *frame, *blend)
	for i, b := range m.Bones {
		q, p := pose.Rotations[i], pose.Positions[i]
		fmt.Printf("  %-20q q=(%.8f, %.8f, %.8f, %.8f) p=(%.3f, %.3f, %.3f)\n",
			b.Name, q[0], q[1], q[2], q[3], p[0], p[1], p[2])
	}
	for i, a := range m.Attachments {
		o := skeleton.AttachmentOrigin(pose, a)
		fmt.Printf("  attachment %d %q at (%.3f, %.3f, %.3f)\n", i, a.Name, o[0], o[1], o[2])
	}

	if *doBake {
		start := time.Now()
		res, err := bake.Frames(m, bake.Options{})
		if err != nil {
			log.Fatal().Err(err).Msg("bake")
		}
		n := 0
		for _, frames := range res.Frames {
			n += len(frames)
		}
		fmt.Printf("Baked %d frames in %s\n", n, time.Since(start).Round(time.Millisecond))
	}
}
