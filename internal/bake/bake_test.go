package bake_test

import (
	"reflect"
	"runtime"
	"testing"
	"time"

	"hl-mdl-renderer/internal/bake"
	"hl-mdl-renderer/internal/geometry"
	"hl-mdl-renderer/internal/mdl"
	"hl-mdl-renderer/internal/mdl/mdltest"
	"hl-mdl-renderer/internal/skeleton"
)

func simpleModel(t *testing.T) *mdl.Model {
	t.Helper()
	m, err := mdl.Parse(mdltest.Simple().Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestFramesShape(t *testing.T) {
	m := simpleModel(t)
	res, err := bake.Frames(m, bake.Options{Workers: 4})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(res.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3", len(res.Frames))
	}
	for i, want := range []int{3, 2, 10} {
		if got := len(res.Frames[i]); got != want {
			t.Errorf("sequence %d: %d frames, want %d", i, got, want)
		}
		for f, fr := range res.Frames[i] {
			if fr.Sequence != i || fr.Index != f {
				t.Errorf("slot [%d][%d] holds (%d,%d)", i, f, fr.Sequence, fr.Index)
			}
		}
	}
	if n := len(res.Frames[0][0].Meshes[0][0][1]); n != 12 {
		t.Errorf("fan mesh skinned to %d vertices, want 12", n)
	}
	if n := len(res.Frames[0][0].Meshes[1][1]); n != 0 {
		t.Errorf("blank sub-model has %d meshes", n)
	}
}

func TestFramesMatchDirectSkinning(t *testing.T) {
	m := simpleModel(t)
	res, err := bake.Frames(m, bake.Options{Workers: 3})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	for seq := range m.Sequences {
		for f, fr := range res.Frames[seq] {
			pose, err := skeleton.Evaluate(m, seq, f, 0)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			mesh := geometry.FromModel(m, 0, 0, 0, 0)
			want := geometry.Skin(mesh, m.VertexBones[0][0], pose.World)
			if !reflect.DeepEqual(fr.Meshes[0][0][0], want) {
				t.Errorf("seq %d frame %d: %v, want %v", seq, f, fr.Meshes[0][0][0], want)
			}
		}
	}

	walk := res.Frames[1][1].Meshes[0][0][0][0]
	if walk != [3]float32{0, 2, 0} {
		t.Errorf("walk frame 1 vertex 0 = %v, want root motion removed", walk)
	}
}

func TestFramesDeterministic(t *testing.T) {
	m := simpleModel(t)
	a, err := bake.Frames(m, bake.Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := bake.Frames(m, bake.Options{Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Frames, b.Frames) {
		t.Error("results depend on worker count")
	}
}

func TestFramesSelection(t *testing.T) {
	m := simpleModel(t)
	res, err := bake.Frames(m, bake.Options{Sequences: []int{1}, Family: 1})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(res.Frames) != 1 || res.Frames[0][0].Sequence != 1 {
		t.Errorf("selection not honored: %d sequences", len(res.Frames))
	}
	if res.Meshes[0][0][0].Texture != 1 {
		t.Errorf("family 1 mesh texture = %d", res.Meshes[0][0][0].Texture)
	}

	if _, err := bake.Frames(m, bake.Options{Sequences: []int{3}}); err == nil {
		t.Error("out-of-range sequence accepted")
	}
}

func TestFramesReusesWorkers(t *testing.T) {
	m := simpleModel(t)
	if _, err := bake.Frames(m, bake.Options{Workers: 8}); err != nil {
		t.Fatalf("Frames: %v", err)
	}
	before := runtime.NumGoroutine()

	for range 10 {
		if _, err := bake.Frames(m, bake.Options{Workers: 8}); err != nil {
			t.Fatalf("Frames: %v", err)
		}
	}
	time.Sleep(100 * time.Millisecond)
	runtime.GC()

	// A few goroutines of slack for the runtime and the test harness.
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("goroutines grew from %d to %d over repeated calls", before, after)
	}
}
