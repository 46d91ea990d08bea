package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Job is one model file to render.
type Job struct {
	Path string // absolute or as given
	Rel  string // relative to the scanned directory, slash separated
}

const zstdExt = ".zst"

// modelStem returns the file name without ".mdl" or ".mdl.zst", and false
// for other files.
func modelStem(name string) (string, bool) {
	base := strings.TrimSuffix(name, zstdExt)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".mdl") {
		return "", false
	}
	return strings.TrimSuffix(base, ext), true
}

// companionOf reports whether stem names a texture file ("fooT") or a
// sequence group file ("foo01") belonging to another model in the same
// directory.
func companionOf(stem string, stems map[string]bool) bool {
	if n := len(stem); n > 1 && (stem[n-1] == 'T' || stem[n-1] == 't') && stems[strings.ToLower(stem[:n-1])] {
		return true
	}
	if n := len(stem); n > 2 && unicode.IsDigit(rune(stem[n-1])) && unicode.IsDigit(rune(stem[n-2])) &&
		stems[strings.ToLower(stem[:n-2])] {
		return true
	}
	return false
}

// Scan walks dir for model files and returns them in path order. Texture
// and sequence group companions of another model are skipped.
func Scan(dir string) ([]Job, error) {
	byDir := make(map[string][]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := modelStem(d.Name()); ok {
			byDir[filepath.Dir(path)] = append(byDir[filepath.Dir(path)], path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "batch: scan %s", dir)
	}

	var jobs []Job
	for _, paths := range byDir {
		stems := make(map[string]bool, len(paths))
		for _, p := range paths {
			s, _ := modelStem(filepath.Base(p))
			stems[strings.ToLower(s)] = true
		}
		for _, p := range paths {
			s, _ := modelStem(filepath.Base(p))
			if companionOf(s, stems) {
				continue
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				rel = filepath.Base(p)
			}
			jobs = append(jobs, Job{Path: p, Rel: filepath.ToSlash(rel)})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Rel < jobs[j].Rel })
	return jobs, nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
