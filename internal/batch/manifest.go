package batch

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ManifestEntry represents one model in the output manifest.
type ManifestEntry struct {
	Model     string `json:"model"`
	Name      string `json:"name,omitempty"`
	Image     string `json:"image,omitempty"`
	Bones     int    `json:"bones"`
	Sequences int    `json:"sequences"`
	Textures  int    `json:"textures"`
	Error     string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json listing every result, failures
// included.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Model:     r.Model,
			Name:      r.Name,
			Image:     r.Image,
			Bones:     r.Bones,
			Sequences: r.Sequences,
			Textures:  r.Textures,
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "batch: marshal manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "batch: write %s", path)
}
