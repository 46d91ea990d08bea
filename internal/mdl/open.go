package mdl

import (
	"bytes"
	"os"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Open reads and parses a model file. Files compressed as a zstd frame are
// decompressed transparently.
func Open(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mdl: read %s", path)
	}
	data, err := Decompress(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "mdl: %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}

// Decompress returns raw unchanged unless it starts with the zstd frame
// magic, in which case it returns the decompressed payload.
func Decompress(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	data, err := zstd.Decompress(nil, raw)
	if err != nil {
		return nil, errors.Wrap(err, "zstd")
	}
	return data, nil
}
