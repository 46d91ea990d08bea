package mdl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingTextures is returned when a model carries no embedded
	// textures. Such models keep them in a companion "T" file.
	ErrMissingTextures = errors.New("mdl: model has no embedded textures")

	// ErrMalformedMesh is returned when a triangle command stream contains a
	// run shorter than three vertices or references a vertex outside its
	// sub-model.
	ErrMalformedMesh = errors.New("mdl: malformed triangle stream")

	// ErrInvalidSkeleton is returned when a bone's parent does not precede it
	// or an attachment or hitbox names a bone that does not exist.
	ErrInvalidSkeleton = errors.New("mdl: invalid skeleton")

	// ErrAnimationSize is returned when the animation offset records of all
	// stored sequences could not fit in the model buffer.
	ErrAnimationSize = errors.New("mdl: animation records exceed model size")
)

// UnsupportedVersionError is returned for any identifier or version other
// than IDST version 10.
type UnsupportedVersionError struct {
	ID      int32
	Version int32
}

func (e *UnsupportedVersionError) Error() string {
	if e.ID != Ident {
		return fmt.Sprintf("mdl: bad identifier %#08x (want IDST)", uint32(e.ID))
	}
	return fmt.Sprintf("mdl: unsupported version %d (want %d)", e.Version, Version)
}
