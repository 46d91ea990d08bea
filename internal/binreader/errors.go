package binreader

import "fmt"

// OutOfBoundsError reports a read of Size bytes at Offset that does not fit
// in a buffer of Len bytes. Field names the record field being decoded.
type OutOfBoundsError struct {
	Field  string
	Offset int
	Size   int
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("binreader: %s: read of %d bytes at offset %d exceeds buffer of %d bytes",
		e.Field, e.Size, e.Offset, e.Len)
}

// checkRange returns an *OutOfBoundsError when [off, off+size) is not inside a
// buffer of n bytes.
func checkRange(field string, off, size, n int) error {
	if off < 0 || size < 0 || off > n || size > n-off {
		return &OutOfBoundsError{Field: field, Offset: off, Size: size, Len: n}
	}
	return nil
}
