package binreader

// Int16s is a little-endian int16 view over a byte slice. A trailing odd
// byte is ignored.
type Int16s []byte

// Len returns the number of whole int16 values in the view.
func (v Int16s) Len() int { return len(v) / 2 }

// At returns the i-th value. It panics when i is out of range.
func (v Int16s) At(i int) int16 { return Int16(v[i*2 : i*2+2]) }
