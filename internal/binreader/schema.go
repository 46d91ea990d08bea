package binreader

import "fmt"

// Field is one entry of a record layout. Decode receives exactly Size bytes.
// A nil Decode skips the bytes.
type Field[T any] struct {
	Name   string
	Size   int
	Decode func(dst *T, b []byte)
}

// Schema is an ordered record layout. Fields are packed back to back.
type Schema[T any] struct {
	Name   string
	Fields []Field[T]
}

// Size returns the encoded size of one record.
func (s Schema[T]) Size() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Size
	}
	return n
}

// Read decodes a single record starting at off.
func Read[T any](data []byte, off int, s Schema[T]) (T, error) {
	var v T
	err := decodeInto(&v, data, off, s, s.Name)
	return v, err
}

// ReadN decodes n contiguous records starting at off.
func ReadN[T any](data []byte, off, n int, s Schema[T]) ([]T, error) {
	size := s.Size()
	if n < 0 {
		return nil, &OutOfBoundsError{Field: s.Name + " count", Offset: off, Size: n * size, Len: len(data)}
	}
	if err := checkRange(s.Name, off, n*size, len(data)); err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		if err := decodeInto(&out[i], data, off+i*size, s, fmt.Sprintf("%s[%d]", s.Name, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeInto[T any](dst *T, data []byte, off int, s Schema[T], record string) error {
	for _, f := range s.Fields {
		if err := checkRange(record+"."+f.Name, off, f.Size, len(data)); err != nil {
			return err
		}
		if f.Decode != nil {
			f.Decode(dst, data[off:off+f.Size])
		}
		off += f.Size
	}
	return nil
}

// Skip consumes n bytes without decoding them.
func Skip[T any](name string, n int) Field[T] {
	return Field[T]{Name: name, Size: n}
}

func I16[T any](name string, set func(*T, int16)) Field[T] {
	return Field[T]{Name: name, Size: 2, Decode: func(d *T, b []byte) { set(d, Int16(b)) }}
}

func U16[T any](name string, set func(*T, uint16)) Field[T] {
	return Field[T]{Name: name, Size: 2, Decode: func(d *T, b []byte) { set(d, Uint16(b)) }}
}

func I32[T any](name string, set func(*T, int32)) Field[T] {
	return Field[T]{Name: name, Size: 4, Decode: func(d *T, b []byte) { set(d, Int32(b)) }}
}

func F32[T any](name string, set func(*T, float32)) Field[T] {
	return Field[T]{Name: name, Size: 4, Decode: func(d *T, b []byte) { set(d, Float32(b)) }}
}

// Vec3 decodes three consecutive float32 values.
func Vec3[T any](name string, set func(*T, [3]float32)) Field[T] {
	return Field[T]{Name: name, Size: 12, Decode: func(d *T, b []byte) {
		set(d, [3]float32{Float32(b[0:]), Float32(b[4:]), Float32(b[8:])})
	}}
}

// String decodes a fixed-width, NUL-padded character array.
func String[T any](name string, n int, set func(*T, string)) Field[T] {
	return Field[T]{Name: name, Size: n, Decode: func(d *T, b []byte) { set(d, CString(b)) }}
}

// Array decodes n elements of elemSize bytes each, calling set once per element.
func Array[T, E any](name string, n, elemSize int, elem func([]byte) E, set func(*T, int, E)) Field[T] {
	return Field[T]{Name: name, Size: n * elemSize, Decode: func(d *T, b []byte) {
		for i := 0; i < n; i++ {
			set(d, i, elem(b[i*elemSize:(i+1)*elemSize]))
		}
	}}
}
