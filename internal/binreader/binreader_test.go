package binreader

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestPrimitives(t *testing.T) {
	t.Run("signed and unsigned byte", func(t *testing.T) {
		b := []byte{0xFF}
		if got := Int8(b); got != -1 {
			t.Errorf("Int8 = %d, want -1", got)
		}
		if got := Uint8(b); got != 255 {
			t.Errorf("Uint8 = %d, want 255", got)
		}
	})

	t.Run("int16", func(t *testing.T) {
		b := []byte{0xFE, 0xFF}
		if got := Int16(b); got != -2 {
			t.Errorf("Int16 = %d, want -2", got)
		}
		if got := Uint16(b); got != 0xFFFE {
			t.Errorf("Uint16 = %#x, want 0xfffe", got)
		}
	})

	t.Run("int32 and float32", func(t *testing.T) {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint32(b, 1414743113)
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(-1.5))
		if got := Int32(b); got != 1414743113 {
			t.Errorf("Int32 = %d", got)
		}
		if got := Float32(b[4:]); got != -1.5 {
			t.Errorf("Float32 = %v, want -1.5", got)
		}
	})

	t.Run("c string", func(t *testing.T) {
		b := make([]byte, 32)
		copy(b, "hello world")
		if got := CString(b); got != "hello world" {
			t.Errorf("CString = %q", got)
		}
		if got := CString([]byte("full")); got != "full" {
			t.Errorf("unterminated CString = %q", got)
		}
	})
}

type pair struct {
	Name  string
	Count int32
	Scale [3]float32
	Offs  [2]uint16
}

var pairSchema = Schema[pair]{
	Name: "pair",
	Fields: []Field[pair]{
		String("name", 8, func(p *pair, v string) { p.Name = v }),
		I32("count", func(p *pair, v int32) { p.Count = v }),
		Skip[pair]("pad", 4),
		Vec3("scale", func(p *pair, v [3]float32) { p.Scale = v }),
		Array("offs", 2, 2, Uint16, func(p *pair, i int, v uint16) { p.Offs[i] = v }),
	},
}

func encodePair(name string, count int32, scale [3]float32, offs [2]uint16) []byte {
	b := make([]byte, 32)
	copy(b, name)
	binary.LittleEndian.PutUint32(b[8:], uint32(count))
	for i, f := range scale {
		binary.LittleEndian.PutUint32(b[16+i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint16(b[28:], offs[0])
	binary.LittleEndian.PutUint16(b[30:], offs[1])
	return b
}

func TestSchemaRead(t *testing.T) {
	if got := pairSchema.Size(); got != 32 {
		t.Fatalf("Size = %d, want 32", got)
	}

	data := append([]byte{0xAA, 0xBB}, encodePair("bone", -1, [3]float32{1, 2, 3}, [2]uint16{7, 9})...)
	data = append(data, encodePair("spine", 4, [3]float32{0.5, 0, -1}, [2]uint16{0, 65535})...)

	p, err := Read(data, 2, pairSchema)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if p.Name != "bone" || p.Count != -1 || p.Scale != [3]float32{1, 2, 3} || p.Offs != [2]uint16{7, 9} {
		t.Errorf("Read = %+v", p)
	}

	all, err := ReadN(data, 2, 2, pairSchema)
	if err != nil {
		t.Fatalf("ReadN: %v", err)
	}
	if len(all) != 2 || all[1].Name != "spine" || all[1].Offs[1] != 65535 {
		t.Errorf("ReadN = %+v", all)
	}
}

func TestSchemaOutOfBounds(t *testing.T) {
	data := encodePair("x", 1, [3]float32{}, [2]uint16{})

	tests := []struct {
		name  string
		read  func() error
		field string
	}{
		{"truncated record", func() error { _, err := Read(data[:20], 0, pairSchema); return err }, "pair.scale"},
		{"too many records", func() error { _, err := ReadN(data, 0, 2, pairSchema); return err }, "pair"},
		{"negative offset", func() error { _, err := Read(data, -4, pairSchema); return err }, "pair.name"},
		{"negative count", func() error { _, err := ReadN(data, 0, -1, pairSchema); return err }, "pair count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read()
			var oob *OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("err = %v, want *OutOfBoundsError", err)
			}
			if oob.Field != tt.field {
				t.Errorf("Field = %q, want %q", oob.Field, tt.field)
			}
		})
	}
}

func TestCursor(t *testing.T) {
	data := []byte{0x03, 0x05, 0xFF, 0xFF, 0x10, 0x00}
	c := NewCursor(data, 0, "anim")
	if v := c.Uint8(); v != 3 {
		t.Errorf("Uint8 = %d", v)
	}
	if v := c.Uint8(); v != 5 {
		t.Errorf("Uint8 = %d", v)
	}
	if v := c.Int16(); v != -1 {
		t.Errorf("Int16 = %d", v)
	}
	if v := c.Uint16(); v != 16 {
		t.Errorf("Uint16 = %d", v)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
	if v := c.Int16(); v != 0 {
		t.Errorf("read past end = %d, want 0", v)
	}
	var oob *OutOfBoundsError
	if !errors.As(c.Err(), &oob) || oob.Offset != 6 || oob.Field != "anim" {
		t.Fatalf("Err = %v", c.Err())
	}
	c.Uint8()
	if c.Offset() != 6 {
		t.Errorf("Offset moved after error: %d", c.Offset())
	}
}

func TestInt16s(t *testing.T) {
	v := Int16s([]byte{0x04, 0x00, 0xFD, 0xFF, 0x00, 0x00, 0x7F})
	if v.Len() != 3 {
		t.Fatalf("Len = %d, want 3", v.Len())
	}
	want := []int16{4, -3, 0}
	for i, w := range want {
		if got := v.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}
