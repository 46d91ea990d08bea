// Package binreader decodes little-endian fixed-layout records from a byte
// buffer. Records are described by ordered field tables instead of reflection,
// so every offset is explicit and bounds are checked before any read.
package binreader

import (
	"encoding/binary"
	"math"
)

func Int8(b []byte) int8 { return int8(b[0]) }

func Uint8(b []byte) uint8 { return b[0] }

func Int16(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) }

func Uint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

func Int32(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

func Uint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func Float32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }

// CString returns b up to the first NUL byte, or all of b when there is none.
func CString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
