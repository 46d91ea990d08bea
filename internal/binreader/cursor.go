package binreader

// Cursor reads primitives sequentially from a buffer. The first read that
// would run past the end sets a sticky error; later reads return zero.
type Cursor struct {
	data  []byte
	off   int
	field string
	err   error
}

// NewCursor returns a cursor positioned at off. field labels any bounds error.
func NewCursor(data []byte, off int, field string) *Cursor {
	return &Cursor{data: data, off: off, field: field}
}

func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if err := checkRange(c.field, c.off, n, len(c.data)); err != nil {
		c.err = err
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b
}

// Offset returns the position of the next read.
func (c *Cursor) Offset() int { return c.off }

// Err returns the first bounds error, if any.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) Uint8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *Cursor) Int16() int16 {
	if b := c.take(2); b != nil {
		return Int16(b)
	}
	return 0
}

func (c *Cursor) Uint16() uint16 {
	if b := c.take(2); b != nil {
		return Uint16(b)
	}
	return 0
}

func (c *Cursor) Int32() int32 {
	if b := c.take(4); b != nil {
		return Int32(b)
	}
	return 0
}

func (c *Cursor) Float32() float32 {
	if b := c.take(4); b != nil {
		return Float32(b)
	}
	return 0
}
