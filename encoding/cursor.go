package encoding

import "rubin.dev/spvcore/spverrors"

func errTruncated(what string) error {
	return spverrors.Newf(spverrors.KindDecode, spverrors.ReasonHexMalformed, "truncated input (%s)", what)
}

// Cursor is a forward-only reader over a byte slice, used for parsing raw
// transactions and header-chain files without repeatedly slicing and
// re-validating bounds at each call site.
type Cursor struct {
	b   []byte
	pos int
}

// NewCursor creates a Cursor reading from b starting at offset 0.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

// ReadExact reads and returns the next n bytes, advancing the cursor. The
// returned slice aliases the Cursor's backing array.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, errTruncated("exact")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8() (byte, error) {
	b, err := c.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU32LE reads a 4-byte little-endian value.
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.ReadExact(4)
	if err != nil {
		return 0, err
	}
	v, _ := ReadUint32LE(b)
	return v, nil
}

// ReadU64LE reads an 8-byte little-endian value.
func (c *Cursor) ReadU64LE() (uint64, error) {
	b, err := c.ReadExact(8)
	if err != nil {
		return 0, err
	}
	v, _ := ReadUint64LE(b)
	return v, nil
}

// ReadCompactSize reads one CompactSize-encoded integer.
func (c *Cursor) ReadCompactSize() (uint64, error) {
	v, err := ReadCompactSize(c.b, &c.pos)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// ReadHash32 reads a 32-byte hash in wire (natural) order.
func (c *Cursor) ReadHash32() ([32]byte, error) {
	var out [32]byte
	b, err := c.ReadExact(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}
