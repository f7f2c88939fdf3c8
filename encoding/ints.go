package encoding

import "encoding/binary"

// AppendU16LE appends v as a 2-byte little-endian value to dst.
func AppendU16LE(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendU32LE appends v as a 4-byte little-endian value to dst.
func AppendU32LE(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendU64LE appends v as an 8-byte little-endian value to dst.
func AppendU64LE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// ReadUint16LE reads a 2-byte little-endian value from the front of b.
func ReadUint16LE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, errTruncated("u16le")
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32LE reads a 4-byte little-endian value from the front of b.
func ReadUint32LE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, errTruncated("u32le")
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64LE reads an 8-byte little-endian value from the front of b.
func ReadUint64LE(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, errTruncated("u64le")
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Reverse32 returns the byte-reversed copy of a 32-byte array, used
// throughout this core to flip between wire (natural) order and the
// display (reversed) order hashes are shown in.
func Reverse32(h [32]byte) [32]byte {
	var out [32]byte
	for i := 0; i < 32; i++ {
		out[i] = h[31-i]
	}
	return out
}
