package encoding

import "rubin.dev/spvcore/spverrors"

// AppendCompactSize encodes n as a variable-length integer using the
// ledger's convention: values below 0xfd encode as a single byte; values up
// to 0xffff encode as 0xfd followed by 2 little-endian bytes; values up to
// 0xffffffff encode as 0xfe followed by 4 little-endian bytes; larger values
// encode as 0xff followed by 8 little-endian bytes.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		return AppendU16LE(dst, uint16(n))
	case n <= 0xffff_ffff:
		dst = append(dst, 0xfe)
		return AppendU32LE(dst, uint32(n))
	default:
		dst = append(dst, 0xff)
		return AppendU64LE(dst, n)
	}
}

// ReadCompactSize decodes one CompactSize value from b starting at *off,
// advancing *off past the bytes consumed. Non-minimal encodings (e.g. a
// 0xfd tag whose value would have fit in a single byte) are rejected so
// that a CompactSize value has exactly one valid encoding.
func ReadCompactSize(b []byte, off *int) (uint64, error) {
	if *off >= len(b) {
		return 0, errTruncated("compactsize tag")
	}
	tag := b[*off]
	*off++

	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		if len(b) < *off+2 {
			return 0, errTruncated("compactsize u16")
		}
		v, _ := ReadUint16LE(b[*off:])
		*off += 2
		if v < 0xfd {
			return 0, spverrors.New(spverrors.KindDecode, spverrors.ReasonVarintOversized, "non-minimal CompactSize (0xfd)")
		}
		return uint64(v), nil
	case tag == 0xfe:
		if len(b) < *off+4 {
			return 0, errTruncated("compactsize u32")
		}
		v, _ := ReadUint32LE(b[*off:])
		*off += 4
		if v <= 0xffff {
			return 0, spverrors.New(spverrors.KindDecode, spverrors.ReasonVarintOversized, "non-minimal CompactSize (0xfe)")
		}
		return uint64(v), nil
	default: // 0xff
		if len(b) < *off+8 {
			return 0, errTruncated("compactsize u64")
		}
		v, _ := ReadUint64LE(b[*off:])
		*off += 8
		if v <= 0xffff_ffff {
			return 0, spverrors.New(spverrors.KindDecode, spverrors.ReasonVarintOversized, "non-minimal CompactSize (0xff)")
		}
		return v, nil
	}
}
