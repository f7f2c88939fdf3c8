package encoding

import (
	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/spverrors"
)

const hexDigits = "0123456789abcdef"

// HexToBytes decodes a hex string into bytes. It rejects odd-length input
// and any non-hex character; both upper and lower case are accepted.
func HexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, ok := hexVal(s[2*i])
		if !ok {
			return nil, spverrors.Newf(spverrors.KindDecode, spverrors.ReasonHexMalformed, "invalid hex character %q", s[2*i])
		}
		lo, ok := hexVal(s[2*i+1])
		if !ok {
			return nil, spverrors.Newf(spverrors.KindDecode, spverrors.ReasonHexMalformed, "invalid hex character %q", s[2*i+1])
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// BytesToHex encodes b as lowercase hex.
func BytesToHex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[2*i] = hexDigits[v>>4]
		out[2*i+1] = hexDigits[v&0x0f]
	}
	return string(out)
}

// ConstantTimeHexEqual reports whether two equal-length hex strings decode
// to the same bytes, using a constant-time byte comparison so that timing
// never leaks how many leading bytes of a hash matched. It is the hex-string
// form of crypto.ConstantTimeCompare, which the envelope validator applies
// directly to its decoded hashes.
func ConstantTimeHexEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	ab, err := HexToBytes(a)
	if err != nil {
		return false
	}
	bb, err := HexToBytes(b)
	if err != nil {
		return false
	}
	return crypto.ConstantTimeCompare(ab, bb)
}
