package encoding

import (
	"math/big"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/spverrors"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Index [256]int8

func init() {
	for i := range base58Index {
		base58Index[i] = -1
	}
	for i := 0; i < len(base58Alphabet); i++ {
		base58Index[base58Alphabet[i]] = int8(i)
	}
}

var bigRadix = big.NewInt(58)
var bigZero = big.NewInt(0)

// base58Encode encodes raw bytes (no checksum framing) into a base58
// string, preserving leading zero bytes as leading '1' characters.
func base58Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)

	var out []byte
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}

	// Preserve leading zero bytes as leading '1's.
	for _, v := range b {
		if v != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}

	// out was built least-significant-digit first; reverse it.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// base58Decode decodes a base58 string into raw bytes (no checksum
// handling), preserving leading '1' characters as leading zero bytes.
func base58Decode(s string) ([]byte, error) {
	x := new(big.Int)
	for i := 0; i < len(s); i++ {
		idx := base58Index[s[i]]
		if idx < 0 {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonBase58Malformed, "invalid base58 character")
		}
		x.Mul(x, bigRadix)
		x.Add(x, big.NewInt(int64(idx)))
	}

	decoded := x.Bytes()

	leadingZeros := 0
	for i := 0; i < len(s) && s[i] == base58Alphabet[0]; i++ {
		leadingZeros++
	}

	out := make([]byte, leadingZeros+len(decoded))
	copy(out[leadingZeros:], decoded)
	return out, nil
}

// Base58CheckEncode frames payload with a version byte and a 4-byte
// Hash256-derived checksum, then base58-encodes the result.
func Base58CheckEncode(version byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+4)
	buf = append(buf, version)
	buf = append(buf, payload...)
	sum := crypto.Hash256(buf)
	buf = append(buf, sum[:4]...)
	return base58Encode(buf)
}

// Base58CheckDecode reverses Base58CheckEncode: it base58-decodes s, then
// verifies and strips the version byte and 4-byte checksum.
func Base58CheckDecode(s string) (version byte, payload []byte, err error) {
	decoded, err := base58Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 5 {
		return 0, nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonBase58Malformed, "base58check input shorter than 5 bytes")
	}

	body := decoded[:len(decoded)-4]
	wantSum := decoded[len(decoded)-4:]
	gotSum := crypto.Hash256(body)
	if !crypto.ConstantTimeCompare(gotSum[:4], wantSum) {
		return 0, nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonChecksumMismatch, "base58check checksum mismatch")
	}

	return body[0], body[1:], nil
}
