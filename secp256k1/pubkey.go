package secp256k1

import (
	"math/big"

	"rubin.dev/spvcore/spverrors"
)

const (
	PrivKeyBytesLen = 32
	// PubKeyBytesLenCompressed is the length of a compressed public key.
	PubKeyBytesLenCompressed = 33
	// PubKeyBytesLenUncompressed is the length of an uncompressed public key.
	PubKeyBytesLenUncompressed = 65
)

// PrivKeyToPubKey derives the public key point for private scalar d. d must
// satisfy 1 <= d < N.
func PrivKeyToPubKey(d *big.Int) (*Point, error) {
	if err := ValidateScalar(d); err != nil {
		return nil, err
	}
	return BaseScalarMult(d), nil
}

// ValidateScalar reports an error unless 1 <= d < N, per the spec's
// requirement on decoded WIF scalars.
func ValidateScalar(d *big.Int) error {
	if d.Sign() <= 0 || d.Cmp(N) >= 0 {
		return spverrors.New(spverrors.KindCrypto, spverrors.ReasonInvalidPrivateKey, "scalar out of range [1, n-1]")
	}
	return nil
}

// SerializeCompressed encodes p as a 33-byte compressed public key:
// 0x02 if Y is even, 0x03 if Y is odd, followed by the 32-byte X coordinate.
func SerializeCompressed(p *Point) []byte {
	out := make([]byte, PubKeyBytesLenCompressed)
	if p.Y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	putFixed(out[1:33], p.X)
	return out
}

// SerializeUncompressed encodes p as a 65-byte uncompressed public key:
// 0x04 followed by the 32-byte X and 32-byte Y coordinates.
func SerializeUncompressed(p *Point) []byte {
	out := make([]byte, PubKeyBytesLenUncompressed)
	out[0] = 0x04
	putFixed(out[1:33], p.X)
	putFixed(out[33:65], p.Y)
	return out
}

func putFixed(dst []byte, v *big.Int) {
	b := v.Bytes()
	copy(dst[len(dst)-len(b):], b)
}

// ParsePubKey parses a compressed (33-byte) or uncompressed (65-byte)
// public key, decompressing the Y coordinate when necessary and rejecting
// any point not on the curve.
func ParsePubKey(b []byte) (*Point, error) {
	switch {
	case len(b) == PubKeyBytesLenCompressed && (b[0] == 0x02 || b[0] == 0x03):
		x := new(big.Int).SetBytes(b[1:])
		y, err := decompressY(x, b[0] == 0x03)
		if err != nil {
			return nil, err
		}
		p := &Point{X: x, Y: y}
		if !IsOnCurve(p) {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "decompressed point not on curve")
		}
		return p, nil
	case len(b) == PubKeyBytesLenUncompressed && b[0] == 0x04:
		x := new(big.Int).SetBytes(b[1:33])
		y := new(big.Int).SetBytes(b[33:65])
		p := &Point{X: x, Y: y}
		if !IsOnCurve(p) {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "uncompressed point not on curve")
		}
		return p, nil
	default:
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "invalid public key encoding")
	}
}

// decompressY solves y² = x³ + 7 mod P and selects the root whose parity
// matches wantOdd. Since P ≡ 3 (mod 4), a square root can be computed
// directly as v^((P+1)/4) mod P.
func decompressY(x *big.Int, wantOdd bool) (*big.Int, error) {
	rhs := modP(new(big.Int).Add(new(big.Int).Mul(x, modP(new(big.Int).Mul(x, x))), B))
	exp := new(big.Int).Rsh(new(big.Int).Add(P, big.NewInt(1)), 2)
	y := new(big.Int).Exp(rhs, exp, P)

	// Verify y really is a square root (x may not correspond to a point on
	// the curve at all).
	check := modP(new(big.Int).Mul(y, y))
	if check.Cmp(rhs) != 0 {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "x coordinate is not on the curve")
	}

	if (y.Bit(0) == 1) != wantOdd {
		y = modP(new(big.Int).Sub(P, y))
	}
	return y, nil
}
