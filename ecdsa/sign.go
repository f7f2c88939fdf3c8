// Package ecdsa implements RFC 6979 deterministic ECDSA signing and
// verification over secp256k1, DER signature encoding, low-S normalization,
// and WIF private-key decoding.
package ecdsa

import (
	"math/big"

	"rubin.dev/spvcore/secp256k1"
	"rubin.dev/spvcore/spverrors"
)

// Signature is an ECDSA (r, s) pair.
type Signature struct {
	R, S *big.Int
}

// halfN is N/2, the low-S threshold from BIP-146: a valid signature's S
// must never exceed it.
var halfN = new(big.Int).Rsh(new(big.Int).Set(secp256k1.N), 1)

// IsLowS reports whether sig.S <= N/2.
func (sig *Signature) IsLowS() bool {
	return sig.S.Cmp(halfN) <= 0
}

// Sign produces a deterministic, low-S-normalized ECDSA signature over hash
// (expected to already be a 32-byte digest) using private scalar d. Before
// returning, Sign verifies its own output against the derived public key
// and refuses to emit a signature it cannot verify itself.
func Sign(d *big.Int, hash []byte) (*Signature, error) {
	if err := secp256k1.ValidateScalar(d); err != nil {
		return nil, err
	}
	pub, err := secp256k1.PrivKeyToPubKey(d)
	if err != nil {
		return nil, err
	}

	z := new(big.Int).SetBytes(hash)
	if len(hash)*8 > secp256k1.N.BitLen() {
		z.Rsh(z, uint(len(hash)*8-secp256k1.N.BitLen()))
	}

	gen := newNonceGen(d, hash)

	const maxAttempts = 1000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		k := gen.Next()

		r := secp256k1.BaseScalarMult(k)
		rMod := new(big.Int).Mod(r.X, secp256k1.N)
		if rMod.Sign() == 0 {
			continue
		}

		kInv := new(big.Int).ModInverse(k, secp256k1.N)
		if kInv == nil {
			continue
		}
		s := new(big.Int).Mul(rMod, d)
		s.Add(s, z)
		s.Mod(s, secp256k1.N)
		s.Mul(s, kInv)
		s.Mod(s, secp256k1.N)
		if s.Sign() == 0 {
			continue
		}

		// Low-S normalization per BIP-146: if s > N/2, replace it with N - s.
		// (r, s) and (r, N-s) verify against the same public key.
		if s.Cmp(halfN) > 0 {
			s = new(big.Int).Sub(secp256k1.N, s)
		}

		sig := &Signature{R: rMod, S: s}
		if !Verify(pub, hash, sig) {
			return nil, spverrors.New(spverrors.KindCrypto, spverrors.ReasonSelfVerifyFailed, "signature failed self-verification")
		}
		return sig, nil
	}

	return nil, spverrors.New(spverrors.KindCrypto, spverrors.ReasonNonceExhausted, "exhausted nonce candidates without producing a valid signature")
}

// Verify reports whether sig is a valid ECDSA signature over hash under
// public key pub.
func Verify(pub *secp256k1.Point, hash []byte, sig *Signature) bool {
	if sig.R.Sign() <= 0 || sig.R.Cmp(secp256k1.N) >= 0 {
		return false
	}
	if sig.S.Sign() <= 0 || sig.S.Cmp(secp256k1.N) >= 0 {
		return false
	}
	if !secp256k1.IsOnCurve(pub) {
		return false
	}

	z := new(big.Int).SetBytes(hash)
	if len(hash)*8 > secp256k1.N.BitLen() {
		z.Rsh(z, uint(len(hash)*8-secp256k1.N.BitLen()))
	}

	sInv := new(big.Int).ModInverse(sig.S, secp256k1.N)
	if sInv == nil {
		return false
	}
	u1 := new(big.Int).Mul(z, sInv)
	u1.Mod(u1, secp256k1.N)
	u2 := new(big.Int).Mul(sig.R, sInv)
	u2.Mod(u2, secp256k1.N)

	p1 := secp256k1.BaseScalarMult(u1)
	p2 := secp256k1.ScalarMult(u2, pub)
	sum := secp256k1.Add(p1, p2)
	if sum.IsInfinity() {
		return false
	}

	v := new(big.Int).Mod(sum.X, secp256k1.N)
	return v.Cmp(sig.R) == 0
}
