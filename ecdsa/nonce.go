package ecdsa

import (
	"math/big"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/secp256k1"
)

// qlenOctets is the byte length of the curve order N (256 bits).
const qlenOctets = 32

func int2octets(x *big.Int) []byte {
	b := x.Bytes()
	out := make([]byte, qlenOctets)
	copy(out[qlenOctets-len(b):], b)
	return out
}

// bits2octets reduces h1 (already qlen bits, i.e. a 32-byte hash) mod N and
// re-encodes it as qlenOctets bytes, per RFC 6979 §2.3.4.
func bits2octets(h1 []byte) []byte {
	z1 := new(big.Int).SetBytes(h1)
	z2 := new(big.Int).Mod(z1, secp256k1.N)
	return int2octets(z2)
}

// nonceGen implements the RFC 6979 §3.2 HMAC_DRBG. Next returns
// successive deterministic candidates; the first candidate matches the
// bare RFC 6979 nonce, and later calls continue the same K/V state so
// that retrying after a degenerate r=0 or s=0 signature is itself
// deterministic instead of restarting from scratch.
type nonceGen struct {
	k, v []byte
}

func newNonceGen(d *big.Int, hash []byte) *nonceGen {
	x := int2octets(d)
	h1 := bits2octets(hash)

	v := make([]byte, 32)
	for i := range v {
		v[i] = 0x01
	}
	k := make([]byte, 32)

	update := func(prefix byte) {
		msg := make([]byte, 0, len(v)+1+len(x)+len(h1))
		msg = append(msg, v...)
		msg = append(msg, prefix)
		msg = append(msg, x...)
		msg = append(msg, h1...)
		sum := crypto.HMACSHA256(k, msg)
		k = sum[:]
		sum2 := crypto.HMACSHA256(k, v)
		v = sum2[:]
	}
	update(0x00)
	update(0x01)

	return &nonceGen{k: k, v: v}
}

// Next returns the next candidate nonce in [1, N-1]. Because this curve's
// order has the same bit length as the hash output, each HMAC round
// already produces a full-width candidate, so the inner "T accumulation"
// loop of RFC 6979 collapses to a single HMAC call per candidate.
func (g *nonceGen) Next() *big.Int {
	for {
		sum := crypto.HMACSHA256(g.k, g.v)
		g.v = sum[:]

		candidate := new(big.Int).SetBytes(g.v)
		if candidate.Sign() > 0 && candidate.Cmp(secp256k1.N) < 0 {
			return candidate
		}

		msg := append(append([]byte{}, g.v...), 0x00)
		sum = crypto.HMACSHA256(g.k, msg)
		g.k = sum[:]
		sum = crypto.HMACSHA256(g.k, g.v)
		g.v = sum[:]
	}
}

// NonceRFC6979 returns the deterministic RFC 6979 nonce for (d, hash). It is
// exposed directly so the nonce can be checked on its own; Sign uses the
// multi-candidate form (newNonceGen) internally to support retries.
func NonceRFC6979(d *big.Int, hash []byte) *big.Int {
	return newNonceGen(d, hash).Next()
}
