// Package crypto implements the low-level byte-oriented hash primitives the
// rest of the core builds on: SHA-256, RIPEMD-160, HMAC-SHA-256, and the
// derived double-hash helpers used throughout Bitcoin-derived wire formats.
// Every function here is a pure function of its input bytes; there is no
// streaming API because the largest input handled by this core is a
// signature preimage of a few hundred bytes.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // deliberate: matches the Hash160 wire-format hash used across the example pack's Bitcoin-derived clients, not a general-purpose digest choice
)

// SHA256 returns the FIPS 180-4 SHA-256 digest of b.
func SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// RIPEMD160 returns the RIPEMD-160 digest of b.
func RIPEMD160(b []byte) [20]byte {
	h := ripemd160.New()
	_, _ = h.Write(b) // hash.Hash.Write never returns an error
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACSHA256 computes HMAC-SHA256(key, msg).
func HMACSHA256(key, msg []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(msg)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Hash256 is SHA-256 applied twice, the digest used for txids, block
// hashes, and WIF/Base58Check checksums.
func Hash256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Hash160 is RIPEMD-160(SHA-256(b)), the digest behind P2PKH pubkey hashes
// and addresses.
func Hash160(b []byte) [20]byte {
	first := sha256.Sum256(b)
	return RIPEMD160(first[:])
}

// ConstantTimeCompare reports whether a and b are equal using a
// constant-time comparison. Unequal lengths are not constant-time (the
// length check short-circuits), matching subtle.ConstantTimeCompare's own
// documented behavior; the callers in this core compare fixed-size hashes
// and checksums, so the lengths are always equal in practice.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
