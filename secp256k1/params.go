// Package secp256k1 implements field and group arithmetic over the curve
// y² = x³ + 7 mod p, public-key derivation, and point (de)compression.
// Scalar multiplication is left-to-right double-and-add over affine
// coordinates; the spec allows either that or a Montgomery ladder, and
// double-and-add is the simpler of the two to get right.
package secp256k1

import "math/big"

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("secp256k1: invalid constant " + s)
	}
	return v
}

var (
	// P is the field prime.
	P = mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F")
	// N is the order of the base point G (the order of the group).
	N = mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
	// Gx, Gy are the coordinates of the base point G.
	Gx = mustHex("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798")
	Gy = mustHex("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8")

	// B is the curve's constant term (y² = x³ + B).
	B = big.NewInt(7)

	// G is the base point.
	G = &Point{X: new(big.Int).Set(Gx), Y: new(big.Int).Set(Gy)}
)
