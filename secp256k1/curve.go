package secp256k1

import "math/big"

// Point is an affine point on the curve. A nil X (with X == nil) represents
// the point at infinity, the group identity.
type Point struct {
	X, Y *big.Int
}

// Infinity returns the point at infinity.
func Infinity() *Point { return &Point{} }

// IsInfinity reports whether p is the identity element.
func (p *Point) IsInfinity() bool {
	return p == nil || p.X == nil
}

func modP(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, P)
}

// invModP computes the modular inverse of x mod P using Fermat's little
// theorem (x^(P-2) mod P), which runs in constant time for a fixed modulus
// since big.Int.Exp uses a fixed square-and-multiply ladder independent of
// the bit pattern of the base.
func invModP(x *big.Int) *big.Int {
	exp := new(big.Int).Sub(P, big.NewInt(2))
	return new(big.Int).Exp(x, exp, P)
}

// Add returns p1 + p2 on the curve.
func Add(p1, p2 *Point) *Point {
	if p1.IsInfinity() {
		return p2
	}
	if p2.IsInfinity() {
		return p1
	}
	if p1.X.Cmp(p2.X) == 0 {
		if p1.Y.Cmp(p2.Y) != 0 || p1.Y.Sign() == 0 {
			// p2 == -p1: the sum is the point at infinity.
			return Infinity()
		}
		return Double(p1)
	}

	// lambda = (y2 - y1) / (x2 - x1) mod P
	num := modP(new(big.Int).Sub(p2.Y, p1.Y))
	den := modP(new(big.Int).Sub(p2.X, p1.X))
	lambda := modP(new(big.Int).Mul(num, invModP(den)))

	x3 := modP(new(big.Int).Sub(new(big.Int).Sub(new(big.Int).Mul(lambda, lambda), p1.X), p2.X))
	y3 := modP(new(big.Int).Sub(new(big.Int).Mul(lambda, modP(new(big.Int).Sub(p1.X, x3))), p1.Y))
	return &Point{X: x3, Y: y3}
}

// Double returns p + p on the curve.
func Double(p *Point) *Point {
	if p.IsInfinity() || p.Y.Sign() == 0 {
		return Infinity()
	}

	// lambda = (3*x^2) / (2*y) mod P  (curve has a = 0)
	xx := modP(new(big.Int).Mul(p.X, p.X))
	num := modP(new(big.Int).Mul(big.NewInt(3), xx))
	den := modP(new(big.Int).Mul(big.NewInt(2), p.Y))
	lambda := modP(new(big.Int).Mul(num, invModP(den)))

	x3 := modP(new(big.Int).Sub(new(big.Int).Mul(lambda, lambda), new(big.Int).Mul(big.NewInt(2), p.X)))
	y3 := modP(new(big.Int).Sub(new(big.Int).Mul(lambda, modP(new(big.Int).Sub(p.X, x3))), p.Y))
	return &Point{X: x3, Y: y3}
}

// ScalarMult returns k*p using left-to-right double-and-add over the bits
// of k, from its highest set bit down (k.BitLen() steps, at most 256 for
// k < N). k is not reduced mod N; callers validate k is in [0, N) first.
func ScalarMult(k *big.Int, p *Point) *Point {
	result := Infinity()
	addend := p
	for i := k.BitLen() - 1; i >= 0; i-- {
		result = Double(result)
		if k.Bit(i) == 1 {
			result = Add(result, addend)
		}
	}
	return result
}

// BaseScalarMult returns k*G.
func BaseScalarMult(k *big.Int) *Point {
	return ScalarMult(k, G)
}

// IsOnCurve reports whether p satisfies y² = x³ + 7 mod P.
func IsOnCurve(p *Point) bool {
	if p.IsInfinity() {
		return false
	}
	lhs := modP(new(big.Int).Mul(p.Y, p.Y))
	rhs := modP(new(big.Int).Add(new(big.Int).Mul(p.X, modP(new(big.Int).Mul(p.X, p.X))), B))
	return lhs.Cmp(rhs) == 0
}
