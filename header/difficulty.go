// Package header implements block header parsing, compact-target decode,
// cumulative work accounting, Proof-of-Work verification, checkpoint-anchored
// chain verification, and Merkle path replay.
package header

import (
	"math/big"

	"rubin.dev/spvcore/spverrors"
)

// DifficultyTolerance is the floor multiplier applied to the reference
// target: any header whose target exceeds floor_target = tolerance * t is
// rejected as cryptographically trivial. 8 is roughly three maximum
// downward retargets.
const DifficultyTolerance = 8

// genesisTimestamp is the earliest timestamp any accepted header may carry.
const genesisTimestamp = 1231006505

// maxFutureDrift bounds how far into the future a header's timestamp may be.
const maxFutureDrift = 7200

var (
	twoToThe256 = new(big.Int).Lsh(big.NewInt(1), 256)
	bigOne      = big.NewInt(1)
)

// CompactToBig decodes a compact ("nBits") difficulty target into its full
// big.Int form: nBits = EE·2²⁴ + M, target = M >> 8·(3-EE) when EE <= 3,
// otherwise M << 8·(EE-3).
func CompactToBig(nBits uint32) *big.Int {
	exp := nBits >> 24
	mant := nBits & 0x007fffff

	// The sign bit (0x00800000) of the mantissa is never meaningful for a
	// PoW target; it is accepted but produces a zero/negative result that
	// CheckProofOfWork will reject outright since no hash is <= 0.
	if nBits&0x00800000 != 0 {
		mant = 0
	}

	target := new(big.Int).SetUint64(uint64(mant))
	if exp <= 3 {
		target.Rsh(target, uint(8*(3-exp)))
	} else {
		target.Lsh(target, uint(8*(exp-3)))
	}
	return target
}

// BigToCompact encodes target into its compact ("nBits") representation.
func BigToCompact(target *big.Int) uint32 {
	if target.Sign() == 0 {
		return 0
	}

	tbytes := target.Bytes()
	exp := uint32(len(tbytes))

	var mant uint32
	switch {
	case exp <= 3:
		mant = uint32(new(big.Int).Lsh(target, uint(8*(3-exp))).Uint64())
	default:
		// Take the 3 most significant bytes.
		shifted := new(big.Int).Rsh(target, uint(8*(exp-3)))
		mant = uint32(shifted.Uint64())
	}

	// If the high bit of the mantissa's top byte is set, it would be
	// misread as a sign bit; shift right one byte and bump the exponent.
	if mant&0x00800000 != 0 {
		mant >>= 8
		exp++
	}

	return exp<<24 | mant
}

// CalcWork returns the work represented by target: floor(2^256 / (target+1)).
func CalcWork(target *big.Int) *big.Int {
	denom := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(twoToThe256, denom)
}

// CheckProofOfWork reports whether h's PoW hash, interpreted big-endian,
// is <= the target encoded by h.Bits.
func CheckProofOfWork(h *Header) error {
	target := CompactToBig(h.Bits)
	if target.Sign() <= 0 {
		return spverrors.New(spverrors.KindIntegrity, spverrors.ReasonPowInvalid, "difficulty target is non-positive")
	}

	hash := h.PowHash()
	hashInt := new(big.Int).SetBytes(hash[:])
	if hashInt.Cmp(target) > 0 {
		return spverrors.New(spverrors.KindIntegrity, spverrors.ReasonPowInvalid, "header hash exceeds target")
	}
	return nil
}

// CheckFloorAndTimestamp rejects a header whose decoded target exceeds
// floor, and rejects timestamps outside the accepted band. now is the
// caller's notion of the current Unix time.
func CheckFloorAndTimestamp(h *Header, floor *big.Int, now int64) error {
	return checkFloor(h, floor, now)
}

// checkFloor is the shared implementation behind CheckFloorAndTimestamp
// and VerifyChain's per-header check.
func checkFloor(h *Header, floor *big.Int, now int64) error {
	target := CompactToBig(h.Bits)
	if floor != nil && target.Cmp(floor) > 0 {
		return spverrors.New(spverrors.KindPolicy, spverrors.ReasonBelowFloor, "header target is below the difficulty floor")
	}
	if int64(h.Timestamp) < genesisTimestamp || int64(h.Timestamp) > now+maxFutureDrift {
		return spverrors.New(spverrors.KindPolicy, spverrors.ReasonTimestampOutOfBand, "header timestamp out of accepted bounds")
	}
	return nil
}

// StaticFloor computes the difficulty floor from a checkpoint's compact
// target, used when no header chain has been loaded. A checkpoint with a
// zero Bits field (the pre-935,000 checkpoint revision, which carried no
// nBits) yields a nil floor, meaning no floor is enforced until a header
// chain is loaded and sets a dynamic one.
func StaticFloor(cp Checkpoint) *big.Int {
	if cp.Bits == 0 {
		return nil
	}
	t := CompactToBig(cp.Bits)
	return new(big.Int).Mul(t, big.NewInt(DifficultyTolerance))
}
