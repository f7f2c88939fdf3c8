package header

import (
	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/spverrors"
)

// MaxMerkleProofDepth caps the number of steps a Merkle proof may carry.
const MaxMerkleProofDepth = 64

// Position identifies which side of the running hash a proof step's
// sibling sits on during replay.
type Position byte

const (
	PosLeft  Position = 'L'
	PosRight Position = 'R'
)

// MerkleStep is one sibling in an ordered Merkle inclusion proof. Dup is
// set when the original proof encoded the sibling as "*", meaning the
// running hash must be duplicated against itself (the standard odd-row
// folding convention); Hash is then ignored.
type MerkleStep struct {
	Hash     [32]byte
	Dup      bool
	Position Position
}

// MerkleReplay replays an ordered Merkle inclusion proof starting from
// txid (in display/reversed order) and returns the resulting root in the
// natural (non-reversed) byte order that Header.MerkleRoot uses, so
// callers can compare it against a parsed header's field directly.
//
// Per CVE-2012-2459, two adjacent steps carrying identical, non-duplicated
// sibling hashes are rejected before replay begins: such a proof can be
// satisfied by more than one distinct transaction set, which is exactly
// the ambiguity that attack exploited.
func MerkleReplay(txid [32]byte, steps []MerkleStep) ([32]byte, error) {
	var zero [32]byte

	if len(steps) > MaxMerkleProofDepth {
		return zero, spverrors.New(spverrors.KindPolicy, spverrors.ReasonProofTooDeep, "merkle proof exceeds maximum depth")
	}

	for i := 1; i < len(steps); i++ {
		if !steps[i].Dup && !steps[i-1].Dup && steps[i].Hash == steps[i-1].Hash {
			return zero, spverrors.New(spverrors.KindPolicy, spverrors.ReasonDuplicateSibling, "adjacent merkle proof steps share an identical sibling hash")
		}
	}

	cur := encoding.Reverse32(txid)
	for _, step := range steps {
		if step.Position != PosLeft && step.Position != PosRight {
			return zero, spverrors.New(spverrors.KindSchema, spverrors.ReasonWrongType, "merkle step position must be L or R")
		}

		sibling := step.Hash
		if step.Dup {
			sibling = cur
		}

		var concat [64]byte
		if step.Position == PosLeft {
			copy(concat[:32], sibling[:])
			copy(concat[32:], cur[:])
		} else {
			copy(concat[:32], cur[:])
			copy(concat[32:], sibling[:])
		}
		cur = crypto.Hash256(concat[:])
	}

	return cur, nil
}
