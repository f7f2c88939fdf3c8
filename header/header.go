package header

import (
	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/spverrors"
)

// HeaderLen is the fixed wire size of a block header.
const HeaderLen = 80

// Header is a parsed 80-byte block header. PrevBlock and MerkleRoot are
// held in natural (non-reversed) byte order, matching the wire format;
// Hash and PowHash present the two different orderings callers need.
type Header struct {
	Version    uint32
	PrevBlock  [32]byte
	MerkleRoot [32]byte
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32

	raw [HeaderLen]byte
}

// ParseHeader parses exactly 80 bytes into a Header.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) != HeaderLen {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonWrongType, "header must be exactly 80 bytes")
	}

	h := &Header{}
	copy(h.raw[:], b)

	c := encoding.NewCursor(b)
	var err error
	if h.Version, err = c.ReadU32LE(); err != nil {
		return nil, err
	}
	if h.PrevBlock, err = c.ReadHash32(); err != nil {
		return nil, err
	}
	if h.MerkleRoot, err = c.ReadHash32(); err != nil {
		return nil, err
	}
	if h.Timestamp, err = c.ReadU32LE(); err != nil {
		return nil, err
	}
	if h.Bits, err = c.ReadU32LE(); err != nil {
		return nil, err
	}
	if h.Nonce, err = c.ReadU32LE(); err != nil {
		return nil, err
	}

	return h, nil
}

// Bytes returns the original 80-byte wire encoding.
func (h *Header) Bytes() [HeaderLen]byte {
	return h.raw
}

// PowHash returns hash256(header) in natural byte order, the form used
// for the "<= target" Proof-of-Work comparison.
func (h *Header) PowHash() [32]byte {
	return crypto.Hash256(h.raw[:])
}

// Hash returns hash256(header) in the byte-reversed "display" order used
// for human-facing block-hash equality checks (e.g. envelope/chain-file
// lookups by display hash). Chain linkage uses PowHash's natural order.
func (h *Header) Hash() [32]byte {
	return encoding.Reverse32(h.PowHash())
}
