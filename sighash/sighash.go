// Package sighash builds the fork-enabled BIP-143-style signature preimage
// this core always signs: SIGHASH_ALL|SIGHASH_FORKID (0x41), with no
// SINGLE/NONE/ANYONECANPAY variants, since that is the only sighash type
// this core ever produces.
package sighash

import (
	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/spverrors"
)

// SigHashType is the fixed signature hash type this core signs with.
const SigHashType uint32 = 0x41

// defaultSequence is the sequence number every input in this core's
// supported profile carries; there is no RBF or relative-locktime
// signaling in scope.
const defaultSequence uint32 = 0xFFFFFFFF

// TxIn is the subset of an input's fields the preimage needs.
type TxIn struct {
	Txid     [32]byte // display (reversed) order
	Vout     uint32
	Sequence uint32
}

// TxOut is an output as it is serialized into a transaction.
type TxOut struct {
	Value  uint64
	Script []byte
}

// Tx is the minimal transaction shape the sighash preimage is computed
// over: everything needed to build hashPrevouts/hashSequence/hashOutputs
// and the per-input fields, independent of how the final wire transaction
// is assembled.
type Tx struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	Locktime uint32
}

// Cache holds the three hashes shared across every input's preimage in a
// single transaction (hashPrevouts, hashSequence, hashOutputs), computed
// once and reused, the way BIP-143 is meant to avoid O(n²) hashing.
type Cache struct {
	tx *Tx

	hashPrevouts *[32]byte
	hashSequence *[32]byte
	hashOutputs  *[32]byte
}

// NewCache returns a Cache bound to tx. The cache must be discarded (or
// rebuilt via NewCache) if tx's inputs or outputs change.
func NewCache(tx *Tx) *Cache {
	return &Cache{tx: tx}
}

func (c *Cache) HashPrevouts() [32]byte {
	if c.hashPrevouts != nil {
		return *c.hashPrevouts
	}
	var buf []byte
	for _, in := range c.tx.Inputs {
		buf = append(buf, encoding.Reverse32(in.Txid)[:]...)
		buf = encoding.AppendU32LE(buf, in.Vout)
	}
	h := crypto.Hash256(buf)
	c.hashPrevouts = &h
	return h
}

func (c *Cache) HashSequence() [32]byte {
	if c.hashSequence != nil {
		return *c.hashSequence
	}
	var buf []byte
	for _, in := range c.tx.Inputs {
		buf = encoding.AppendU32LE(buf, in.Sequence)
	}
	h := crypto.Hash256(buf)
	c.hashSequence = &h
	return h
}

func (c *Cache) HashOutputs() [32]byte {
	if c.hashOutputs != nil {
		return *c.hashOutputs
	}
	var buf []byte
	for _, out := range c.tx.Outputs {
		buf = encoding.AppendU64LE(buf, out.Value)
		buf = encoding.AppendCompactSize(buf, uint64(len(out.Script)))
		buf = append(buf, out.Script...)
	}
	h := crypto.Hash256(buf)
	c.hashOutputs = &h
	return h
}

// Preimage assembles the per-input BIP-143-style preimage for inputIndex,
// signing value satoshis locked by scriptCode (the P2PKH script of the
// output being spent, not the empty scriptSig).
func Preimage(tx *Tx, inputIndex int, scriptCode []byte, value uint64, cache *Cache) ([]byte, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, spverrors.New(spverrors.KindInput, spverrors.ReasonMissingField, "sighash input index out of range")
	}
	in := tx.Inputs[inputIndex]

	var buf []byte
	buf = encoding.AppendU32LE(buf, tx.Version)

	hp := cache.HashPrevouts()
	buf = append(buf, hp[:]...)
	hs := cache.HashSequence()
	buf = append(buf, hs[:]...)

	buf = append(buf, encoding.Reverse32(in.Txid)[:]...)
	buf = encoding.AppendU32LE(buf, in.Vout)

	buf = encoding.AppendCompactSize(buf, uint64(len(scriptCode)))
	buf = append(buf, scriptCode...)

	buf = encoding.AppendU64LE(buf, value)
	buf = encoding.AppendU32LE(buf, defaultSequence)

	ho := cache.HashOutputs()
	buf = append(buf, ho[:]...)

	buf = encoding.AppendU32LE(buf, tx.Locktime)
	buf = encoding.AppendU32LE(buf, SigHashType)

	return buf, nil
}

// Digest returns hash256(Preimage(...)), the value actually signed.
func Digest(tx *Tx, inputIndex int, scriptCode []byte, value uint64, cache *Cache) ([32]byte, error) {
	pre, err := Preimage(tx, inputIndex, scriptCode, value, cache)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Hash256(pre), nil
}
