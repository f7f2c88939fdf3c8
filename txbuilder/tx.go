// Package txbuilder assembles an unsigned spend from validated envelopes,
// computes each input's fork-enabled signature, and reserializes the
// finalized transaction, enforcing single-key consolidation, outpoint
// uniqueness, fee sanity, and dust folding along the way.
package txbuilder

import (
	"rubin.dev/spvcore/encoding"
)

// txVersion is the only transaction version this core ever builds.
const txVersion uint32 = 1

// sequence is the sequence number of every input this core builds; RBF
// and relative locktimes are not in scope.
const sequence uint32 = 0xFFFFFFFF

// locktime is always 0: this core never builds timelocked transactions.
const locktime uint32 = 0

const (
	opDup         = 0x76
	opHash160     = 0xa9
	opPushHash160 = 0x14
	opEqualVerify = 0x88
	opCheckSig    = 0xac
)

// input is one spend source, fully resolved from a validated envelope.
type input struct {
	Txid       [32]byte // display order
	Vout       uint32
	Satoshis   uint64
	PubKeyHash [20]byte

	scriptSig []byte // populated once signed
}

// output is one transaction output.
type output struct {
	Value      uint64
	PubKeyHash [20]byte
}

func p2pkhScript(pkh [20]byte) []byte {
	out := make([]byte, 0, 25)
	out = append(out, opDup, opHash160, opPushHash160)
	out = append(out, pkh[:]...)
	out = append(out, opEqualVerify, opCheckSig)
	return out
}

// serialize encodes the transaction's current state (including whatever
// scriptSig bytes each input currently carries, empty or final) into the
// standard wire format.
func serialize(version uint32, inputs []input, outputs []output, lock uint32) []byte {
	var buf []byte
	buf = encoding.AppendU32LE(buf, version)

	buf = encoding.AppendCompactSize(buf, uint64(len(inputs)))
	for _, in := range inputs {
		buf = append(buf, encoding.Reverse32(in.Txid)[:]...)
		buf = encoding.AppendU32LE(buf, in.Vout)
		buf = encoding.AppendCompactSize(buf, uint64(len(in.scriptSig)))
		buf = append(buf, in.scriptSig...)
		buf = encoding.AppendU32LE(buf, sequence)
	}

	buf = encoding.AppendCompactSize(buf, uint64(len(outputs)))
	for _, out := range outputs {
		buf = encoding.AppendU64LE(buf, out.Value)
		script := p2pkhScript(out.PubKeyHash)
		buf = encoding.AppendCompactSize(buf, uint64(len(script)))
		buf = append(buf, script...)
	}

	buf = encoding.AppendU32LE(buf, lock)
	return buf
}
