package envelope

import (
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/spverrors"
)

// p2pkhScriptLen is the fixed length of a standard P2PKH output script:
// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG.
const p2pkhScriptLen = 25

const (
	opDup         = 0x76
	opHash160     = 0xa9
	opPushHash160 = 0x14
	opEqualVerify = 0x88
	opCheckSig    = 0xac
)

// extractP2PKHHash requires script to be exactly the standard P2PKH form
// and returns the embedded 20-byte public-key hash.
func extractP2PKHHash(script []byte) ([20]byte, error) {
	var out [20]byte
	if len(script) != p2pkhScriptLen ||
		script[0] != opDup ||
		script[1] != opHash160 ||
		script[2] != opPushHash160 ||
		script[23] != opEqualVerify ||
		script[24] != opCheckSig {
		return out, spverrors.New(spverrors.KindPolicy, spverrors.ReasonNotP2PKH, "output script is not a standard P2PKH script")
	}
	copy(out[:], script[3:23])
	return out, nil
}

// txOutput is the slice of an output this core needs: the value and the
// locking script.
type txOutput struct {
	Value  uint64
	Script []byte
}

// parseTxOutputs parses just enough of a raw transaction to recover its
// output list: version, the input list (skipped structurally), and the
// output list. It does not decode witness data; the spec's transaction
// model has none.
func parseTxOutputs(rawTx []byte) ([]txOutput, error) {
	c := encoding.NewCursor(rawTx)

	if _, err := c.ReadU32LE(); err != nil { // version
		return nil, err
	}

	inCount, err := c.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < inCount; i++ {
		if _, err := c.ReadExact(32); err != nil { // prevout txid
			return nil, err
		}
		if _, err := c.ReadU32LE(); err != nil { // prevout index
			return nil, err
		}
		scriptLen, err := c.ReadCompactSize()
		if err != nil {
			return nil, err
		}
		if _, err := c.ReadExact(int(scriptLen)); err != nil { // scriptSig
			return nil, err
		}
		if _, err := c.ReadU32LE(); err != nil { // sequence
			return nil, err
		}
	}

	outCount, err := c.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	outputs := make([]txOutput, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		value, err := c.ReadU64LE()
		if err != nil {
			return nil, err
		}
		scriptLen, err := c.ReadCompactSize()
		if err != nil {
			return nil, err
		}
		script, err := c.ReadExact(int(scriptLen))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, txOutput{Value: value, Script: append([]byte(nil), script...)})
	}

	if _, err := c.ReadU32LE(); err != nil { // locktime
		return nil, err
	}

	return outputs, nil
}
