package envelope

import (
	"testing"

	"rubin.dev/spvcore/encoding"
)

func p2pkhScript(pkh [20]byte) []byte {
	out := make([]byte, 0, p2pkhScriptLen)
	out = append(out, opDup, opHash160, opPushHash160)
	out = append(out, pkh[:]...)
	out = append(out, opEqualVerify, opCheckSig)
	return out
}

func TestExtractP2PKHHash(t *testing.T) {
	var pkh [20]byte
	for i := range pkh {
		pkh[i] = byte(i + 1)
	}
	got, err := extractP2PKHHash(p2pkhScript(pkh))
	if err != nil {
		t.Fatalf("extractP2PKHHash: %v", err)
	}
	if got != pkh {
		t.Fatalf("got %x, want %x", got, pkh)
	}
}

func TestExtractP2PKHHashRejectsWrongLength(t *testing.T) {
	if _, err := extractP2PKHHash([]byte{opDup, opHash160}); err == nil {
		t.Fatal("expected a too-short script to be rejected")
	}
}

func TestExtractP2PKHHashRejectsWrongOpcodes(t *testing.T) {
	var pkh [20]byte
	script := p2pkhScript(pkh)
	script[0] = 0x00 // not OP_DUP
	if _, err := extractP2PKHHash(script); err == nil {
		t.Fatal("expected a script with the wrong leading opcode to be rejected")
	}
}

// buildRawTx constructs a minimal one-input, one-output transaction paying
// value satoshis to a P2PKH script locking pkh.
func buildRawTx(t *testing.T, pkh [20]byte, value uint64) []byte {
	t.Helper()
	var buf []byte
	buf = encoding.AppendU32LE(buf, 1) // version
	buf = encoding.AppendCompactSize(buf, 1)
	buf = append(buf, make([]byte, 32)...)    // prevout txid
	buf = encoding.AppendU32LE(buf, 0)        // prevout index
	buf = encoding.AppendCompactSize(buf, 0)  // empty scriptSig
	buf = encoding.AppendU32LE(buf, 0xffffffff) // sequence

	buf = encoding.AppendCompactSize(buf, 1)
	buf = encoding.AppendU64LE(buf, value)
	script := p2pkhScript(pkh)
	buf = encoding.AppendCompactSize(buf, uint64(len(script)))
	buf = append(buf, script...)

	buf = encoding.AppendU32LE(buf, 0) // locktime
	return buf
}

func TestParseTxOutputsSingleOutput(t *testing.T) {
	var pkh [20]byte
	pkh[0] = 0xaa
	rawTx := buildRawTx(t, pkh, 5000)

	outputs, err := parseTxOutputs(rawTx)
	if err != nil {
		t.Fatalf("parseTxOutputs: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outputs))
	}
	if outputs[0].Value != 5000 {
		t.Fatalf("got value %d, want 5000", outputs[0].Value)
	}
	got, err := extractP2PKHHash(outputs[0].Script)
	if err != nil {
		t.Fatalf("extractP2PKHHash: %v", err)
	}
	if got != pkh {
		t.Fatalf("got pkh %x, want %x", got, pkh)
	}
}

func TestParseTxOutputsRejectsTruncatedInput(t *testing.T) {
	if _, err := parseTxOutputs([]byte{0x01, 0x00, 0x00, 0x00}); err == nil {
		t.Fatal("expected a truncated raw transaction to be rejected")
	}
}
