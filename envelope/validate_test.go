package envelope

import (
	"fmt"
	"strings"
	"testing"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/header"
)

var dummyHeaderHex = strings.Repeat("00", header.HeaderLen)

func envelopeJSON(txidHex, rawTxHex string, vout uint32, satoshis uint64, headerHex string) string {
	return fmt.Sprintf(`{
		"format": "merkle-envelope",
		"version": 1,
		"txid": "%s",
		"vout": %d,
		"satoshis": %d,
		"rawTx": "%s",
		"blockHeader": "%s",
		"proof": []
	}`, txidHex, vout, satoshis, rawTxHex, headerHex)
}

func TestParseAndValidateRejectsMalformedJSON(t *testing.T) {
	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte("not json"), ctx); err == nil {
		t.Fatal("expected malformed JSON to be rejected")
	}
}

func TestParseAndValidateRejectsMissingField(t *testing.T) {
	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(`{"format":"merkle-envelope"}`), ctx); err == nil {
		t.Fatal("expected a missing required field to be rejected")
	}
}

func TestParseAndValidateRejectsUnknownFormat(t *testing.T) {
	var pkh [20]byte
	rawTx := buildRawTx(t, pkh, 1000)
	txidHash := crypto.Hash256(rawTx)
	txid := encoding.Reverse32(txidHash)

	body := envelopeJSON(encoding.BytesToHex(txid[:]), encoding.BytesToHex(rawTx), 0, 1000, dummyHeaderHex)
	body = strings.Replace(body, "merkle-envelope", "wrong-format", 1)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected an unrecognized format to be rejected")
	}
}

func TestParseAndValidateRejectsTxidMismatch(t *testing.T) {
	var pkh [20]byte
	rawTx := buildRawTx(t, pkh, 1000)

	var wrongTxid [32]byte
	wrongTxid[0] = 0xff
	body := envelopeJSON(encoding.BytesToHex(wrongTxid[:]), encoding.BytesToHex(rawTx), 0, 1000, dummyHeaderHex)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected a txid that does not match hash256(rawTx) to be rejected")
	}
}

func TestParseAndValidateRejectsVoutOutOfRange(t *testing.T) {
	var pkh [20]byte
	rawTx := buildRawTx(t, pkh, 1000)
	txid := encoding.Reverse32(crypto.Hash256(rawTx))

	body := envelopeJSON(encoding.BytesToHex(txid[:]), encoding.BytesToHex(rawTx), 5, 1000, dummyHeaderHex)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected an out-of-range vout to be rejected")
	}
}

func TestParseAndValidateRejectsSatoshisMismatch(t *testing.T) {
	var pkh [20]byte
	rawTx := buildRawTx(t, pkh, 1000)
	txid := encoding.Reverse32(crypto.Hash256(rawTx))

	body := envelopeJSON(encoding.BytesToHex(txid[:]), encoding.BytesToHex(rawTx), 0, 999, dummyHeaderHex)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected a declared satoshis value mismatching rawTx to be rejected")
	}
}

func TestParseAndValidateRejectsSatoshisOverCap(t *testing.T) {
	var pkh [20]byte
	over := uint64(MaxSatoshis + 1)
	rawTx := buildRawTx(t, pkh, over)
	txid := encoding.Reverse32(crypto.Hash256(rawTx))

	body := envelopeJSON(encoding.BytesToHex(txid[:]), encoding.BytesToHex(rawTx), 0, over, dummyHeaderHex)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected a satoshis value over the cap to be rejected")
	}
}

func TestParseAndValidateRejectsNonP2PKHOutput(t *testing.T) {
	// A raw tx whose output script is not a standard P2PKH form.
	var buf []byte
	buf = encoding.AppendU32LE(buf, 1)
	buf = encoding.AppendCompactSize(buf, 1)
	buf = append(buf, make([]byte, 32)...)
	buf = encoding.AppendU32LE(buf, 0)
	buf = encoding.AppendCompactSize(buf, 0)
	buf = encoding.AppendU32LE(buf, 0xffffffff)
	buf = encoding.AppendCompactSize(buf, 1)
	buf = encoding.AppendU64LE(buf, 1000)
	script := []byte{0x51} // OP_TRUE, not P2PKH
	buf = encoding.AppendCompactSize(buf, uint64(len(script)))
	buf = append(buf, script...)
	buf = encoding.AppendU32LE(buf, 0)

	txid := encoding.Reverse32(crypto.Hash256(buf))
	body := envelopeJSON(encoding.BytesToHex(txid[:]), encoding.BytesToHex(buf), 0, 1000, dummyHeaderHex)

	ctx := header.NewVerifierContext(header.Checkpoint{Height: 0, Bits: 0})
	if _, err := ParseAndValidate([]byte(body), ctx); err == nil {
		t.Fatal("expected a non-P2PKH output script to be rejected")
	}
}
