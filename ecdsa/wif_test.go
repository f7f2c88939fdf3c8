package ecdsa

import (
	"math/big"
	"testing"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
)

func encodeTestWIF(t *testing.T, d *big.Int, compressed bool) string {
	t.Helper()
	b := d.Bytes()
	full := make([]byte, 32)
	copy(full[32-len(b):], b)
	payload := append([]byte{}, full...)
	if compressed {
		payload = append(payload, compressedSuffix)
	}
	return encoding.Base58CheckEncode(mainnetWIFVersion, payload)
}

func TestDecodeWIFRoundTrip(t *testing.T) {
	for _, compressed := range []bool{true, false} {
		d := big.NewInt(424242)
		wifStr := encodeTestWIF(t, d, compressed)

		key, err := DecodeWIF(wifStr)
		if err != nil {
			t.Fatalf("DecodeWIF: %v", err)
		}
		if key.Compressed != compressed {
			t.Fatalf("Compressed: got %v, want %v", key.Compressed, compressed)
		}
		got := new(big.Int).SetBytes(key.PrivKey.Bytes())
		if got.Cmp(d) != 0 {
			t.Fatalf("scalar mismatch: got %x, want %x", got, d)
		}
		if key.String() != wifStr {
			t.Fatalf("String() round trip: got %s, want %s", key.String(), wifStr)
		}
	}
}

func TestDecodeWIFRejectsWrongVersion(t *testing.T) {
	payload := make([]byte, 32)
	payload[31] = 0x01
	wifStr := encoding.Base58CheckEncode(0x6f, payload)
	if _, err := DecodeWIF(wifStr); err == nil {
		t.Fatal("expected a non-mainnet version byte to be rejected")
	}
}

func TestDecodeWIFRejectsBadLength(t *testing.T) {
	payload := make([]byte, 31)
	wifStr := encoding.Base58CheckEncode(mainnetWIFVersion, payload)
	if _, err := DecodeWIF(wifStr); err == nil {
		t.Fatal("expected a short payload to be rejected")
	}
}

func TestDecodeWIFRejectsBadCompressionSuffix(t *testing.T) {
	payload := make([]byte, 33)
	payload[31] = 0x01
	payload[32] = 0x02 // not the 0x01 compression marker
	wifStr := encoding.Base58CheckEncode(mainnetWIFVersion, payload)
	if _, err := DecodeWIF(wifStr); err == nil {
		t.Fatal("expected an unrecognized compression suffix to be rejected")
	}
}

func TestSecretZeroClearsBytes(t *testing.T) {
	s := crypto.NewSecret([]byte{1, 2, 3, 4})
	s.Zero()
	for _, b := range s.Bytes() {
		if b != 0 {
			t.Fatal("Zero must clear every byte of the secret")
		}
	}
}
