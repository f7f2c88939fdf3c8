package txbuilder

import "testing"

func TestAddressRoundTrip(t *testing.T) {
	var pkh [20]byte
	for i := range pkh {
		pkh[i] = byte(i * 3)
	}
	addr := EncodeAddress(pkh)
	got, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if got != pkh {
		t.Fatalf("got %x, want %x", got, pkh)
	}
}

func TestDecodeAddressRejectsWrongVersion(t *testing.T) {
	payload := make([]byte, 20)
	addr := base58CheckEncodeForTest(0x05, payload)
	if _, err := DecodeAddress(addr); err == nil {
		t.Fatal("expected a non-P2PKH version byte to be rejected")
	}
}

func TestDecodeAddressRejectsWrongPayloadLength(t *testing.T) {
	payload := make([]byte, 21)
	addr := base58CheckEncodeForTest(addressVersion, payload)
	if _, err := DecodeAddress(addr); err == nil {
		t.Fatal("expected a 21-byte payload to be rejected")
	}
}
