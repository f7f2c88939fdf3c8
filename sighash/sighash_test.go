package sighash

import (
	"bytes"
	"testing"

	"rubin.dev/spvcore/crypto"
)

func sampleTx() *Tx {
	return &Tx{
		Version: 1,
		Inputs: []TxIn{
			{Txid: [32]byte{1}, Vout: 0, Sequence: defaultSequence},
			{Txid: [32]byte{2}, Vout: 1, Sequence: defaultSequence},
		},
		Outputs: []TxOut{
			{Value: 1000, Script: []byte{0x76, 0xa9, 0x14}},
		},
		Locktime: 0,
	}
}

func TestPreimageIsDeterministic(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	scriptCode := []byte{0x76, 0xa9, 0x14, 0xaa, 0xbb}

	p1, err := Preimage(tx, 0, scriptCode, 5000, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	p2, err := Preimage(tx, 0, scriptCode, 5000, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	if !bytes.Equal(p1, p2) {
		t.Fatal("Preimage must be deterministic for identical inputs")
	}
}

func TestPreimageDiffersByInputIndex(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	scriptCode := []byte{0x76, 0xa9, 0x14}

	p0, err := Preimage(tx, 0, scriptCode, 5000, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	p1, err := Preimage(tx, 1, scriptCode, 5000, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	if bytes.Equal(p0, p1) {
		t.Fatal("preimages for different inputs must differ (distinct outpoint)")
	}
}

func TestPreimageEndsWithFixedSigHashType(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	p, err := Preimage(tx, 0, []byte{}, 100, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	trailer := p[len(p)-4:]
	want := []byte{0x41, 0x00, 0x00, 0x00} // SigHashType little-endian
	if !bytes.Equal(trailer, want) {
		t.Fatalf("got trailer %x, want %x", trailer, want)
	}
}

func TestPreimageRejectsOutOfRangeIndex(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	if _, err := Preimage(tx, 5, []byte{}, 0, cache); err == nil {
		t.Fatal("expected an out-of-range input index to be rejected")
	}
	if _, err := Preimage(tx, -1, []byte{}, 0, cache); err == nil {
		t.Fatal("expected a negative input index to be rejected")
	}
}

func TestDigestIsHash256OfPreimage(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	scriptCode := []byte{0x76, 0xa9, 0x14}

	pre, err := Preimage(tx, 0, scriptCode, 100, cache)
	if err != nil {
		t.Fatalf("Preimage: %v", err)
	}
	want := crypto.Hash256(pre)

	got, err := Digest(tx, 0, scriptCode, 100, cache)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestCacheIsStableAcrossCalls(t *testing.T) {
	tx := sampleTx()
	cache := NewCache(tx)
	h1 := cache.HashPrevouts()
	h2 := cache.HashPrevouts()
	if h1 != h2 {
		t.Fatal("HashPrevouts must be stable across repeated calls")
	}
	s1 := cache.HashSequence()
	s2 := cache.HashSequence()
	if s1 != s2 {
		t.Fatal("HashSequence must be stable across repeated calls")
	}
	o1 := cache.HashOutputs()
	o2 := cache.HashOutputs()
	if o1 != o2 {
		t.Fatal("HashOutputs must be stable across repeated calls")
	}
}
