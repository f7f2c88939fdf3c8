package ecdsa

import (
	"math/big"
	"testing"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/secp256k1"
)

func TestSignIsDeterministic(t *testing.T) {
	d := big.NewInt(42)
	hash := crypto.SHA256([]byte("deterministic nonce test"))

	sig1, err := Sign(d, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := Sign(d, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig1.R.Cmp(sig2.R) != 0 || sig1.S.Cmp(sig2.S) != 0 {
		t.Fatal("RFC 6979 signing must be deterministic for the same key and message")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	d := big.NewInt(987654321)
	pub, err := secp256k1.PrivKeyToPubKey(d)
	if err != nil {
		t.Fatalf("PrivKeyToPubKey: %v", err)
	}
	hash := crypto.SHA256([]byte("message to sign"))

	sig, err := Sign(d, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !Verify(pub, hash[:], sig) {
		t.Fatal("signature must verify under the signer's own public key")
	}
	if !sig.IsLowS() {
		t.Fatal("Sign must always return a low-S signature")
	}
}

func TestSignProducesDifferentSignaturesForDifferentMessages(t *testing.T) {
	d := big.NewInt(555)
	h1 := crypto.SHA256([]byte("message one"))
	h2 := crypto.SHA256([]byte("message two"))

	sig1, err := Sign(d, h1[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := Sign(d, h2[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig1.R.Cmp(sig2.R) == 0 && sig1.S.Cmp(sig2.S) == 0 {
		t.Fatal("distinct messages must not produce identical signatures")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	d := big.NewInt(7)
	pub, err := secp256k1.PrivKeyToPubKey(d)
	if err != nil {
		t.Fatalf("PrivKeyToPubKey: %v", err)
	}
	hash := crypto.SHA256([]byte("tamper test"))
	sig, err := Sign(d, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := &Signature{R: sig.R, S: new(big.Int).Add(sig.S, big.NewInt(1))}
	if Verify(pub, hash[:], tampered) {
		t.Fatal("expected a tampered S value to fail verification")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	d := big.NewInt(11)
	otherPub, err := secp256k1.PrivKeyToPubKey(big.NewInt(22))
	if err != nil {
		t.Fatalf("PrivKeyToPubKey: %v", err)
	}
	hash := crypto.SHA256([]byte("wrong key test"))
	sig, err := Sign(d, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if Verify(otherPub, hash[:], sig) {
		t.Fatal("expected signature to fail verification under an unrelated public key")
	}
}

func TestNonceRFC6979IsWithinRange(t *testing.T) {
	d := big.NewInt(314159)
	hash := crypto.SHA256([]byte("nonce range test"))
	k := NonceRFC6979(d, hash[:])
	if k.Sign() <= 0 || k.Cmp(secp256k1.N) >= 0 {
		t.Fatal("RFC 6979 nonce must lie in [1, N-1]")
	}

	k2 := NonceRFC6979(d, hash[:])
	if k.Cmp(k2) != 0 {
		t.Fatal("NonceRFC6979 must be deterministic for the same input")
	}
}
