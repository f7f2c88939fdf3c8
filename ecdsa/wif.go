package ecdsa

import (
	"math/big"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/secp256k1"
	"rubin.dev/spvcore/spverrors"
)

// mainnetWIFVersion is the version byte prefixed to a Base58Check-encoded
// WIF private key. This core only ever targets one network, so unlike the
// multi-network WIF decoders it is descended from, it hardcodes the single
// accepted version instead of taking a chain-params argument.
const mainnetWIFVersion = 0x80

// compressedSuffix marks, per the WIF convention, that the public key
// derived from this private key is meant to be serialized compressed.
const compressedSuffix = 0x01

// WIFKey is a decoded Wallet Import Format private key.
type WIFKey struct {
	PrivKey    *crypto.Secret
	Compressed bool
}

// DecodeWIF decodes a Base58Check-encoded WIF string into its private
// scalar and compression flag. The private key bytes are held in a
// zeroizing Secret; callers must call Zero on it when done.
func DecodeWIF(s string) (*WIFKey, error) {
	version, payload, err := encoding.Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if version != mainnetWIFVersion {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonWrongAddrVersion, "unexpected WIF version byte")
	}

	var compressed bool
	var keyBytes []byte
	switch len(payload) {
	case secp256k1.PrivKeyBytesLen:
		compressed = false
		keyBytes = payload
	case secp256k1.PrivKeyBytesLen + 1:
		if payload[secp256k1.PrivKeyBytesLen] != compressedSuffix {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "unrecognized WIF compression suffix")
		}
		compressed = true
		keyBytes = payload[:secp256k1.PrivKeyBytesLen]
	default:
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, "WIF payload has unexpected length")
	}

	d := new(big.Int).SetBytes(keyBytes)
	if err := secp256k1.ValidateScalar(d); err != nil {
		return nil, err
	}

	return &WIFKey{
		PrivKey:    crypto.NewSecret(keyBytes),
		Compressed: compressed,
	}, nil
}

// String re-encodes w back into its WIF form.
func (w *WIFKey) String() string {
	b := w.PrivKey.Bytes()
	payload := make([]byte, 0, len(b)+1)
	payload = append(payload, b...)
	if w.Compressed {
		payload = append(payload, compressedSuffix)
	}
	return encoding.Base58CheckEncode(mainnetWIFVersion, payload)
}
