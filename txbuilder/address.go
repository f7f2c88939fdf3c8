package txbuilder

import (
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/spverrors"
)

// addressVersion is the only P2PKH address version this core accepts or
// produces; there are no testnet parameters in scope.
const addressVersion = 0x00

// DecodeAddress Base58Check-decodes addr, requiring the standard P2PKH
// version byte, and returns the embedded 20-byte public-key hash.
func DecodeAddress(addr string) ([20]byte, error) {
	var out [20]byte
	version, payload, err := encoding.Base58CheckDecode(addr)
	if err != nil {
		return out, err
	}
	if version != addressVersion {
		return out, spverrors.New(spverrors.KindInput, spverrors.ReasonWrongAddrVersion, "destination address version must be 0x00")
	}
	if len(payload) != 20 {
		return out, spverrors.New(spverrors.KindInput, spverrors.ReasonInvalidAddress, "destination address payload must be 20 bytes")
	}
	copy(out[:], payload)
	return out, nil
}

// EncodeAddress Base58Check-encodes a 20-byte public-key hash as a P2PKH
// address.
func EncodeAddress(pkh [20]byte) string {
	return encoding.Base58CheckEncode(addressVersion, pkh[:])
}
