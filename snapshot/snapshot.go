// Package snapshot verifies the optional signed header-snapshot
// distribution format: a flat, publisher-signed bundle of headers that
// authenticates distribution only, never consensus. Every consensus fact
// it carries (chain linkage, Proof-of-Work, cumulative work) is
// re-verified independently via the header package; the signature only
// establishes that a whitelisted publisher vouched for the bundle.
package snapshot

import (
	"encoding/json"
	"math/big"
	"time"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/ecdsa"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/header"
	"rubin.dev/spvcore/secp256k1"
	"rubin.dev/spvcore/spverrors"
)

// maxFutureDrift bounds how far into the future a snapshot's declared
// timestamp may be before it is rejected outright.
const maxFutureDrift = 7200

// staleWarningAge is the age past which a snapshot is still accepted but
// surfaced with a staleness warning, not an error.
const staleWarningAge = 30 * 24 * time.Hour

// wireSnapshot mirrors the JSON shape of the signed snapshot record.
type wireSnapshot struct {
	Version         *uint32 `json:"version"`
	StartHeight     *uint32 `json:"startHeight"`
	EndHeight       *uint32 `json:"endHeight"`
	AnchorHash      *string `json:"anchorHash"`
	Headers         *string `json:"headers"`
	CumulativeWork  *string `json:"cumulativeWork"`
	Timestamp       *int64  `json:"timestamp"`
	SignerPubKey    *string `json:"signerPubKey"`
	Signature       *string `json:"signature"`
}

// SnapshotView is the verified result of VerifySnapshot.
type SnapshotView struct {
	Chain    *header.ChainView
	Warnings []string
}

// VerifySnapshot parses and verifies blob against whitelist (acceptable
// signer compressed public keys) and now (the caller's notion of current
// Unix time). Staleness alone never fails verification; it is reported as
// a warning.
func VerifySnapshot(blob []byte, whitelist [][33]byte, now int64) (*SnapshotView, error) {
	var w wireSnapshot
	if err := json.Unmarshal(blob, &w); err != nil {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonWrongType, "snapshot is not valid JSON")
	}
	if err := requireSnapshotFields(&w); err != nil {
		return nil, err
	}
	if *w.Version != 1 {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonUnknownVersion, "unsupported snapshot version")
	}

	anchorHashBytes, err := encoding.HexToBytes(*w.AnchorHash)
	if err != nil || len(anchorHashBytes) != 32 {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "anchorHash must be 32 bytes of hex")
	}
	var anchorHash [32]byte
	copy(anchorHash[:], anchorHashBytes)

	headerBytes, err := encoding.HexToBytes(*w.Headers)
	if err != nil || len(headerBytes)%header.HeaderLen != 0 {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "headers must be a concatenation of 80-byte headers")
	}
	n := len(headerBytes) / header.HeaderLen
	if n == 0 || uint32(n) != *w.EndHeight-*w.StartHeight+1 {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonWrongType, "header count does not match startHeight/endHeight span")
	}
	headers := make([][header.HeaderLen]byte, n)
	for i := 0; i < n; i++ {
		copy(headers[i][:], headerBytes[i*header.HeaderLen:(i+1)*header.HeaderLen])
	}

	declaredWork, ok := new(big.Int).SetString(*w.CumulativeWork, 16)
	if !ok {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "cumulativeWork is not valid hex")
	}

	pubKeyBytes, err := encoding.HexToBytes(*w.SignerPubKey)
	if err != nil || len(pubKeyBytes) != secp256k1.PubKeyBytesLenCompressed {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "signerPubKey must be a 33-byte compressed key")
	}
	var signerKey [33]byte
	copy(signerKey[:], pubKeyBytes)

	sigBytes, err := encoding.HexToBytes(*w.Signature)
	if err != nil {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "signature is not valid hex")
	}
	sig, err := ecdsa.ParseDER(sigBytes)
	if err != nil {
		return nil, err
	}

	// Timestamp bounds: future drift is a hard rejection; staleness is
	// advisory only.
	var warnings []string
	if *w.Timestamp > now+maxFutureDrift {
		return nil, spverrors.New(spverrors.KindPolicy, spverrors.ReasonTimestampOutOfBand, "snapshot timestamp is too far in the future")
	}
	if time.Unix(*w.Timestamp, 0).Before(time.Unix(now, 0).Add(-staleWarningAge)) {
		warnings = append(warnings, "snapshot is more than 30 days old")
	}

	// Signer membership.
	if !signerWhitelisted(signerKey, whitelist) {
		return nil, spverrors.New(spverrors.KindPolicy, spverrors.ReasonInvalidAddress, "snapshot signer is not in the accepted whitelist")
	}

	// Header chain internal consistency: delegate entirely to header.VerifyChain.
	checkpoint := header.Checkpoint{Height: *w.StartHeight, Hash: anchorHash}
	ctx := header.NewVerifierContext(checkpoint)
	chain, err := header.VerifyChain(*w.StartHeight, anchorHash, headers, ctx)
	if err != nil {
		return nil, err
	}

	// Recomputed cumulative work must equal the declared value.
	if chain.CumulativeWork.Cmp(declaredWork) != 0 {
		return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonWorkMismatch, "recomputed cumulative work does not match the declared value")
	}

	// Signature validity over the canonical binary message.
	pub, err := secp256k1.ParsePubKey(signerKey[:])
	if err != nil {
		return nil, err
	}
	msg := canonicalMessage(*w.StartHeight, *w.EndHeight, anchorHash, headerBytes, declaredWork, *w.Timestamp)
	digest := crypto.Hash256(msg)
	if !ecdsa.Verify(pub, digest[:], sig) {
		return nil, spverrors.New(spverrors.KindCrypto, spverrors.ReasonSelfVerifyFailed, "snapshot signature does not verify")
	}

	return &SnapshotView{Chain: chain, Warnings: warnings}, nil
}

func requireSnapshotFields(w *wireSnapshot) error {
	missing := func(field string) error {
		return spverrors.Newf(spverrors.KindSchema, spverrors.ReasonMissingField, "missing required field %q", field)
	}
	switch {
	case w.Version == nil:
		return missing("version")
	case w.StartHeight == nil:
		return missing("startHeight")
	case w.EndHeight == nil:
		return missing("endHeight")
	case w.AnchorHash == nil:
		return missing("anchorHash")
	case w.Headers == nil:
		return missing("headers")
	case w.CumulativeWork == nil:
		return missing("cumulativeWork")
	case w.Timestamp == nil:
		return missing("timestamp")
	case w.SignerPubKey == nil:
		return missing("signerPubKey")
	case w.Signature == nil:
		return missing("signature")
	}
	return nil
}

func signerWhitelisted(signer [33]byte, whitelist [][33]byte) bool {
	for _, w := range whitelist {
		if w == signer {
			return true
		}
	}
	return false
}

// canonicalMessage builds the deterministic binary serialization the
// snapshot signature is computed over: heights as 8-byte big-endian,
// anchor hash raw, headers raw concatenated, cumulative work as 32-byte
// big-endian, timestamp as 8-byte big-endian.
func canonicalMessage(startHeight, endHeight uint32, anchorHash [32]byte, headers []byte, work *big.Int, timestamp int64) []byte {
	var buf []byte
	buf = appendU64BE(buf, uint64(startHeight))
	buf = appendU64BE(buf, uint64(endHeight))
	buf = append(buf, anchorHash[:]...)
	buf = append(buf, headers...)

	var workBytes [32]byte
	work.FillBytes(workBytes[:])
	buf = append(buf, workBytes[:]...)

	buf = appendU64BE(buf, uint64(timestamp))
	return buf
}

func appendU64BE(dst []byte, v uint64) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return append(dst, b[:]...)
}
