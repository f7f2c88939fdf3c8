package envelope

import (
	"encoding/json"
	"time"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/header"
	"rubin.dev/spvcore/spverrors"
)

const (
	expectedFormat  = "merkle-envelope"
	expectedVersion = 1
)

// wireStep mirrors one element of the JSON "proof" array.
type wireStep struct {
	Hash string `json:"hash"`
	Pos  string `json:"pos"`
}

// wireEnvelope mirrors the JSON schema of §6 exactly; field presence and
// typing are checked against it before any semantic validation begins.
type wireEnvelope struct {
	Format        *string     `json:"format"`
	Version       *uint32     `json:"version"`
	Txid          *string     `json:"txid"`
	Vout          *uint32     `json:"vout"`
	Satoshis      *uint64     `json:"satoshis"`
	RawTx         *string     `json:"rawTx"`
	BlockHash     *string     `json:"blockHash"`
	BlockHeader   *string     `json:"blockHeader"`
	Proof         []wireStep  `json:"proof"`
	Confirmations *uint64     `json:"confirmations"`
}

// ParseAndValidate runs the exhaustive, short-circuiting 8-step validation
// sequence over jsonBytes and returns a frozen Envelope. If ctx carries a
// loaded header chain (header.VerifierContext.Chain), step 8 additionally
// requires the block header to belong to it; otherwise step 8 is skipped,
// matching checkpoint-only mode.
func ParseAndValidate(jsonBytes []byte, ctx *header.VerifierContext) (*Envelope, error) {
	chain := ctx.Chain()
	// Step 1: schema presence/type, plus format/version constants.
	var w wireEnvelope
	if err := json.Unmarshal(jsonBytes, &w); err != nil {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonWrongType, "envelope is not valid JSON")
	}
	if err := requireFields(&w); err != nil {
		return nil, err
	}
	if *w.Format != expectedFormat {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonUnknownFormat, "unrecognized envelope format")
	}
	if *w.Version != expectedVersion {
		return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonUnknownVersion, "unsupported envelope version")
	}

	// Step 2: hex well-formedness and fixed sizes.
	txidBytes, err := encoding.HexToBytes(*w.Txid)
	if err != nil || len(txidBytes) != 32 {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "txid must be 32 bytes of hex")
	}
	rawTx, err := encoding.HexToBytes(*w.RawTx)
	if err != nil {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "rawTx is not valid hex")
	}
	headerBytes, err := encoding.HexToBytes(*w.BlockHeader)
	if err != nil || len(headerBytes) != header.HeaderLen {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "blockHeader must be 80 bytes of hex")
	}
	var blockHashBytes []byte
	if w.BlockHash != nil {
		blockHashBytes, err = encoding.HexToBytes(*w.BlockHash)
		if err != nil || len(blockHashBytes) != 32 {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "blockHash must be 32 bytes of hex")
		}
	}
	steps, err := decodeProofSteps(w.Proof)
	if err != nil {
		return nil, err
	}

	var txid [32]byte
	copy(txid[:], txidBytes)

	// Step 3: recompute txid from rawTx and require equality.
	recomputed := encoding.Reverse32(crypto.Hash256(rawTx))
	if !crypto.ConstantTimeCompare(recomputed[:], txid[:]) {
		return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonTxidMismatch, "declared txid does not match hash256(rawTx)")
	}

	// Step 4: vout range, extract output script, require P2PKH.
	outputs, err := parseTxOutputs(rawTx)
	if err != nil {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "rawTx is malformed")
	}
	if uint64(*w.Vout) >= uint64(len(outputs)) {
		return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonTxidMismatch, "vout is out of range for rawTx outputs")
	}
	out := outputs[*w.Vout]
	pkh, err := extractP2PKHHash(out.Script)
	if err != nil {
		return nil, err
	}

	// Step 5: output value matches declared satoshis, within the cap.
	if out.Value != *w.Satoshis {
		return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonTxidMismatch, "declared satoshis does not match rawTx output value")
	}
	if *w.Satoshis == 0 || *w.Satoshis > MaxSatoshis {
		return nil, spverrors.New(spverrors.KindPolicy, spverrors.ReasonSatoshisOverCap, "satoshis out of accepted range")
	}

	// Step 6: Proof-of-Work of blockHeader (with floor).
	h, err := header.ParseHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	if err := header.CheckProofOfWork(h); err != nil {
		return nil, err
	}
	floor := ctx.EffectiveFloor()
	if err := header.CheckFloorAndTimestamp(h, floor, time.Now().Unix()); err != nil {
		return nil, err
	}
	if len(blockHashBytes) > 0 {
		var declared [32]byte
		copy(declared[:], blockHashBytes)
		actual := h.Hash()
		if !crypto.ConstantTimeCompare(actual[:], declared[:]) {
			return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonTxidMismatch, "declared blockHash does not match hash256(blockHeader)")
		}
	}

	// Step 7: Merkle replay against header.merkleRoot.
	root, err := header.MerkleReplay(txid, steps)
	if err != nil {
		return nil, err
	}
	if !crypto.ConstantTimeCompare(root[:], h.MerkleRoot[:]) {
		return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonMerkleMismatch, "merkle replay does not reproduce the header's merkle root")
	}

	// Step 8: if a chain is loaded, the header must belong to it.
	if chain != nil {
		if _, ok := chain.Contains(h.Hash()); !ok {
			return nil, spverrors.New(spverrors.KindIntegrity, spverrors.ReasonHeaderNotInChain, "block header is not part of the loaded header chain")
		}
	}

	env := &Envelope{
		Format:      *w.Format,
		Version:     *w.Version,
		Txid:        txid,
		Vout:        *w.Vout,
		Satoshis:    *w.Satoshis,
		RawTx:       rawTx,
		BlockHeader: h,
		Proof:       steps,
		PubKeyHash:  pkh,
	}
	if len(blockHashBytes) > 0 {
		var bh [32]byte
		copy(bh[:], blockHashBytes)
		env.BlockHash = &bh
	}
	if w.Confirmations != nil {
		env.Confirmations = *w.Confirmations
	}
	return env, nil
}

func requireFields(w *wireEnvelope) error {
	missing := func(field string) error {
		return spverrors.Newf(spverrors.KindSchema, spverrors.ReasonMissingField, "missing required field %q", field)
	}
	switch {
	case w.Format == nil:
		return missing("format")
	case w.Version == nil:
		return missing("version")
	case w.Txid == nil:
		return missing("txid")
	case w.Vout == nil:
		return missing("vout")
	case w.Satoshis == nil:
		return missing("satoshis")
	case w.RawTx == nil:
		return missing("rawTx")
	case w.BlockHeader == nil:
		return missing("blockHeader")
	case w.Proof == nil:
		return missing("proof")
	}
	return nil
}

func decodeProofSteps(steps []wireStep) ([]header.MerkleStep, error) {
	out := make([]header.MerkleStep, 0, len(steps))
	for _, s := range steps {
		var step header.MerkleStep
		switch s.Pos {
		case "L":
			step.Position = header.PosLeft
		case "R":
			step.Position = header.PosRight
		default:
			return nil, spverrors.New(spverrors.KindSchema, spverrors.ReasonWrongType, "proof step pos must be L or R")
		}
		if s.Hash == "*" {
			step.Dup = true
		} else {
			b, err := encoding.HexToBytes(s.Hash)
			if err != nil || len(b) != 32 {
				return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "proof step hash must be 32 bytes of hex or \"*\"")
			}
			copy(step.Hash[:], b)
		}
		out = append(out, step)
	}
	return out, nil
}

