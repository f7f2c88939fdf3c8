package txbuilder

import (
	"math/big"

	"rubin.dev/spvcore/crypto"
	"rubin.dev/spvcore/ecdsa"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/envelope"
	"rubin.dev/spvcore/secp256k1"
	"rubin.dev/spvcore/sighash"
	"rubin.dev/spvcore/spverrors"
)

// DustThreshold is the minimum non-dust output value; a change output at
// or below this is folded into the fee instead of being created.
const DustThreshold = 546

// maxFeeFraction bounds the fee to at most this fraction of total input
// value, a sanity guard against an accidental order-of-magnitude fee.
const maxFeeFraction = 0.10

// estimatedInputSize and estimatedOutputSize approximate a signed P2PKH
// input/output's serialized size in bytes, used only to size the fee
// before signatures exist (their exact length varies by a byte or two
// depending on DER integer padding, which the sanity cap comfortably
// absorbs).
const (
	estimatedInputSize  = 148
	estimatedOutputSize = 34
	estimatedOverhead   = 10
)

// state is the one-shot signing session's current stage. Transitions only
// ever move forward; any failure is reported as an error and the session
// is abandoned, never reused.
type state int

const (
	stateLoaded state = iota
	stateValidated
	stateComposed
	stateSigned
	stateEmitted
)

// session carries a single signing attempt through Loaded -> Validated ->
// Composed -> Signed -> Emitted. Each transition method (validate, compose,
// sign, emit) advances exactly one stage and refuses to run out of order;
// resolveParties is a helper that neither checks nor changes the stage.
type session struct {
	state state

	inputs  []input
	outputs []output
}

func (s *session) requireState(want state) error {
	if s.state != want {
		return spverrors.New(spverrors.KindInput, spverrors.ReasonRejectedState, "transaction builder invoked out of order")
	}
	return nil
}

// BuildAndSign consolidates envs (all envelopes must be validated and
// share a single controlling key, wif) into one transaction paying
// amountSats to destAddr, with any remainder returned to a change address
// derived from wif, at feeRate satoshis per estimated byte. It returns the
// finalized transaction as hex.
func BuildAndSign(envs []*envelope.Envelope, wif *ecdsa.WIFKey, destAddr string, amountSats uint64, feeRate uint64) (string, error) {
	defer wif.PrivKey.Zero()

	s := &session{state: stateLoaded}

	if err := s.validate(envs, wif); err != nil {
		return "", err
	}
	destPKH, changePKH, totalIn, err := s.resolveParties(envs, wif, destAddr)
	if err != nil {
		return "", err
	}
	if err := s.compose(envs, destPKH, changePKH, totalIn, amountSats, feeRate); err != nil {
		return "", err
	}
	if err := s.sign(wif); err != nil {
		return "", err
	}
	return s.emit()
}

// validate is the Loaded -> Validated transition: it rejects duplicate
// outpoints across envs, the only cross-envelope check this stage owns
// (per-envelope validity was already established by envelope.ParseAndValidate).
func (s *session) validate(envs []*envelope.Envelope, wif *ecdsa.WIFKey) error {
	if err := s.requireState(stateLoaded); err != nil {
		return err
	}
	if len(envs) == 0 {
		return spverrors.New(spverrors.KindInput, spverrors.ReasonMissingField, "no envelopes supplied")
	}

	type outpoint struct {
		txid [32]byte
		vout uint32
	}
	seen := make(map[outpoint]bool, len(envs))
	for _, e := range envs {
		op := outpoint{txid: e.Txid, vout: e.Vout}
		if seen[op] {
			return spverrors.New(spverrors.KindPolicy, spverrors.ReasonDuplicateOutpoint, "duplicate outpoint across envelopes")
		}
		seen[op] = true
	}

	s.state = stateValidated
	return nil
}

// resolveParties decodes the destination and change addresses and totals
// the input value.
func (s *session) resolveParties(envs []*envelope.Envelope, wif *ecdsa.WIFKey, destAddr string) (destPKH, changePKH [20]byte, totalIn uint64, err error) {
	destPKH, err = DecodeAddress(destAddr)
	if err != nil {
		return destPKH, changePKH, 0, err
	}

	d := new(big.Int).SetBytes(wif.PrivKey.Bytes())
	pub, err := secp256k1.PrivKeyToPubKey(d)
	if err != nil {
		return destPKH, changePKH, 0, err
	}
	changePKH = crypto.Hash160(secp256k1.SerializeCompressed(pub))

	for _, e := range envs {
		totalIn += e.Satoshis
	}
	return destPKH, changePKH, totalIn, nil
}

// compose is the Validated -> Composed transition: it builds the unsigned
// skeleton (placeholder empty scriptSigs) with the payment output and,
// unless it would be dust, a change output.
func (s *session) compose(envs []*envelope.Envelope, destPKH, changePKH [20]byte, totalIn, amountSats, feeRate uint64) error {
	if err := s.requireState(stateValidated); err != nil {
		return err
	}

	numOutputs := 2
	estimate := estimatedOverhead + len(envs)*estimatedInputSize + numOutputs*estimatedOutputSize
	fee := feeRate * uint64(estimate)

	maxFee := uint64(float64(totalIn) * maxFeeFraction)
	if fee > maxFee {
		return spverrors.New(spverrors.KindPolicy, spverrors.ReasonFeeTooHigh, "computed fee exceeds the maximum allowed fraction of input value")
	}

	if amountSats == 0 || amountSats+fee > totalIn {
		return spverrors.New(spverrors.KindInput, spverrors.ReasonInsufficientFunds, "input value does not cover amount plus fee")
	}
	change := totalIn - amountSats - fee

	s.inputs = make([]input, 0, len(envs))
	for _, e := range envs {
		s.inputs = append(s.inputs, input{
			Txid:       e.Txid,
			Vout:       e.Vout,
			Satoshis:   e.Satoshis,
			PubKeyHash: e.PubKeyHash,
		})
	}

	s.outputs = []output{{Value: amountSats, PubKeyHash: destPKH}}
	if change > DustThreshold {
		s.outputs = append(s.outputs, output{Value: change, PubKeyHash: changePKH})
	}
	// A change output at or below DustThreshold is folded into the fee by
	// simply not creating it; no further accounting step is needed since
	// amountSats + fee + change already reconciles to totalIn.

	s.state = stateComposed
	return nil
}

// sign is the Composed -> Signed transition: for each input it builds the
// preimage over the claimed output's scriptCode, signs it, and assembles
// the final scriptSig. Every signature must pass ecdsa.Sign's own mandatory
// self-verification; sign additionally re-verifies against the exact
// digest used here before accepting any input as signed.
func (s *session) sign(wif *ecdsa.WIFKey) error {
	if err := s.requireState(stateComposed); err != nil {
		return err
	}

	d := new(big.Int).SetBytes(wif.PrivKey.Bytes())
	pub, err := secp256k1.PrivKeyToPubKey(d)
	if err != nil {
		return err
	}
	pubKeyBytes := secp256k1.SerializeCompressed(pub)
	if !wif.Compressed {
		pubKeyBytes = secp256k1.SerializeUncompressed(pub)
	}

	shTx := &sighash.Tx{
		Version:  txVersion,
		Outputs:  make([]sighash.TxOut, len(s.outputs)),
		Locktime: locktime,
	}
	for i, out := range s.outputs {
		shTx.Outputs[i] = sighash.TxOut{Value: out.Value, Script: p2pkhScript(out.PubKeyHash)}
	}
	for _, in := range s.inputs {
		shTx.Inputs = append(shTx.Inputs, sighash.TxIn{Txid: in.Txid, Vout: in.Vout, Sequence: sequence})
	}
	cache := sighash.NewCache(shTx)

	for i := range s.inputs {
		scriptCode := p2pkhScript(s.inputs[i].PubKeyHash)
		digest, err := sighash.Digest(shTx, i, scriptCode, s.inputs[i].Satoshis, cache)
		if err != nil {
			return err
		}

		sig, err := ecdsa.Sign(d, digest[:])
		if err != nil {
			return err
		}
		if !ecdsa.Verify(pub, digest[:], sig) {
			return spverrors.New(spverrors.KindCrypto, spverrors.ReasonSelfVerifyFailed, "input signature failed verification before emission")
		}

		der := sig.SerializeDER()
		sigWithType := append(append([]byte{}, der...), byte(sighash.SigHashType))

		scriptSig := make([]byte, 0, 1+len(sigWithType)+1+len(pubKeyBytes))
		scriptSig = append(scriptSig, byte(len(sigWithType)))
		scriptSig = append(scriptSig, sigWithType...)
		scriptSig = append(scriptSig, byte(len(pubKeyBytes)))
		scriptSig = append(scriptSig, pubKeyBytes...)

		s.inputs[i].scriptSig = scriptSig
	}

	s.state = stateSigned
	return nil
}

// emit is the terminal Signed -> Emitted transition: it reserializes the
// transaction with populated scriptSigs and returns its hex encoding.
func (s *session) emit() (string, error) {
	if err := s.requireState(stateSigned); err != nil {
		return "", err
	}
	raw := serialize(txVersion, s.inputs, s.outputs, locktime)
	s.state = stateEmitted
	return encoding.BytesToHex(raw), nil
}
