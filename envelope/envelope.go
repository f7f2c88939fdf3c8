// Package envelope implements the exhaustive, short-circuiting validator
// that turns raw bytes of a merkle-envelope JSON record into a frozen,
// trusted Envelope, binding the declared txid/vout/satoshis to the raw
// transaction and the raw transaction to a Proof-of-Work-valid, optionally
// chain-anchored block header.
package envelope

import "rubin.dev/spvcore/header"

// MaxSatoshis is the maximum value any single output may carry.
const MaxSatoshis = 2_100_000_000_000_000

// Envelope is produced only by ParseAndValidate. It carries no exported
// mutator methods: once validated it is frozen for the rest of the
// signing session.
type Envelope struct {
	Format        string
	Version       uint32
	Txid          [32]byte // display (reversed) order
	Vout          uint32
	Satoshis      uint64
	RawTx         []byte
	BlockHash     *[32]byte
	BlockHeader   *header.Header
	Proof         []header.MerkleStep
	Confirmations uint64

	PubKeyHash [20]byte // extracted from the claimed output's P2PKH script
}
