package header

import (
	"math/big"
	"sync"
	"time"

	"rubin.dev/spvcore/spverrors"
)

// Checkpoint is a compiled-in trust anchor: a height/hash pair plus the
// compact target in force at that height, which also seeds the static
// difficulty floor when no header chain has been loaded. Two revisions of
// the checkpoint coexisted historically (with and without Bits); this
// module adopts the superset shape so both are representable.
type Checkpoint struct {
	Height uint32
	Hash   [32]byte
	Bits   uint32
}

// VerifierContext carries the one piece of mutable state in this core: the
// dynamic difficulty floor set by a successful VerifyChain call, together
// with the ChainView that call produced. It is constructed once per signing
// session and is safe for concurrent use; mu guards both fields per the
// single-writer discipline.
type VerifierContext struct {
	mu    sync.Mutex
	floor *big.Int
	chain *ChainView
}

// NewVerifierContext returns a context whose floor starts at the static
// floor derived from cp, used until (and unless) a header chain is loaded.
func NewVerifierContext(cp Checkpoint) *VerifierContext {
	return &VerifierContext{floor: StaticFloor(cp)}
}

// EffectiveFloor returns the currently effective difficulty floor, or nil
// if no floor is enforced (see StaticFloor).
func (ctx *VerifierContext) EffectiveFloor() *big.Int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.floor == nil {
		return nil
	}
	return new(big.Int).Set(ctx.floor)
}

// Chain returns the header chain loaded by the most recent successful
// VerifyChain call, or nil if no chain has been loaded (checkpoint-only
// mode, per spec.md's "optionally chained back to a trusted checkpoint").
func (ctx *VerifierContext) Chain() *ChainView {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.chain
}

// setFloorFromChainTip sets the dynamic floor from the tip header's target,
// the single mutation point for VerifierContext's shared state.
func (ctx *VerifierContext) setFloorFromChainTip(tip *Header) {
	t := CompactToBig(tip.Bits)
	floor := new(big.Int).Mul(t, big.NewInt(DifficultyTolerance))
	ctx.mu.Lock()
	ctx.floor = floor
	ctx.mu.Unlock()
}

// ChainView is the result of a successful VerifyChain call: an anchored,
// PoW-validated, linearly-linked run of headers plus a hash-to-height
// index for O(1) envelope-header membership checks.
type ChainView struct {
	AnchorHeight  uint32
	AnchorHash    [32]byte
	Headers       []*Header
	CumulativeWork *big.Int

	byHash map[[32]byte]uint32
}

// Contains reports whether hash (in display/reversed order) belongs to the
// verified chain, and if so at what height.
func (v *ChainView) Contains(hash [32]byte) (height uint32, ok bool) {
	height, ok = v.byHash[hash]
	return
}

// VerifyChain verifies a dense run of headers anchored at (anchorHeight,
// anchorHash): each header's PrevBlock must link to the previous header's
// hash (or to anchorHash for the first), and each header must satisfy
// Proof-of-Work against the context's current floor. Acceptance is
// all-or-nothing; any failing header rejects the entire chain. On success,
// the dynamic floor is set from the tip header's target.
func VerifyChain(anchorHeight uint32, anchorHash [32]byte, headers [][HeaderLen]byte, ctx *VerifierContext) (*ChainView, error) {
	if len(headers) == 0 {
		return nil, spverrors.New(spverrors.KindInput, spverrors.ReasonMissingField, "header chain must contain at least one header")
	}

	floor := ctx.EffectiveFloor()
	now := time.Now().Unix()

	parsed := make([]*Header, 0, len(headers))
	prevHash := anchorHash
	byHash := make(map[[32]byte]uint32, len(headers))

	for i, raw := range headers {
		h, err := ParseHeader(raw[:])
		if err != nil {
			return nil, err
		}
		if h.PrevBlock != prevHash {
			return nil, spverrors.Newf(spverrors.KindIntegrity, spverrors.ReasonChainBreak, "header %d does not link to its predecessor", i)
		}
		if err := CheckProofOfWork(h); err != nil {
			return nil, err
		}
		if err := checkFloor(h, floor, now); err != nil {
			return nil, err
		}

		powHash := h.PowHash()
		height := anchorHeight + uint32(i) + 1
		byHash[h.Hash()] = height
		parsed = append(parsed, h)
		prevHash = powHash
	}

	work := big.NewInt(0)
	for _, h := range parsed {
		work.Add(work, CalcWork(CompactToBig(h.Bits)))
	}

	ctx.setFloorFromChainTip(parsed[len(parsed)-1])

	view := &ChainView{
		AnchorHeight:   anchorHeight,
		AnchorHash:     anchorHash,
		Headers:        parsed,
		CumulativeWork: work,
		byHash:         byHash,
	}

	ctx.mu.Lock()
	ctx.chain = view
	ctx.mu.Unlock()

	return view, nil
}
