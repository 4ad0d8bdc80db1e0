package database

import (
	"github.com/accumlabs/ledgersim/foundation/accumulator"
)

// Block represents a group of transactions batched together with the
// accumulator state that results from applying them and the proofs needed
// to validate that state transition. A block is immutable once forged.
type Block struct {
	// Height is the position of the block in the chain, starting at 1.
	Height uint64 `json:"height"`

	// Trans is the full ordered list of transactions in the block.
	Trans []Transaction `json:"trans"`

	// AccumAfter is the accumulator after the block's spent outputs were
	// deleted and its created outputs added.
	AccumAfter accumulator.Accumulator[Utxo] `json:"accum_after"`

	// ProofAdded attests membership of the created outputs in AccumAfter.
	// Its embedded witness is the post-deletion accumulator the addition
	// was performed against.
	ProofAdded accumulator.MembershipProof[Utxo] `json:"proof_added"`

	// ProofDeleted attests membership of the spent outputs in the
	// accumulator the block was forged against. Its embedded witness is
	// the post-deletion accumulator.
	ProofDeleted accumulator.MembershipProof[Utxo] `json:"proof_deleted"`
}
