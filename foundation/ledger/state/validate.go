package state

import (
	"errors"
	"fmt"

	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// ErrConsistency is returned when a block at the expected next height fails
// the accumulator continuity checks. It indicates a broken invariant the
// miner cannot locally repair: accepting the block would corrupt every
// subsequent height, so the caller must stop validating rather than
// continue.
var ErrConsistency = errors.New("accumulator consistency violation")

// ValidateBlock checks a received block against the current accumulator
// and, if it passes, applies it: the accumulator and height move together
// and the pool is cleared.
//
// A block whose height is not exactly one past the current height is
// skipped without effect and without error. That one gate makes validation
// idempotent under duplicate leaders and delivery reordering: each miner
// accepts the first valid block at a given height and silently drops the
// rest.
func (s *State) ValidateBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if block.Height != s.blockHeight+1 {
		s.evHandler("state: ValidateBlock: skipping block at height %d: at height %d", block.Height, s.blockHeight)
		return nil
	}

	created, spentWithWitnesses := database.ElemsFromTransactions(block.Trans)
	spent := make([]database.Utxo, len(spentWithWitnesses))
	for i, ew := range spentWithWitnesses {
		spent[i] = ew.Elem
	}

	if !s.acc.VerifyMembershipBatch(spent, block.ProofDeleted) {
		return fmt.Errorf("block %d: spent outputs not members of current accumulator: %w", block.Height, ErrConsistency)
	}

	if !block.AccumAfter.VerifyMembershipBatch(created, block.ProofAdded) {
		return fmt.Errorf("block %d: created outputs not members of new accumulator: %w", block.Height, ErrConsistency)
	}

	// The addition must have been performed against the exact post-deletion
	// accumulator both proofs embed.
	if !block.ProofDeleted.Witness.Acc.Equal(block.ProofAdded.Witness.Acc) {
		return fmt.Errorf("block %d: deletion and addition witnesses differ: %w", block.Height, ErrConsistency)
	}

	s.acc = block.AccumAfter
	s.blockHeight = block.Height

	// The pool is cleared unconditionally, even for transactions the block
	// didn't include. Users wait for confirmation before their next
	// transaction, so the pool only ever holds transactions for the round
	// being forged.
	s.mempool.Truncate()

	s.evHandler("state: ValidateBlock: accepted block %d: %d transactions: %s", block.Height, len(block.Trans), s.acc)

	return nil
}
