package state

import (
	"errors"
	"fmt"

	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// ErrNoTransactions is returned when a block is requested to be forged and
// there are no transactions in the pool.
var ErrNoTransactions = errors.New("no transactions in mempool")

// ForgeBlock creates the next block from the full transaction pool. The
// spent outputs are deleted from the accumulator using their caller
// supplied witnesses and the created outputs are added to the
// post-deletion value. The miner's own state is unchanged: a forged block
// only takes effect when it comes back through ValidateBlock, the same
// path every other miner applies it on.
//
// Forging fails if any spend witness does not verify against the current
// accumulator; the error wraps accumulator.ErrBadWitness.
func (s *State) ForgeBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	txs := s.mempool.Copy()
	created, spent := database.ElemsFromTransactions(txs)

	s.evHandler("state: ForgeBlock: height %d: %d created, %d spent", s.blockHeight+1, len(created), len(spent))

	accDeleted, proofDeleted, err := s.acc.DeleteWithProof(spent)
	if err != nil {
		return database.Block{}, fmt.Errorf("deleting spent outputs: %w", err)
	}

	accNew, proofAdded := accDeleted.AddWithProof(created)

	block := database.Block{
		Height:       s.blockHeight + 1,
		Trans:        txs,
		AccumAfter:   accNew,
		ProofAdded:   proofAdded,
		ProofDeleted: proofDeleted,
	}

	return block, nil
}
