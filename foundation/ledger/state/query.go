package state

import (
	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// LatestHeight returns the height of the last accepted block.
func (s *State) LatestHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blockHeight
}

// Accumulator returns the current accumulator snapshot.
func (s *State) Accumulator() accumulator.Accumulator[database.Utxo] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.acc
}

// MempoolLength returns the current number of transactions in the pool.
func (s *State) MempoolLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Count()
}

// MempoolCopy returns a copy of the pool in first submission order.
func (s *State) MempoolCopy() []database.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Copy()
}
