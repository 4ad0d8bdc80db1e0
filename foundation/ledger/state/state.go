// Package state is the core API for a miner and implements all the
// business rules for forging and validating blocks against the
// accumulator.
package state

import (
	"sync"

	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/mempool"
)

// EventHandler defines a function that is called when events occur in the
// processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start a miner.
type Config struct {
	AccumStart accumulator.Accumulator[database.Utxo]
	EvHandler  EventHandler
}

// State manages one miner's view of the ledger. The accumulator, block
// height and pending transaction pool form one aggregate: every mutation
// holds the one mutex for its full read-modify-write, so forging and
// validation never observe a half-updated accumulator/height pair.
type State struct {
	acc         accumulator.Accumulator[database.Utxo]
	blockHeight uint64
	mempool     *mempool.Mempool
	mu          sync.Mutex

	evHandler EventHandler
}

// New constructs a new miner state starting at height 0 with the specified
// accumulator.
func New(cfg Config) *State {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &State{
		acc:       cfg.AccumStart,
		mempool:   mempool.New(),
		evHandler: ev,
	}
}

// SubmitTransaction adds a transaction to the pool unless a structurally
// equal transaction is already present.
func (s *State) SubmitTransaction(tx database.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mempool.Upsert(tx) {
		s.evHandler("state: SubmitTransaction: added %s: pool size %d", tx, s.mempool.Count())
	}
}
