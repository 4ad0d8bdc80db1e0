// Package mempool maintains a miner's pool of pending transactions.
package mempool

import (
	"sync"

	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// Mempool represents a cache of pending transactions keyed by content, so
// structurally identical transactions are stored once, while preserving the
// order of first submission.
type Mempool struct {
	pool  map[string]database.Transaction
	order []string
	mu    sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Transaction),
	}
}

// Upsert adds a transaction to the mempool if no structurally equal
// transaction is already present. It reports whether the transaction was
// stored. First-seen wins; a duplicate never replaces the original.
func (mp *Mempool) Upsert(tx database.Transaction) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := tx.UniqueKey()
	if _, exists := mp.pool[key]; exists {
		return false
	}

	mp.pool[key] = tx
	mp.order = append(mp.order, key)
	return true
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Copy returns a list of the current transactions in the pool in first
// submission order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Transaction, 0, len(mp.pool))
	for _, key := range mp.order {
		txs = append(txs, mp.pool[key])
	}
	return txs
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Transaction)
	mp.order = nil
}
