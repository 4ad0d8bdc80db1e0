package database

import (
	"fmt"

	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transaction represents the spending of a set of outputs paired with their
// membership witnesses and the creation of new ones. Two transactions are
// the same transaction exactly when their content is equal.
type Transaction struct {
	Created []Utxo                          `json:"created"`
	Spent   []accumulator.ElemWitness[Utxo] `json:"spent"`
}

// NewTransaction constructs a transaction spending the specified outputs
// and creating new ones.
func NewTransaction(created []Utxo, spent []accumulator.ElemWitness[Utxo]) Transaction {
	return Transaction{
		Created: created,
		Spent:   spent,
	}
}

// UniqueKey generates a key that identifies the transaction by its content,
// for deduplication inside a pool.
func (tx Transaction) UniqueKey() string {
	var b []byte
	for _, utxo := range tx.Created {
		b = append(b, utxo.Hash()...)
	}
	for _, ew := range tx.Spent {
		b = append(b, ew.Elem.Hash()...)
		if data, err := ew.Witness.Acc.MarshalJSON(); err == nil {
			b = append(b, data...)
		}
	}

	return fmt.Sprintf("%x", crypto.Keccak256(b))
}

// Equal reports whether two transactions have the same content.
func (tx Transaction) Equal(other Transaction) bool {
	return tx.UniqueKey() == other.UniqueKey()
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("tx[%s: %d created, %d spent]", tx.UniqueKey()[:8], len(tx.Created), len(tx.Spent))
}

// =============================================================================

// ElemsFromTransactions collects the outputs created and the outputs spent,
// with their witnesses, across the specified transactions in order.
func ElemsFromTransactions(txs []Transaction) ([]Utxo, []accumulator.ElemWitness[Utxo]) {
	var created []Utxo
	var spent []accumulator.ElemWitness[Utxo]

	for _, tx := range txs {
		created = append(created, tx.Created...)
		spent = append(spent, tx.Spent...)
	}

	return created, spent
}
