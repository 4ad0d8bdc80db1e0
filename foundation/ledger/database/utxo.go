// Package database maintains the data model for the ledger: unspent
// outputs, transactions, and the blocks that commit them to the
// accumulator.
package database

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user in the simulation.
type UserID int

// String implements the fmt.Stringer interface.
func (id UserID) String() string {
	return strconv.Itoa(int(id))
}

// Utxo represents one spendable output. A Utxo is immutable: it exists from
// creation until a confirmed transaction spends it.
type Utxo struct {
	ID      uuid.UUID `json:"id"`
	OwnerID UserID    `json:"owner_id"`
}

// NewUtxo constructs a new output owned by the specified user with a
// freshly generated identifier.
func NewUtxo(owner UserID) Utxo {
	return Utxo{
		ID:      uuid.New(),
		OwnerID: owner,
	}
}

// Hash returns a unique byte encoding of the output for use by the
// accumulator.
func (u Utxo) Hash() []byte {
	b := make([]byte, 0, len(u.ID)+8)
	b = append(b, u.ID[:]...)
	b = binary.BigEndian.AppendUint64(b, uint64(u.OwnerID))
	return b
}

// String implements the fmt.Stringer interface for logging.
func (u Utxo) String() string {
	return fmt.Sprintf("utxo[%s:user %d]", u.ID.String()[:8], u.OwnerID)
}
