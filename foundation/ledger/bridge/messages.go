package bridge

import (
	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/google/uuid"
)

// WitnessRequest asks for fresh membership witnesses for a set of outputs.
// The request id correlates the response on the shared response topic.
type WitnessRequest struct {
	UserID    database.UserID `json:"user_id"`
	RequestID uuid.UUID       `json:"request_id"`
	Utxos     []database.Utxo `json:"utxos"`
}

// WitnessResponse carries the requested outputs paired with membership
// witnesses valid against the bridge's latest validated accumulator.
type WitnessResponse struct {
	RequestID          uuid.UUID                                `json:"request_id"`
	UtxosWithWitnesses []accumulator.ElemWitness[database.Utxo] `json:"utxos_with_witnesses"`
}

// UserUpdate notifies a user of changes to its output set after a block
// was validated. An update with no additions and no deletions is a valid
// no-op message.
type UserUpdate struct {
	UserID  database.UserID `json:"user_id"`
	Added   []database.Utxo `json:"added"`
	Deleted []database.Utxo `json:"deleted"`
}

// IsEmpty reports whether the update carries no changes.
func (u UserUpdate) IsEmpty() bool {
	return len(u.Added) == 0 && len(u.Deleted) == 0
}
