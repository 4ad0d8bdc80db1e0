// Package genesis constructs the starting state for a simulation run: the
// genesis accumulator, one seed output per user, and the membership
// witnesses a bridge needs to serve its users from block one.
package genesis

import (
	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// Genesis represents the starting state every miner, user and bridge is
// bootstrapped from. All miners start at height 0 holding Accum.
type Genesis struct {
	Accum     accumulator.Accumulator[database.Utxo]
	Utxos     []database.Utxo
	Witnesses []accumulator.ElemWitness[database.Utxo]
}

// Create builds the genesis state for the specified users, seeding each
// with a single spendable output.
func Create(users []database.UserID) Genesis {
	utxos := make([]database.Utxo, len(users))
	for i, userID := range users {
		utxos[i] = database.NewUtxo(userID)
	}

	base := accumulator.Empty[database.Utxo]()
	accum, _ := base.AddWithProof(utxos)

	memberWitnesses := accumulator.MemberWitnesses(base, utxos)
	witnesses := make([]accumulator.ElemWitness[database.Utxo], len(utxos))
	for i, utxo := range utxos {
		witnesses[i] = accumulator.ElemWitness[database.Utxo]{
			Elem:    utxo,
			Witness: memberWitnesses[i],
		}
	}

	return Genesis{
		Accum:     accum,
		Utxos:     utxos,
		Witnesses: witnesses,
	}
}

// UtxoFor returns the seed output owned by the specified user.
func (g Genesis) UtxoFor(userID database.UserID) (database.Utxo, bool) {
	for _, utxo := range g.Utxos {
		if utxo.OwnerID == userID {
			return utxo, true
		}
	}
	return database.Utxo{}, false
}
