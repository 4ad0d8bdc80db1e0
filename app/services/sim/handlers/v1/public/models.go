package public

import (
	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
)

// minerStatus is one miner's row in the status response.
type minerStatus struct {
	Miner       int    `json:"miner"`
	Height      uint64 `json:"height"`
	Mempool     int    `json:"mempool"`
	Accumulator string `json:"accumulator"`
}

// statusResponse is the full status payload.
type statusResponse struct {
	Miners []minerStatus `json:"miners"`
}

// injectTx is the payload for publishing a transaction by hand.
type injectTx struct {
	Created []database.Utxo                          `json:"created" validate:"required,min=1"`
	Spent   []accumulator.ElemWitness[database.Utxo] `json:"spent" validate:"required,min=1"`
}
