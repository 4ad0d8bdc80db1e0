package worker

import (
	"errors"
	"time"

	"github.com/accumlabs/ledgersim/foundation/ledger/state"
)

// forgeOperations forges a new block on every interval tick and publishes
// it to the block topic, where every miner (this one included) picks it up
// through validation. A forge failure is reported and the duty carries on
// to the next tick with the pool unchanged.
func (w *Worker) forgeOperations() {
	w.evHandler("worker: forgeOperations: G started")
	defer w.evHandler("worker: forgeOperations: G completed")

	ticker := time.NewTicker(w.blockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				w.runForgeOperation()
			}

		case <-w.shut:
			w.evHandler("worker: forgeOperations: received shut signal")
			return
		}
	}
}

// runForgeOperation forges one block from the current pool.
func (w *Worker) runForgeOperation() {
	block, err := w.state.ForgeBlock()
	if err != nil {
		if errors.Is(err, state.ErrNoTransactions) {
			return
		}
		w.evHandler("worker: runForgeOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runForgeOperation: forged block %d with %d transactions", block.Height, len(block.Trans))

	w.blockPub.Send(block)
}
