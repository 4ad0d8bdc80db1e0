package worker

import (
	"errors"

	"github.com/accumlabs/ledgersim/foundation/ledger/state"
)

// validateOperations applies blocks from the broadcast channel to the
// miner's state. A consistency violation halts this duty: the miner's
// accumulator can no longer be trusted to follow the chain, and accepting
// anything further would corrupt every subsequent height. The other duties
// keep running so the failure is observable without taking down unrelated
// miners in the same process.
func (w *Worker) validateOperations() {
	w.evHandler("worker: validateOperations: G started")
	defer w.evHandler("worker: validateOperations: G completed")

	for {
		select {
		case block, wd := <-w.blockSub:
			if !wd {
				return
			}

			if err := w.state.ValidateBlock(block); err != nil {
				if errors.Is(err, state.ErrConsistency) {
					w.evHandler("worker: validateOperations: FATAL: %s", err)
					return
				}
				w.evHandler("worker: validateOperations: ERROR: %s", err)
			}

		case <-w.shut:
			w.evHandler("worker: validateOperations: received shut signal")
			return
		}
	}
}
