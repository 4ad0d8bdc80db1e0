package worker

// ingestOperations moves transactions from the broadcast channel into the
// miner's pool.
func (w *Worker) ingestOperations() {
	w.evHandler("worker: ingestOperations: G started")
	defer w.evHandler("worker: ingestOperations: G completed")

	for {
		select {
		case tx, wd := <-w.txSub:
			if !wd {
				return
			}
			w.state.SubmitTransaction(tx)

		case <-w.shut:
			w.evHandler("worker: ingestOperations: received shut signal")
			return
		}
	}
}
