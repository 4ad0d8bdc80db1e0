// Package worker implements transaction ingestion, block validation, and
// leader block forging for a miner. Each duty runs on its own goroutine
// against the shared miner state.
package worker

import (
	"sync"
	"time"

	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
)

// Config represents the configuration required to run a worker.
type Config struct {
	State         *state.State
	Leader        bool
	BlockInterval time.Duration
	TxSub         <-chan database.Transaction
	BlockSub      <-chan database.Block
	BlockPub      *broadcast.Topic[database.Block]
	EvHandler     state.EventHandler
}

// Worker manages the duty goroutines for one miner.
type Worker struct {
	state         *state.State
	leader        bool
	blockInterval time.Duration
	txSub         <-chan database.Transaction
	blockSub      <-chan database.Block
	blockPub      *broadcast.Topic[database.Block]
	evHandler     state.EventHandler

	wg   sync.WaitGroup
	shut chan struct{}
}

// Run creates a worker and starts up all the background duties. A leader
// additionally forges a new block on every block interval tick.
func Run(cfg Config) *Worker {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	w := Worker{
		state:         cfg.State,
		leader:        cfg.Leader,
		blockInterval: cfg.BlockInterval,
		txSub:         cfg.TxSub,
		blockSub:      cfg.BlockSub,
		blockPub:      cfg.BlockPub,
		evHandler:     ev,
		shut:          make(chan struct{}),
	}

	// Load the set of operations we need to run.
	operations := []func(){
		w.ingestOperations,
		w.validateOperations,
	}
	if w.leader {
		operations = append(operations, w.forgeOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	close(w.shut)
	w.wg.Wait()
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
