// Package bridge implements the message router between users and miners.
// A bridge serves a set of users: it mirrors every validated block,
// maintains up-to-date membership witnesses for its users' outputs,
// answers their witness requests, and notifies them when a block changes
// their output set.
package bridge

import (
	"sync"

	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/google/uuid"
)

// Config represents the configuration required to start a bridge.
type Config struct {
	AccumStart  accumulator.Accumulator[database.Utxo]
	Users       []database.UserID
	Witnesses   []accumulator.ElemWitness[database.Utxo]
	BlockSub    <-chan database.Block
	RequestSub  <-chan WitnessRequest
	ResponsePub *broadcast.Topic[WitnessResponse]
	UpdatePub   *broadcast.Topic[UserUpdate]
	EvHandler   state.EventHandler
}

// Bridge maintains witnesses for the outputs owned by its served users.
type Bridge struct {
	acc         accumulator.Accumulator[database.Utxo]
	blockHeight uint64
	users       map[database.UserID]struct{}
	tracked     map[uuid.UUID]accumulator.ElemWitness[database.Utxo]
	mu          sync.Mutex

	blockSub    <-chan database.Block
	requestSub  <-chan WitnessRequest
	responsePub *broadcast.Topic[WitnessResponse]
	updatePub   *broadcast.Topic[UserUpdate]
	evHandler   state.EventHandler

	wg   sync.WaitGroup
	shut chan struct{}
}

// Run constructs a bridge from its seed witnesses and starts the goroutines
// that process blocks and witness requests.
func Run(cfg Config) *Bridge {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	users := make(map[database.UserID]struct{}, len(cfg.Users))
	for _, userID := range cfg.Users {
		users[userID] = struct{}{}
	}

	b := Bridge{
		acc:         cfg.AccumStart,
		users:       users,
		tracked:     make(map[uuid.UUID]accumulator.ElemWitness[database.Utxo]),
		blockSub:    cfg.BlockSub,
		requestSub:  cfg.RequestSub,
		responsePub: cfg.ResponsePub,
		updatePub:   cfg.UpdatePub,
		evHandler:   ev,
		shut:        make(chan struct{}),
	}

	for _, ew := range cfg.Witnesses {
		if _, served := users[ew.Elem.OwnerID]; served {
			b.tracked[ew.Elem.ID] = ew
		}
	}

	operations := []func(){
		b.blockOperations,
		b.requestOperations,
	}

	g := len(operations)
	b.wg.Add(g)

	hasStarted := make(chan bool)
	for _, op := range operations {
		go func(op func()) {
			defer b.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &b
}

// Shutdown terminates the goroutines performing work.
func (b *Bridge) Shutdown() {
	b.evHandler("bridge: shutdown: started")
	defer b.evHandler("bridge: shutdown: completed")

	close(b.shut)
	b.wg.Wait()
}

// =============================================================================

// blockOperations mirrors validated blocks into the bridge's witness set.
func (b *Bridge) blockOperations() {
	b.evHandler("bridge: blockOperations: G started")
	defer b.evHandler("bridge: blockOperations: G completed")

	for {
		select {
		case block, wd := <-b.blockSub:
			if !wd {
				return
			}
			b.applyBlock(block)
		case <-b.shut:
			b.evHandler("bridge: blockOperations: received shut signal")
			return
		}
	}
}

// requestOperations answers witness requests from served users.
func (b *Bridge) requestOperations() {
	b.evHandler("bridge: requestOperations: G started")
	defer b.evHandler("bridge: requestOperations: G completed")

	for {
		select {
		case req, wd := <-b.requestSub:
			if !wd {
				return
			}
			b.serveRequest(req)
		case <-b.shut:
			b.evHandler("bridge: requestOperations: received shut signal")
			return
		}
	}
}

// =============================================================================

// applyBlock moves every tracked witness across the block's deletions and
// additions, adopts newly created outputs owned by served users, and emits
// one update per served user. The same height gate the miners use keeps
// this idempotent under duplicate leader broadcasts.
func (b *Bridge) applyBlock(block database.Block) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if block.Height != b.blockHeight+1 {
		return
	}

	created, spentWithWitnesses := database.ElemsFromTransactions(block.Trans)

	spent := make([]database.Utxo, len(spentWithWitnesses))
	spentIDs := make(map[uuid.UUID]database.Utxo, len(spentWithWitnesses))
	for i, ew := range spentWithWitnesses {
		spent[i] = ew.Elem
		spentIDs[ew.Elem.ID] = ew.Elem
	}

	// Both proofs embed the post-deletion accumulator, the state every
	// surviving witness has to be moved through before the additions.
	accDeleted := block.ProofDeleted.Witness.Acc

	updates := make(map[database.UserID]*UserUpdate, len(b.users))
	for userID := range b.users {
		updates[userID] = &UserUpdate{UserID: userID}
	}

	for id, ew := range b.tracked {
		if utxo, gone := spentIDs[id]; gone {
			delete(b.tracked, id)
			if upd, served := updates[utxo.OwnerID]; served {
				upd.Deleted = append(upd.Deleted, utxo)
			}
			continue
		}

		moved, err := ew.Witness.MoveAfterDelete(ew.Elem, accDeleted, spent)
		if err != nil {
			b.evHandler("bridge: applyBlock: ERROR: moving witness for %s: %s", ew.Elem, err)
			delete(b.tracked, id)
			continue
		}

		ew.Witness = moved.MoveAfterAdd(created)
		b.tracked[id] = ew
	}

	// Newly created outputs get fresh member witnesses relative to the
	// post-deletion accumulator.
	memberWitnesses := accumulator.MemberWitnesses(accDeleted, created)
	for i, utxo := range created {
		upd, served := updates[utxo.OwnerID]
		if !served {
			continue
		}

		b.tracked[utxo.ID] = accumulator.ElemWitness[database.Utxo]{
			Elem:    utxo,
			Witness: memberWitnesses[i],
		}
		upd.Added = append(upd.Added, utxo)
	}

	b.acc = block.AccumAfter
	b.blockHeight = block.Height

	b.evHandler("bridge: applyBlock: height %d: tracking %d outputs", b.blockHeight, len(b.tracked))

	// Every served user gets an update for every block; an empty one tells
	// the user the block wasn't for them.
	for _, upd := range updates {
		b.updatePub.Send(*upd)
	}
}

// serveRequest responds with the tracked witnesses for the requested
// outputs. Outputs the bridge doesn't track are left out of the response;
// liveness is owned by the requester's retry loop.
func (b *Bridge) serveRequest(req WitnessRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, served := b.users[req.UserID]; !served {
		return
	}

	pairs := make([]accumulator.ElemWitness[database.Utxo], 0, len(req.Utxos))
	for _, utxo := range req.Utxos {
		if ew, exists := b.tracked[utxo.ID]; exists {
			pairs = append(pairs, ew)
		}
	}

	b.evHandler("bridge: serveRequest: user %d: request %s: %d of %d outputs", req.UserID, req.RequestID.String()[:8], len(pairs), len(req.Utxos))

	b.responsePub.Send(WitnessResponse{
		RequestID:          req.RequestID,
		UtxosWithWitnesses: pairs,
	})
}

// =============================================================================

// Height returns the bridge's last mirrored block height.
func (b *Bridge) Height() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.blockHeight
}

// TrackedCount returns the number of outputs the bridge holds witnesses for.
func (b *Bridge) TrackedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.tracked)
}
