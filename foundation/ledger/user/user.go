// Package user implements the client side of the witness-exchange
// protocol: a user repeatedly picks one of its outputs, fetches a fresh
// membership witness for it, issues a transaction spending it, and waits
// for confirmation before going again.
package user

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/ledger/bridge"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/google/uuid"
)

// ErrRetriesExhausted is returned when a witness request was retried the
// maximum number of times without a matching response.
var ErrRetriesExhausted = errors.New("witness request retries exhausted")

// ErrNoUtxos is returned when a round starts and the user owns nothing to
// spend.
var ErrNoUtxos = errors.New("no outputs to spend")

// =============================================================================

// Config represents the configuration required to start a user.
type Config struct {
	ID          database.UserID
	InitUtxos   []database.Utxo
	RequestPub  *broadcast.Topic[bridge.WitnessRequest]
	ResponseSub <-chan bridge.WitnessResponse
	UpdateSub   <-chan bridge.UserUpdate
	TxPub       *broadcast.Topic[database.Transaction]
	MaxRetries  int
	RetryBase   time.Duration
	EvHandler   state.EventHandler
}

// User owns a local view of its own unspent outputs. A user runs a single
// sequential loop, so no internal locking is needed.
type User struct {
	id      database.UserID
	utxoSet map[uuid.UUID]database.Utxo

	requestPub  *broadcast.Topic[bridge.WitnessRequest]
	responseSub <-chan bridge.WitnessResponse
	updateSub   <-chan bridge.UserUpdate
	txPub       *broadcast.Topic[database.Transaction]
	maxRetries  int
	retryBase   time.Duration
	evHandler   state.EventHandler
}

// New constructs a user from its seed outputs.
func New(cfg Config) *User {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	utxoSet := make(map[uuid.UUID]database.Utxo, len(cfg.InitUtxos))
	for _, utxo := range cfg.InitUtxos {
		utxoSet[utxo.ID] = utxo
	}

	return &User{
		id:          cfg.ID,
		utxoSet:     utxoSet,
		requestPub:  cfg.RequestPub,
		responseSub: cfg.ResponseSub,
		updateSub:   cfg.UpdateSub,
		txPub:       cfg.TxPub,
		maxRetries:  cfg.MaxRetries,
		retryBase:   cfg.RetryBase,
		evHandler:   ev,
	}
}

// Run executes transaction rounds until the context is cancelled or a
// round fails.
func (u *User) Run(ctx context.Context) error {
	for {
		if err := u.runRound(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("user %d: %w", u.id, err)
		}
	}
}

// UtxoCount returns the number of outputs the user currently holds. Only
// safe to call when the run loop isn't executing.
func (u *User) UtxoCount() int {
	return len(u.utxoSet)
}

// Holds reports whether the user currently holds the specified output.
// Only safe to call when the run loop isn't executing.
func (u *User) Holds(id uuid.UUID) bool {
	_, exists := u.utxoSet[id]
	return exists
}

// =============================================================================

// runRound performs one full transaction round: witness fetch, broadcast,
// confirmation.
func (u *User) runRound(ctx context.Context) error {
	spend, err := u.pickUtxo()
	if err != nil {
		return err
	}

	response, err := u.fetchWitness(ctx, spend)
	if err != nil {
		return err
	}

	// One or two fresh outputs per round, owned by this user.
	created := make([]database.Utxo, 1+rand.Intn(2))
	for i := range created {
		created[i] = database.NewUtxo(u.id)
	}

	tx := database.NewTransaction(created, response.UtxosWithWitnesses)
	u.txPub.Send(tx)

	u.evHandler("user %d: issued %s", u.id, tx)

	return u.awaitUpdate(ctx)
}

// pickUtxo selects one owned output to spend. Any output will do.
func (u *User) pickUtxo() (database.Utxo, error) {
	for _, utxo := range u.utxoSet {
		return utxo, nil
	}
	return database.Utxo{}, ErrNoUtxos
}

// fetchWitness runs the bounded retry loop for a witness request. The
// request is resent on every retry with the same correlation id, the wait
// doubles each time, and responses with a different correlation id are
// drained rather than reprocessed.
func (u *User) fetchWitness(ctx context.Context, spend database.Utxo) (bridge.WitnessResponse, error) {
	requestID := uuid.New()
	wait := u.retryBase

	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		u.requestPub.Send(bridge.WitnessRequest{
			UserID:    u.id,
			RequestID: requestID,
			Utxos:     []database.Utxo{spend},
		})

		timer := time.NewTimer(wait)

	recv:
		for {
			select {
			case response, wd := <-u.responseSub:
				if !wd {
					timer.Stop()
					return bridge.WitnessResponse{}, errors.New("response channel closed")
				}

				if response.RequestID == requestID && len(response.UtxosWithWitnesses) > 0 {
					timer.Stop()
					return response, nil
				}

				// Stale or incomplete response. Drain whatever else is
				// queued before resending so the loop never chews through
				// old responses forever.
				u.drainResponses()

			case <-timer.C:
				break recv

			case <-ctx.Done():
				timer.Stop()
				return bridge.WitnessResponse{}, ctx.Err()
			}
		}

		wait *= 2
		u.evHandler("user %d: witness request %s: retry %d", u.id, requestID.String()[:8], attempt+1)
	}

	return bridge.WitnessResponse{}, ErrRetriesExhausted
}

func (u *User) drainResponses() {
	for {
		select {
		case <-u.responseSub:
		default:
			return
		}
	}
}

// awaitUpdate blocks until a non-empty update addressed to this user
// arrives and applies it. Empty updates and updates for other users mean
// "not for me yet" and are skipped.
func (u *User) awaitUpdate(ctx context.Context) error {
	for {
		select {
		case update, wd := <-u.updateSub:
			if !wd {
				return errors.New("update channel closed")
			}

			if update.UserID != u.id || update.IsEmpty() {
				continue
			}

			u.applyUpdate(update)
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// applyUpdate mutates the local output set with a confirmed update.
func (u *User) applyUpdate(update bridge.UserUpdate) {
	for _, utxo := range update.Deleted {
		delete(u.utxoSet, utxo.ID)
	}
	for _, utxo := range update.Added {
		u.utxoSet[utxo.ID] = utxo
	}

	u.evHandler("user %d: update applied: %d added, %d deleted, holding %d", u.id, len(update.Added), len(update.Deleted), len(u.utxoSet))
}
