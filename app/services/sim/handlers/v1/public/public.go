// Package public maintains the group of handlers for public access to the
// running simulation.
package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/accumlabs/ledgersim/business/sys/validate"
	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/events"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of simulation endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Miners []*state.State
	TxPub  *broadcast.Topic[database.Transaction]
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Status returns the height and pool size of every miner.
func (h Handlers) Status(w http.ResponseWriter, r *http.Request) {
	miners := make([]minerStatus, len(h.Miners))
	for i, s := range h.Miners {
		miners[i] = minerStatus{
			Miner:       i,
			Height:      s.LatestHeight(),
			Mempool:     s.MempoolLength(),
			Accumulator: s.Accumulator().String(),
		}
	}

	respond(w, http.StatusOK, statusResponse{Miners: miners})
}

// Mempool returns the uncommitted transactions of the first miner.
func (h Handlers) Mempool(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.Miners[0].MempoolCopy())
}

// Accum returns the first miner's current accumulator snapshot.
func (h Handlers) Accum(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.Miners[0].Accumulator())
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Errorw("events", "ERROR", err)
		return
	}
	defer c.Close()

	viewerID := uuid.NewString()
	ch := h.Evts.Acquire(viewerID)
	defer h.Evts.Release(viewerID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return
			}

			if err := c.WriteJSON(evt); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// InjectTx publishes a raw transaction to the transaction topic, the same
// path user transactions take.
func (h Handlers) InjectTx(w http.ResponseWriter, r *http.Request) {
	var itx injectTx
	if err := json.NewDecoder(r.Body).Decode(&itx); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unable to decode payload: %w", err))
		return
	}

	if err := validate.Check(itx); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	tx := database.NewTransaction(itx.Created, itx.Spent)
	h.TxPub.Send(tx)

	h.Log.Infow("inject tx", "tx", tx.String())

	respond(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{
		Status: "transaction published",
	})
}

// =============================================================================

func respond(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, err error) {
	respond(w, statusCode, struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	})
}
